package shield

import "net/http"

// multipartOverhead leaves room for multipart boundaries and the small
// metadata fields sent alongside a file.
const multipartOverhead = 64 << 10

// MaxBody returns middleware that caps every request body at maxBytes plus
// multipart overhead. Requests announcing a larger Content-Length are
// rejected with 413 before the body is read.
func MaxBody(maxBytes int64) func(http.Handler) http.Handler {
	limit := maxBytes + multipartOverhead
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				jsonError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
