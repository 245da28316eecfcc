package shield

import (
	"net/http"

	"github.com/hazyhaar/quizdoc/idgen"
	"github.com/hazyhaar/quizdoc/kit"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = kit.RequestIDHeader

// RequestID propagates the caller's X-Request-ID, or mints one, and stores
// it in the response headers and in the kit.Caller of the context along
// with the remote address.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > kit.MaxRequestIDLen {
			id = idgen.New()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := kit.WithCaller(r.Context(), kit.Caller{
			Transport:  kit.TransportHTTP,
			RequestID:  id,
			RemoteAddr: r.RemoteAddr,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
