package shield

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hazyhaar/quizdoc/kit"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := kit.CallerFrom(r.Context())
		w.Header().Set("X-Seen-Request-ID", c.RequestID)
		w.Header().Set("X-Seen-Remote-Addr", c.RemoteAddr)
		w.Header().Set("X-Seen-Method", r.Method)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func TestRequestID_Propagates(t *testing.T) {
	h := RequestID(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "req-42" {
		t.Errorf("response header: got %q", got)
	}
	if got := rec.Header().Get("X-Seen-Request-ID"); got != "req-42" {
		t.Errorf("context: got %q", got)
	}
	if got := rec.Header().Get("X-Seen-Remote-Addr"); got != req.RemoteAddr {
		t.Errorf("remote addr: got %q, want %q", got, req.RemoteAddr)
	}
}

func TestRequestID_Generated(t *testing.T) {
	// WHAT: Missing or oversized request IDs are replaced by a fresh one.
	// WHY: Callers must not be able to inject arbitrarily long log fields.
	h := RequestID(okHandler())
	for _, in := range []string{"", strings.Repeat("x", kit.MaxRequestIDLen+1)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if in != "" {
			req.Header.Set(RequestIDHeader, in)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		got := rec.Header().Get(RequestIDHeader)
		if got == "" || got == in {
			t.Errorf("input %d chars: got %q", len(in), got)
		}
	}
}

func TestHeadToGet(t *testing.T) {
	rec := httptest.NewRecorder()
	HeadToGet(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/", nil))
	if got := rec.Header().Get("X-Seen-Method"); got != http.MethodGet {
		t.Errorf("method: got %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(DefaultHeaders())(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for k, want := range map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Cache-Control":           "no-store",
	} {
		if got := rec.Header().Get(k); got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

func TestMaxBody_RejectsDeclaredLength(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
	req.ContentLength = 10 + multipartOverhead + 1
	rec := httptest.NewRecorder()
	MaxBody(10)(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: got %d, want 413", rec.Code)
	}
}

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	h := BasicAuth("admin", string(hash))(okHandler())

	tests := []struct {
		name       string
		user, pass string
		setAuth    bool
		want       int
	}{
		{"no credentials", "", "", false, http.StatusUnauthorized},
		{"wrong password", "admin", "nope", true, http.StatusUnauthorized},
		{"wrong user", "root", "s3cret", true, http.StatusUnauthorized},
		{"valid", "admin", "s3cret", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestBasicAuth_DisabledWithoutHash(t *testing.T) {
	rec := httptest.NewRecorder()
	BasicAuth("admin", "")(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
}
