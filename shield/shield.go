// Package shield provides the HTTP middleware shared by quizdoc's API:
// security headers, HEAD handling, upload body limits, request IDs and
// Basic authentication for write routes.
//
// Usage:
//
//	r := chi.NewRouter()
//	for _, mw := range shield.APIStack(maxUpload) {
//	    r.Use(mw)
//	}
//	r.With(shield.BasicAuth(user, hash)).Post("/api/uploads", h)
package shield

import (
	"encoding/json"
	"net/http"
)

// APIStack returns the standard middleware stack for the JSON API.
// Middleware is ordered: RequestID → HeadToGet → SecurityHeaders → MaxBody.
func APIStack(maxBody int64) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		RequestID,
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
		MaxBody(maxBody),
	}
}

func jsonError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
