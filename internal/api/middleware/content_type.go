package middleware

import (
	"net/http"
	"strings"

	"github.com/buurtcheck/buurtcheck/internal/api/models"
)

// ContentTypeJSON sets the Content-Type header to application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only set if not already set (allows handlers to override)
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects mutating requests whose body claims a non-JSON type.
// The only mutating surface is the admin route; everything else is GET.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
				traceID := GetRequestID(r.Context())
				models.NewProblem(models.ProblemTypeValidation, "Unsupported media type",
					http.StatusUnsupportedMediaType, traceID).
					WithDetail("Content-Type must be application/json").
					Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
