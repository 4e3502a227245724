package httputil

import (
	"net/http"

	"github.com/bissquit/cryptodefi/internal/domain"
	"github.com/bissquit/cryptodefi/internal/gate"
)

// CORSMiddleware creates CORS middleware that handles preflight requests
// and adds appropriate CORS headers to responses.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Check if origin is allowed
			if originsSet[origin] || originsSet["*"] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			// Handle preflight OPTIONS request
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission creates middleware that runs the route gate against the session.
// An empty permission only requires a logged-in user.
func RequirePermission(viewer gate.Viewer, permission domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := gate.EvaluateRoute(gate.SubjectOf(viewer), permission, false)
			if !decision.Allowed() {
				Denied(w, decision)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Denied writes the response for a gate decision that did not allow content.
// Login becomes 401; notices become 403 with the notice in the error envelope.
func Denied(w http.ResponseWriter, d gate.Decision) {
	switch d.Outcome {
	case gate.OutcomeLogin, gate.OutcomeFallback:
		Error(w, http.StatusUnauthorized, "authentication required")
	case gate.OutcomeAccessDenied, gate.OutcomeFeatureNotice:
		body := ErrorBody{Message: "forbidden", Notice: d.Notice}
		if d.Notice != nil {
			body.Message = d.Notice.String()
		}
		WriteError(w, http.StatusForbidden, body)
	default:
		Error(w, http.StatusForbidden, "forbidden")
	}
}
