package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cinetrack/internal/auth"
	"cinetrack/internal/i18n"
)

// AuthMiddleware validates bearer tokens and injects the user id into the
// request context. Tokens come from the Authorization header or ?token=.
func AuthMiddleware(verifier *auth.Verifier, messages *i18n.Translator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always allow OPTIONS for CORS
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := verifier.Verify(extractToken(r))
			if err != nil {
				if errors.Is(err, auth.ErrNoSecret) {
					slog.Error("token verification unavailable", "error", err)
				}
				writeMessage(w, http.StatusUnauthorized, messages.ForRequest(r, i18n.Unauthorized))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// extractToken reads the bearer token. Priority: Authorization header, then
// the token query parameter.
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
