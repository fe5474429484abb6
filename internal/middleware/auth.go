package middleware

import (
	"context"
	"net/http"
	"strings"

	"vault/internal/domain"
	"vault/internal/domain/models"
	"vault/internal/httputil"
)

// Authenticator resolves a bearer access token to an active user
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// RequireAuth validates the Authorization bearer token and stores the user in the request context.
// Every failure is a 401 with a WWW-Authenticate challenge.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				unauthorized(w, "could not validate credentials")
				return
			}

			next.ServeHTTP(w, httputil.WithUser(r, user))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	httputil.RespondErrorWithExtras(w, http.StatusUnauthorized, detail, map[string]interface{}{
		"code": domain.CodeUnauthorized,
	})
}
