package middleware

import (
	"net/http"
	"strings"

	"github.com/shortenhub/shorten/internal/auth"
	"github.com/shortenhub/shorten/internal/constants"
	"github.com/shortenhub/shorten/pkg/httputils"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier func(token string) (auth.Claims, error)

// BearerToken extracts the token from the Authorization header, or "".
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate attaches verified claims to the request context. Requests
// without a token pass through anonymous; requests with a bad token are
// rejected outright.
func Authenticate(verify TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verify(token)
			if err != nil {
				httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAuth rejects requests whose context has no verified claims. Place
// it after Authenticate.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.ClaimsFrom(r.Context()); !ok {
			httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
