package middleware

import (
	"context"
	"net/http"

	"github.com/vancomm/antimine/internal/config"
)

// ClaimsParser reads player claims from a request.
type ClaimsParser interface {
	ParsePlayerClaims(r *http.Request) (*config.PlayerClaims, error)
}

// Auth attaches the player's claims to the request context when the auth
// cookies hold a valid token. Requests without one go through anonymously.
func Auth(parser ClaimsParser) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := parser.ParsePlayerClaims(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CtxPlayerClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func PlayerClaims(ctx context.Context) (*config.PlayerClaims, bool) {
	claims, ok := ctx.Value(CtxPlayerClaims).(*config.PlayerClaims)
	return claims, ok
}
