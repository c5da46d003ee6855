package middleware

import (
	"context"
	"net/http"

	"github.com/akorchagin/pollster/internal/handlers/render"
	"github.com/akorchagin/pollster/internal/handlers/userctx"
	"github.com/akorchagin/pollster/internal/service/auth"
)

type authService interface {
	ClassifyRequest(ctx context.Context, r *http.Request) auth.RequestAuth
}

// AuthMiddleware gates mutating endpoints on the request token state.
// It never refreshes anything itself: refreshable states get a 401 with
// requiresRefresh set and the client runs the exchange.
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := as.ClassifyRequest(r.Context(), r)

			switch a.State {
			case auth.ValidAccess:
				ctx := userctx.New(r.Context(), a.User)
				next.ServeHTTP(w, r.WithContext(ctx))

			case auth.NoToken:
				if a.HasRefresh {
					render.Unauthorized(w, "Access token expired or missing. Please refresh.", true)
					return
				}
				render.Unauthorized(w, "Not authorized, no token", false)

			case auth.ExpiredAccessWithRefresh:
				render.Unauthorized(w, "Access token expired. Please refresh.", true)

			default: // ExpiredAccessNoRefresh, InvalidAccess
				render.Unauthorized(w, "Not authorized, token failed", false)
			}
		})
	}
}
