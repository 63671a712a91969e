package authz

import (
	"net/http"
	"strings"

	"log/slog"

	"github.com/warta-media/warta/internal/observability"
	"github.com/warta-media/warta/internal/platform/httpx"
	"github.com/warta-media/warta/internal/shared"
)

// TokenVerifier decodes a presented bearer token into an actor.
type TokenVerifier interface {
	VerifyActor(raw string) (shared.Actor, error)
}

// Middleware is the authorization gate. Protected routes pass through
// Authenticate to establish the actor, then optionally RequireRole for a
// minimum privilege; ownership checks happen in the handlers with the
// actor already in context. Public routes skip the gate entirely.
type Middleware struct {
	Verifier TokenVerifier
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// Authenticate verifies the bearer token and attaches the actor to the
// request context. Missing, malformed and expired tokens all answer with
// the same 401 body.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			m.deny(w, r, shared.ErrTokenInvalid)
			return
		}
		actor, err := m.Verifier.VerifyActor(raw)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			m.deny(w, r, err)
			return
		}
		ctx := shared.ContextWithActor(r.Context(), actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole ensures the authenticated actor holds at least the given
// privilege level. Must run after Authenticate.
func (m Middleware) RequireRole(min Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				m.deny(w, r, shared.ErrTokenInvalid)
				return
			}
			if !Role(actor.Role).AtLeast(min) {
				m.deny(w, r, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) deny(w http.ResponseWriter, r *http.Request, err error) {
	if m.Metrics != nil {
		switch err {
		case shared.ErrForbidden:
			m.Metrics.IncDenial("forbidden")
		default:
			m.Metrics.IncDenial("unauthenticated")
		}
	}
	httpx.RespondError(w, err)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
