package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sacchabazaar/api/internal/platform/httpx"
)

// TokenVerifier verifies session tokens into identities.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// Authenticator wires session token verification into HTTP middleware.
type Authenticator struct {
	verifier TokenVerifier
}

// NewAuthenticator constructs an Authenticator for middleware composition.
func NewAuthenticator(verifier TokenVerifier) *Authenticator {
	return &Authenticator{verifier: verifier}
}

// RequireSession returns middleware rejecting requests without a valid
// bearer session token, storing the resolved identity on the context.
func (a *Authenticator) RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if a == nil || a.verifier == nil {
				httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "authentication is unavailable", http.StatusServiceUnavailable))
				return
			}

			token := bearerToken(r)
			if token == "" {
				httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
				return
			}

			identity, err := a.verifier.Verify(token)
			if err != nil {
				switch {
				case errors.Is(err, ErrSessionTokenExpired):
					httpx.WriteError(ctx, w, httpx.NewError("session_expired", "session token expired", http.StatusUnauthorized))
				default:
					httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "session token invalid", http.StatusUnauthorized))
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
