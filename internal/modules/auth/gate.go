package auth

import (
	"net/http"
	"strings"

	"github.com/georgemunganga/orderdesk/internal/apperr"
	"github.com/georgemunganga/orderdesk/internal/modules/user"
	"github.com/georgemunganga/orderdesk/internal/platform/httpx"
)

// Gate turns bearer tokens into an Identity and enforces role checks.
type Gate struct {
	tokens Service
	users  user.Service
}

func NewGate(tokens Service, users user.Service) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate requires a valid bearer token for an existing, approved and active account.
// The account is reloaded on every request so that deactivation takes effect immediately.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpx.Error(w, r, apperr.Unauthenticated("Access token required"), "")
			return
		}
		claims, err := g.tokens.Verify(token)
		if err != nil {
			httpx.Error(w, r, err, "")
			return
		}
		u, err := g.users.FindByID(r.Context(), claims.UserID)
		if apperr.Is(err, apperr.KindNotFound) {
			err = apperr.Unauthenticated("User not found")
		}
		if err != nil {
			httpx.Error(w, r, err, "Authentication failed")
			return
		}
		if !u.IsActive {
			httpx.Error(w, r, apperr.Forbidden("Your account has been deactivated"), "")
			return
		}
		if !u.Approved {
			httpx.Error(w, r, apperr.Forbidden("Your account is pending approval by an administrator"), "")
			return
		}

		id := Identity{ID: u.ID, Username: u.Username, Role: u.Role, Approved: u.Approved, Active: u.IsActive}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireRole lets the request through only when the caller holds one of roles.
func (g *Gate) RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				httpx.Error(w, r, apperr.Unauthenticated("Access token required"), "")
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.Error(w, r, apperr.Forbidden("Insufficient permissions"), "")
		})
	}
}

// Guards bundles the middlewares other modules mount their routes behind.
func (g *Gate) Guards() httpx.Guards {
	return httpx.Guards{
		Authenticated: g.Authenticate,
		Admin:         g.RequireRole(user.RoleAdmin),
		Sales:         g.RequireRole(user.RoleSales),
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
