// Package auth issues and verifies bearer tokens and gates routes by role and ownership.
package auth

import (
	"context"

	"github.com/dgrijalva/jwt-go"

	"github.com/georgemunganga/orderdesk/internal/modules/user"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login checks the credentials (login is an email or a username) and issues a token.
	Login(ctx context.Context, login, password string) (*Session, error)
	// Verify parses a token and returns its claims.
	Verify(token string) (*Claims, error)
}

// Claims are the JWT payload.
type Claims struct {
	UserID int64     `json:"id"`
	Role   user.Role `json:"role"`
	jwt.StandardClaims
}

// Session is the result of a successful login.
type Session struct {
	User  Profile `json:"user"`
	Token string  `json:"token"`
}

// Profile is the public part of an account.
type Profile struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     user.Role `json:"role"`
}

func profileOf(u *user.User) Profile {
	return Profile{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID       int64
	Username string
	Role     user.Role
	Approved bool
	Active   bool
}

func (i Identity) IsAdmin() bool { return i.Role == user.RoleAdmin }

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the caller stored by the Authenticate middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// OwnerOrRole reports whether the caller owns the resource or holds role.
func OwnerOrRole(id Identity, ownerID int64, role user.Role) bool {
	return id.ID == ownerID || id.Role == role
}
