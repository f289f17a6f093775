package user

import "context"

// Service defines the interface for account business logic.
type Service interface {
	// Register creates an unapproved sales account.
	Register(ctx context.Context, req RegisterRequest) (*User, error)

	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	// FindByLogin resolves a login name that may be either an email or a username.
	FindByLogin(ctx context.Context, login string) (*User, error)
	ValidatePassword(u *User, plaintext string) bool

	// FindApprovedSalesUsers lists the sales reps offered in the admin order filter.
	FindApprovedSalesUsers(ctx context.Context) ([]*User, error)
	ListPending(ctx context.Context) ([]*User, error)
	CountPending(ctx context.Context) (int, error)

	Approve(ctx context.Context, id int64) (*User, error)
	// Reject removes an account that was never approved.
	Reject(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) (*User, error)
	Delete(ctx context.Context, id int64) error

	// EnsureAdmin creates the admin account from seed when no admin exists yet.
	// It reports whether an account was created.
	EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error)
}
