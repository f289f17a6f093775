package user

import "context"

// Repository defines the interface for account storage.
type Repository interface {
	// Create inserts u and returns its new id.
	Create(ctx context.Context, u *User) (int64, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)

	// ListPending returns accounts awaiting approval, newest first.
	ListPending(ctx context.Context) ([]*User, error)
	CountPending(ctx context.Context) (int, error)
	// ListApprovedSales returns approved sales accounts ordered by username.
	ListApprovedSales(ctx context.Context) ([]*User, error)
	CountByRole(ctx context.Context, role Role) (int, error)

	SetApproved(ctx context.Context, id int64, approved bool) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error

	// CountOrders reports how many orders reference the account as their owner.
	CountOrders(ctx context.Context, id int64) (int, error)
}
