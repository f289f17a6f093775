package order

import "context"

// Repository defines data access for orders, the ledger.
type Repository interface {
	// Create persists a new order and its items atomically and returns the order id.
	Create(ctx context.Context, o *Order) (int64, error)

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id int64) (*Order, error)

	// Exists reports whether an order with the id is present.
	Exists(ctx context.Context, id int64) (bool, error)

	// List returns orders newest first, without items.
	List(ctx context.Context, f Filter) ([]*Order, error)

	ListUnnotified(ctx context.Context) ([]*Order, error)
	CountUnnotified(ctx context.Context) (int, error)
	MarkNotified(ctx context.Context, id int64) error
	// MarkAllNotified flags every unnotified order in one statement and returns how many changed.
	MarkAllNotified(ctx context.Context) (int64, error)

	UpdateStatus(ctx context.Context, id int64, status Status) error

	// Delete removes the order's items and then the order, in one transaction.
	Delete(ctx context.Context, id int64) error
}
