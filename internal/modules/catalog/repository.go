package catalog

import "context"

// Repository defines the interface for product data storage.
type Repository interface {
	Create(ctx context.Context, p *Product) (int64, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	ListActive(ctx context.Context) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error

	// ApplyPrices updates products matched by name and inserts the rest, in one transaction.
	ApplyPrices(ctx context.Context, rows []PriceRow) (updated, inserted int, err error)
}
