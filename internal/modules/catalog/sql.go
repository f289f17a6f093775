package catalog

import (
	"context"

	"github.com/pkg/errors"

	"github.com/georgemunganga/orderdesk/internal/apperr"
	"github.com/georgemunganga/orderdesk/internal/platform/database"
)

const productColumns = `id, name, description, category, price, wholesale_price, stock_quantity, image_url, active, created_at`

type sqlRepository struct {
	store database.Store
}

// NewSQLRepository creates a product repository over any supported store.
func NewSQLRepository(store database.Store) Repository {
	return &sqlRepository{store: store}
}

func insertProduct(ctx context.Context, q database.Querier, p *Product) (int64, error) {
	return q.Insert(ctx, `
		INSERT INTO products (name, description, category, price, wholesale_price, stock_quantity, image_url, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Category, p.RetailPrice, p.WholesalePrice, p.StockQuantity, p.ImageURL, p.Active)
}

func (r *sqlRepository) Create(ctx context.Context, p *Product) (int64, error) {
	id, err := insertProduct(ctx, r.store, p)
	return id, errors.Wrap(err, "insert product")
}

func (r *sqlRepository) GetByID(ctx context.Context, id int64) (*Product, error) {
	p := &Product{}
	err := r.store.QueryOne(ctx, p, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "select product")
	}
	return p, nil
}

func (r *sqlRepository) ListAll(ctx context.Context) ([]*Product, error) {
	var products []*Product
	err := r.store.QueryAll(ctx, &products,
		`SELECT `+productColumns+` FROM products ORDER BY category, name`)
	return products, errors.Wrap(err, "list products")
}

func (r *sqlRepository) ListActive(ctx context.Context) ([]*Product, error) {
	var products []*Product
	err := r.store.QueryAll(ctx, &products,
		`SELECT `+productColumns+` FROM products WHERE active = ? ORDER BY category, name`, true)
	return products, errors.Wrap(err, "list active products")
}

func (r *sqlRepository) Update(ctx context.Context, p *Product) error {
	_, err := r.store.Execute(ctx, `
		UPDATE products
		SET name = ?, description = ?, category = ?, price = ?, wholesale_price = ?,
		    stock_quantity = ?, image_url = ?, active = ?
		WHERE id = ?`,
		p.Name, p.Description, p.Category, p.RetailPrice, p.WholesalePrice,
		p.StockQuantity, p.ImageURL, p.Active, p.ID)
	return errors.Wrap(err, "update product")
}

func (r *sqlRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.store.Execute(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if n == 0 {
		return apperr.NotFound("Product not found")
	}
	return nil
}

func (r *sqlRepository) ApplyPrices(ctx context.Context, rows []PriceRow) (updated, inserted int, err error) {
	err = r.store.InTx(ctx, func(q database.Querier) error {
		for _, row := range rows {
			n, err := q.Execute(ctx,
				`UPDATE products SET wholesale_price = ?, price = ?, category = ? WHERE name = ?`,
				row.WholesalePrice, row.RetailPrice, row.Category, row.Name)
			if err != nil {
				return errors.Wrapf(err, "update price of %q", row.Name)
			}
			if n > 0 {
				updated++
				continue
			}
			_, err = insertProduct(ctx, q, &Product{
				Name:           row.Name,
				Category:       row.Category,
				RetailPrice:    row.RetailPrice,
				WholesalePrice: row.WholesalePrice,
				Active:         true,
			})
			if err != nil {
				return errors.Wrapf(err, "insert product %q", row.Name)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return updated, inserted, nil
}
