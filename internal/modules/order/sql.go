package order

import (
	"context"

	"github.com/pkg/errors"

	"github.com/georgemunganga/orderdesk/internal/apperr"
	"github.com/georgemunganga/orderdesk/internal/platform/database"
)

const selectOrders = `
	SELECT o.id, o.sales_user_id, COALESCE(u.username, '') AS sales_username,
	       o.client_name, o.client_email, o.client_phone, o.client_location,
	       o.status, o.total_amount, o.notes, o.admin_notified, o.created_at
	FROM orders o
	LEFT JOIN users u ON u.id = o.sales_user_id`

const newestFirst = ` ORDER BY o.created_at DESC, o.id DESC`

type sqlRepository struct {
	store database.Store
}

// NewSQLRepository creates the order ledger over any supported store.
func NewSQLRepository(store database.Store) Repository {
	return &sqlRepository{store: store}
}

// Create inserts the order and all its items inside a single transaction.
func (r *sqlRepository) Create(ctx context.Context, o *Order) (int64, error) {
	var id int64
	err := r.store.InTx(ctx, func(q database.Querier) error {
		var err error
		id, err = q.Insert(ctx, `
			INSERT INTO orders
			  (sales_user_id, client_name, client_email, client_phone, client_location,
			   status, total_amount, notes, admin_notified)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.SalesUserID, o.ClientName, o.ClientEmail, o.ClientPhone, o.ClientLocation,
			o.Status, o.TotalAmount, o.Notes, o.AdminNotified)
		if err != nil {
			return errors.Wrap(err, "insert order")
		}

		for _, item := range o.Items {
			_, err = q.Insert(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, unit_price)
				VALUES (?, ?, ?, ?)`,
				id, item.ProductID, item.Quantity, item.UnitPrice)
			if err != nil {
				return errors.Wrapf(err, "insert order item for product %d", item.ProductID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *sqlRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	o := &Order{}
	err := r.store.QueryOne(ctx, o, selectOrders+` WHERE o.id = ?`, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "select order")
	}

	// Items of deleted products keep listing with an empty name.
	err = r.store.QueryAll(ctx, &o.Items, `
		SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name, '') AS product_name,
		       oi.quantity, oi.unit_price
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.id`, id)
	if err != nil {
		return nil, errors.Wrap(err, "select order items")
	}
	return o, nil
}

func (r *sqlRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := r.store.QueryOne(ctx, &n, `SELECT COUNT(*) FROM orders WHERE id = ?`, id)
	if err != nil {
		return false, errors.Wrap(err, "check order")
	}
	return n > 0, nil
}

func (r *sqlRepository) List(ctx context.Context, f Filter) ([]*Order, error) {
	query := selectOrders + ` WHERE 1=1`
	var args []interface{}
	if f.SalesUserID != 0 {
		query += ` AND o.sales_user_id = ?`
		args = append(args, f.SalesUserID)
	}
	if f.Status != "" {
		query += ` AND o.status = ?`
		args = append(args, f.Status)
	}

	var orders []*Order
	err := r.store.QueryAll(ctx, &orders, query+newestFirst, args...)
	return orders, errors.Wrap(err, "list orders")
}

func (r *sqlRepository) ListUnnotified(ctx context.Context) ([]*Order, error) {
	var orders []*Order
	err := r.store.QueryAll(ctx, &orders, selectOrders+` WHERE o.admin_notified = ?`+newestFirst, false)
	return orders, errors.Wrap(err, "list unnotified orders")
}

func (r *sqlRepository) CountUnnotified(ctx context.Context) (int, error) {
	var n int
	err := r.store.QueryOne(ctx, &n, `SELECT COUNT(*) FROM orders WHERE admin_notified = ?`, false)
	return n, errors.Wrap(err, "count unnotified orders")
}

func (r *sqlRepository) MarkNotified(ctx context.Context, id int64) error {
	_, err := r.store.Execute(ctx, `UPDATE orders SET admin_notified = ? WHERE id = ?`, true, id)
	return errors.Wrap(err, "mark order notified")
}

func (r *sqlRepository) MarkAllNotified(ctx context.Context) (int64, error) {
	n, err := r.store.Execute(ctx,
		`UPDATE orders SET admin_notified = ? WHERE admin_notified = ?`, true, false)
	return n, errors.Wrap(err, "mark all orders notified")
}

func (r *sqlRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	_, err := r.store.Execute(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	return errors.Wrap(err, "update order status")
}

func (r *sqlRepository) Delete(ctx context.Context, id int64) error {
	return r.store.InTx(ctx, func(q database.Querier) error {
		if _, err := q.Execute(ctx, `DELETE FROM order_items WHERE order_id = ?`, id); err != nil {
			return errors.Wrap(err, "delete order items")
		}
		n, err := q.Execute(ctx, `DELETE FROM orders WHERE id = ?`, id)
		if err != nil {
			return errors.Wrap(err, "delete order")
		}
		if n == 0 {
			return apperr.NotFound("Order not found")
		}
		return nil
	})
}
