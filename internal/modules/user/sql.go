package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/georgemunganga/orderdesk/internal/apperr"
	"github.com/georgemunganga/orderdesk/internal/platform/database"
)

const userColumns = `id, username, email, password_hash, role, approved, is_active, created_at`

type sqlRepository struct {
	store database.Store
}

// NewSQLRepository creates a user repository over any supported store.
func NewSQLRepository(store database.Store) Repository {
	return &sqlRepository{store: store}
}

func (r *sqlRepository) Create(ctx context.Context, u *User) (int64, error) {
	id, err := r.store.Insert(ctx, `
		INSERT INTO users (username, email, password_hash, role, approved, is_active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.Role, u.Approved, u.IsActive)
	return id, errors.Wrap(err, "insert user")
}

func (r *sqlRepository) getOne(ctx context.Context, where string, arg interface{}) (*User, error) {
	u := &User{}
	err := r.store.QueryOne(ctx, u, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "select user")
	}
	return u, nil
}

func (r *sqlRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *sqlRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `email = ?`, email)
}

func (r *sqlRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, `username = ?`, username)
}

func (r *sqlRepository) ListPending(ctx context.Context) ([]*User, error) {
	var users []*User
	err := r.store.QueryAll(ctx, &users,
		`SELECT `+userColumns+` FROM users WHERE approved = ? ORDER BY created_at DESC, id DESC`, false)
	return users, errors.Wrap(err, "list pending users")
}

func (r *sqlRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.store.QueryOne(ctx, &n, `SELECT COUNT(*) FROM users WHERE approved = ?`, false)
	return n, errors.Wrap(err, "count pending users")
}

func (r *sqlRepository) ListApprovedSales(ctx context.Context) ([]*User, error) {
	var users []*User
	err := r.store.QueryAll(ctx, &users,
		`SELECT `+userColumns+` FROM users WHERE role = ? AND approved = ? ORDER BY username`,
		RoleSales, true)
	return users, errors.Wrap(err, "list approved sales users")
}

func (r *sqlRepository) CountByRole(ctx context.Context, role Role) (int, error) {
	var n int
	err := r.store.QueryOne(ctx, &n, `SELECT COUNT(*) FROM users WHERE role = ?`, role)
	return n, errors.Wrap(err, "count users by role")
}

func (r *sqlRepository) SetApproved(ctx context.Context, id int64, approved bool) error {
	_, err := r.store.Execute(ctx, `UPDATE users SET approved = ? WHERE id = ?`, approved, id)
	return errors.Wrap(err, "update user approval")
}

func (r *sqlRepository) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.store.Execute(ctx, `UPDATE users SET is_active = ? WHERE id = ?`, active, id)
	return errors.Wrap(err, "update user status")
}

func (r *sqlRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.store.Execute(ctx, `DELETE FROM users WHERE id = ?`, id)
	return errors.Wrap(err, "delete user")
}

func (r *sqlRepository) CountOrders(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.store.QueryOne(ctx, &n, `SELECT COUNT(*) FROM orders WHERE sales_user_id = ?`, id)
	return n, errors.Wrap(err, "count user orders")
}
