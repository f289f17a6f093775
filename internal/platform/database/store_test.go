package database_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/orderdesk/internal/platform/database"
	"github.com/georgemunganga/orderdesk/internal/platform/database/databasetest"
)

type userRow struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Approved bool   `db:"approved"`
}

func insertUser(t *testing.T, q database.Querier, name string) int64 {
	t.Helper()
	id, err := q.Insert(context.Background(),
		`INSERT INTO users (username, email, password_hash, role, approved) VALUES (?, ?, ?, ?, ?)`,
		name, name+"@example.com", "hash", "sales", false)
	require.NoError(t, err)
	return id
}

func TestParseDialect(t *testing.T) {
	cases := map[string]database.Dialect{
		"":           database.SQLite,
		"sqlite3":    database.SQLite,
		"PostgreSQL": database.Postgres,
		"mariadb":    database.MySQL,
	}
	for in, want := range cases {
		got, err := database.ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := database.ParseDialect("oracle")
	assert.Error(t, err)
}

func TestInsertAndQuery(t *testing.T) {
	store := databasetest.New(t)
	ctx := context.Background()

	first := insertUser(t, store, "alice")
	second := insertUser(t, store, "bob")
	assert.Equal(t, first+1, second)

	var u userRow
	require.NoError(t, store.QueryOne(ctx, &u, `SELECT id, username, approved FROM users WHERE id = ?`, second))
	assert.Equal(t, "bob", u.Username)
	assert.False(t, u.Approved)

	var all []userRow
	require.NoError(t, store.QueryAll(ctx, &all, `SELECT id, username, approved FROM users ORDER BY id`))
	require.Len(t, all, 2)

	n, err := store.Execute(ctx, `UPDATE users SET approved = ? WHERE id = ?`, true, first)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestQueryOneNotFound(t *testing.T) {
	store := databasetest.New(t)

	var u userRow
	err := store.QueryOne(context.Background(), &u, `SELECT id, username, approved FROM users WHERE id = ?`, 42)
	assert.True(t, errors.Is(err, database.ErrNotFound))
}

func TestInTxRollsBackOnError(t *testing.T) {
	store := databasetest.New(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.InTx(ctx, func(q database.Querier) error {
		insertUser(t, q, "carol")
		return boom
	})
	assert.Equal(t, boom, err)

	var count int
	require.NoError(t, store.QueryOne(ctx, &count, `SELECT COUNT(*) FROM users`))
	assert.Zero(t, count)

	require.NoError(t, store.InTx(ctx, func(q database.Querier) error {
		insertUser(t, q, "dave")
		return nil
	}))
	require.NoError(t, store.QueryOne(ctx, &count, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 1, count)
}

func TestStatusCheckConstraint(t *testing.T) {
	store := databasetest.New(t)
	ctx := context.Background()
	owner := insertUser(t, store, "erin")

	_, err := store.Insert(ctx,
		`INSERT INTO orders (sales_user_id, client_name, status, total_amount) VALUES (?, ?, ?, ?)`,
		owner, "Client", "cancelled", "10.00")
	assert.Error(t, err)
}

func TestMigrateDownAndUp(t *testing.T) {
	store := databasetest.New(t)

	require.NoError(t, database.MigrateDown(store))
	require.NoError(t, database.MigrateUp(store))
	insertUser(t, store, "frank")
}
