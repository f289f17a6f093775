// Package database is the storage port shared by every module: a small query contract with
// one implementation per supported dialect (embedded sqlite, postgres, mysql).
package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by QueryOne when the query yields no row.
var ErrNotFound = errors.New("database: no rows in result set")

// Querier is the query surface the repositories are written against.
// Queries use '?' placeholders; each dialect rebinds them.
type Querier interface {
	// QueryAll scans every row into dest, a pointer to a slice.
	QueryAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	// QueryOne scans a single row into dest and returns ErrNotFound when there is none.
	QueryOne(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	// Execute runs a statement and returns the number of affected rows.
	Execute(ctx context.Context, query string, args ...interface{}) (int64, error)
	// Insert runs an INSERT into a table with an "id" key and returns the new id.
	Insert(ctx context.Context, query string, args ...interface{}) (int64, error)
}

// Store is a Querier that can also run a function inside a transaction.
type Store interface {
	Querier
	// InTx runs fn in a transaction, committing when fn returns nil and rolling back otherwise.
	InTx(ctx context.Context, fn func(q Querier) error) error
	Dialect() Dialect
	Close() error
}

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLStore implements Store over database/sql through sqlx.
type SQLStore struct {
	querier
	db  *sqlx.DB
	dsn string
}

// Open connects to the database for the given dialect and verifies the connection.
func Open(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch dialect {
	case SQLite:
		dsn = sqliteDSN(dsn)
		db, err = sqlx.Open("sqlite", dsn)
		if err == nil {
			// One connection: the engine serialises writers and ":memory:" stays a single database.
			db.SetMaxOpenConns(1)
		}
	case Postgres:
		db, err = sqlx.Open("postgres", dsn)
		if err == nil {
			configurePool(db)
		}
	case MySQL:
		dsn, err = mysqlDSN(dsn)
		if err != nil {
			return nil, err
		}
		db, err = sqlx.Open("mysql", dsn)
		if err == nil {
			configurePool(db)
		}
	default:
		return nil, errors.Errorf("unsupported database dialect %q", dialect)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", dialect)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "ping %s database", dialect)
	}

	return &SQLStore{
		querier: querier{ext: db, dialect: dialect},
		db:      db,
		dsn:     dsn,
	}, nil
}

func configurePool(db *sqlx.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", errors.Wrap(err, "parse mysql dsn")
	}
	cfg.ParseTime = true
	// Migration files hold several statements each.
	cfg.MultiStatements = true
	return cfg.FormatDSN(), nil
}

func (s *SQLStore) Dialect() Dialect { return s.dialect }

// DB exposes the underlying pool for tooling such as migrations.
func (s *SQLStore) DB() *sqlx.DB { return s.db }

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	if err := fn(&querier{ext: tx, dialect: s.dialect}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit transaction")
}

type querier struct {
	ext     sqlx.ExtContext
	dialect Dialect
}

func (q *querier) QueryAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, q.ext, dest, q.ext.Rebind(query), args...)
}

func (q *querier) QueryOne(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := sqlx.GetContext(ctx, q.ext, dest, q.ext.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (q *querier) Execute(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := q.ext.ExecContext(ctx, q.ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *querier) Insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if q.dialect == Postgres {
		var id int64
		err := q.ext.QueryRowxContext(ctx, q.ext.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := q.ext.ExecContext(ctx, q.ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
