package database

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrateUp applies every pending migration for the store's dialect.
func MigrateUp(s *SQLStore) error {
	return runMigrations(s, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls back every applied migration.
func MigrateDown(s *SQLStore) error {
	return runMigrations(s, func(m *migrate.Migrate) error { return m.Down() })
}

func runMigrations(s *SQLStore, step func(m *migrate.Migrate) error) error {
	src, err := iofs.New(migrationsFS, "migrations/"+string(s.dialect))
	if err != nil {
		return errors.Wrap(err, "load migrations")
	}
	defer src.Close()

	driver, closeDriver, err := migrationDriver(s)
	if err != nil {
		return err
	}
	defer closeDriver()

	m, err := migrate.NewWithInstance("iofs", src, string(s.dialect), driver)
	if err != nil {
		return errors.Wrap(err, "init migrations")
	}

	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "run migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "read schema version")
	}
	log.WithFields(log.Fields{"dialect": s.dialect, "version": version, "dirty": dirty}).Info("Schema is up to date")
	return nil
}

// migrationDriver returns a migrate driver for the store. Closing a migrate driver closes the
// *sql.DB it wraps, so server dialects get a dedicated connection while sqlite (which may be
// ":memory:") shares the store's pool and is never closed here.
func migrationDriver(s *SQLStore) (migratedb.Driver, func(), error) {
	noop := func() {}
	switch s.dialect {
	case SQLite:
		driver, err := migratesqlite.WithInstance(s.db.DB, &migratesqlite.Config{})
		return driver, noop, errors.Wrap(err, "sqlite migration driver")
	case Postgres, MySQL:
		db, err := sql.Open(string(s.dialect), s.dsn)
		if err != nil {
			return nil, noop, errors.Wrap(err, "open migration connection")
		}
		var driver migratedb.Driver
		if s.dialect == Postgres {
			driver, err = migratepg.WithInstance(db, &migratepg.Config{})
		} else {
			driver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
		}
		if err != nil {
			db.Close()
			return nil, noop, errors.Wrapf(err, "%s migration driver", s.dialect)
		}
		return driver, func() { driver.Close() }, nil
	}
	return nil, noop, errors.Errorf("unsupported database dialect %q", s.dialect)
}
