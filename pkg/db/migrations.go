package db

import (
	"database/sql"
	"embed"
	stderrors "errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// newMigrator binds the embedded activity journal schema to database.
// Closing the migrator would close database, so callers never do.
func newMigrator(database *sql.DB) (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(database, &sqlite3.Config{})
	if err != nil {
		return nil, errors.NewPersistenceError("failed to create sqlite migration driver", err, nil)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, errors.NewPersistenceError("failed to read embedded migrations", err, nil)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, errors.NewPersistenceError("failed to create migrator", err, nil)
	}
	return m, nil
}

// RunMigrations brings the journal schema up to date and returns the
// resulting schema version.
func RunMigrations(database *sql.DB) (uint, error) {
	m, err := newMigrator(database)
	if err != nil {
		return 0, err
	}
	if err := m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return 0, errors.NewPersistenceError("failed to migrate activity journal", err, nil)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, errors.NewPersistenceError("failed to read schema version", err, nil)
	}
	if dirty {
		return version, errors.NewPersistenceError("activity journal schema is dirty", nil, map[string]interface{}{
			"version": version,
		})
	}
	return version, nil
}
