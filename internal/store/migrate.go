package store

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/repotally/repotally/schema"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// Migrate runs receipt store migrations for the given backend.
// - targetVersion < 0 migrates to the latest version.
// - targetVersion == 0 rolls every migration back.
// - targetVersion > 0 migrates to that specific version.
func Migrate(backend schema.DatabaseBackend, connect string, targetVersion int) error {
	if backend == schema.NoneBackend {
		return fmt.Errorf("migrations need a configured store backend")
	}

	db, _, err := openDB(backend, connect)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("cannot reach %s receipt store: %w", backend, err)
	}
	return migrateDB(db, backend, targetVersion)
}

func migrateDB(db *sql.DB, backend schema.DatabaseBackend, targetVersion int) error {
	var driver database.Driver
	var err error
	switch backend {
	case schema.SQLiteBackend:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case schema.MySQLBackend:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case schema.PostgreSQLBackend:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return fmt.Errorf("unsupported receipt store backend: %s", backend)
	}
	if err != nil {
		return fmt.Errorf("cannot create %s migrate driver: %w", backend, err)
	}

	// Each backend ships its own migration dialect.
	migrationFS, err := fs.Sub(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		return fmt.Errorf("cannot access migrations for %s: %w", backend, err)
	}
	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("cannot create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "repotally", driver)
	if err != nil {
		return fmt.Errorf("cannot create migrate instance: %w", err)
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("cannot read migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("receipt store is dirty at version %d, fix manually or force a version", currentVersion)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
