// Package store persists composed receipts across runs.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"              // SQLite driver

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// SQLStore implements the ReceiptStore interface over database/sql.
type SQLStore struct {
	db       *sql.DB
	backend  schema.DatabaseBackend
	location string
}

var _ contract.ReceiptStore = &SQLStore{} // Compile-time check

// New opens a receipt store for the given backend and runs pending
// migrations. An empty connect string on the SQLite backend falls back
// to the per-user database file.
func New(backend schema.DatabaseBackend, connect string) (*SQLStore, error) {
	db, location, err := openDB(backend, connect)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cannot reach %s receipt store: %w", backend, err)
	}
	if err := migrateDB(db, backend, -1); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLStore{db: db, backend: backend, location: location}, nil
}

func openDB(backend schema.DatabaseBackend, connect string) (*sql.DB, string, error) {
	var driver string
	switch backend {
	case schema.SQLiteBackend:
		driver = "sqlite"
		if connect == "" {
			connect = contract.GetStoreDBFilePath()
		}
	case schema.MySQLBackend:
		driver = "mysql"
	case schema.PostgreSQLBackend:
		driver = "pgx"
	default:
		return nil, "", fmt.Errorf("unsupported receipt store backend: %s", backend)
	}

	db, err := sql.Open(driver, connect)
	if err != nil {
		return nil, "", fmt.Errorf("cannot open %s receipt store: %w", backend, err)
	}
	return db, connect, nil
}

// rebind rewrites ? placeholders for backends that number them.
func (s *SQLStore) rebind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	var out []byte
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// Put implements the ReceiptStore interface. One receipt is kept per
// repository state and preset; a rerun replaces it.
func (s *SQLStore) Put(repoHash string, preset schema.PresetName, receipt []byte, createdAt int64) error {
	if err := s.delete(repoHash, preset); err != nil {
		return err
	}
	query := s.rebind(`INSERT INTO receipts (repo_hash, preset, receipt, schema_version, created_at) VALUES (?, ?, ?, ?, ?)`)
	_, err := s.db.Exec(query, repoHash, string(preset), receipt, schema.SchemaVersion, createdAt)
	if err != nil {
		return fmt.Errorf("cannot store receipt: %w", err)
	}
	return nil
}

func (s *SQLStore) delete(repoHash string, preset schema.PresetName) error {
	query := s.rebind(`DELETE FROM receipts WHERE repo_hash = ? AND preset = ?`)
	if _, err := s.db.Exec(query, repoHash, string(preset)); err != nil {
		return fmt.Errorf("cannot replace receipt: %w", err)
	}
	return nil
}

// Get implements the ReceiptStore interface. Returns sql.ErrNoRows when
// no receipt is stored for the key.
func (s *SQLStore) Get(repoHash string, preset schema.PresetName) ([]byte, error) {
	query := s.rebind(`SELECT receipt FROM receipts WHERE repo_hash = ? AND preset = ?`)
	var receipt []byte
	if err := s.db.QueryRow(query, repoHash, string(preset)).Scan(&receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// Status implements the ReceiptStore interface.
func (s *SQLStore) Status() (contract.StoreStatus, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM receipts`).Scan(&count); err != nil {
		return contract.StoreStatus{}, fmt.Errorf("cannot count receipts: %w", err)
	}
	return contract.StoreStatus{
		Backend:  s.backend,
		Location: s.location,
		Receipts: count,
	}, nil
}

// Clear implements the ReceiptStore interface.
func (s *SQLStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM receipts`); err != nil {
		return fmt.Errorf("cannot clear receipts: %w", err)
	}
	return nil
}

// Close implements the ReceiptStore interface.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
