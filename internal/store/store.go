package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// pragmas are applied by the driver on every new connection. ent's SQLite
// migration refuses to run with foreign keys off.
var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"foreign_keys(ON)",
	"synchronous(NORMAL)",
}

// sqlite builds statements quoted for the SQLite dialect.
var sqlite = entsql.Dialect(dialect.SQLite)

// Store owns the ent driver and hands out repositories.
type Store struct {
	drv *entsql.Driver
}

// Open connects to the SQLite file at path and runs ent's auto-migration
// for every schema under ent/schema.
func Open(path string) (*Store, error) {
	q := url.Values{"_pragma": pragmas}
	db, err := sql.Open("sqlite", path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := createSchema(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate %s: %w", path, err)
	}
	return &Store{drv: drv}, nil
}

func createSchema(ctx context.Context, drv *entsql.Driver) error {
	tables, err := migrationTables()
	if err != nil {
		return err
	}
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}

// DB returns the underlying *sql.DB for health checks and raw queries.
func (s *Store) DB() *sql.DB { return s.drv.DB() }

func (s *Store) Close() error { return s.drv.Close() }

// EventRepo returns the model call log.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{drv: s.drv}
}

// ProfileRepo returns the learner's vocabulary profile.
func (s *Store) ProfileRepo() ProfileRepo {
	return &profileRepo{drv: s.drv}
}

// DefaultDBPath picks the database location: MINDSYNC_DB if set, else
// mindsync/mindsync.db under XDG_DATA_HOME or ~/.local/share. The parent
// directory is created.
func DefaultDBPath() (string, error) {
	p := os.Getenv("MINDSYNC_DB")
	if p == "" {
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home dir: %w", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
		p = filepath.Join(base, "mindsync", "mindsync.db")
	}
	return p, EnsureDir(p)
}

// EnsureDir creates path's parent directory.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
