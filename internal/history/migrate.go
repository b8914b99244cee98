package history

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrNewerSchema reports a database written by a newer recfix.
var ErrNewerSchema = errors.New("history database is newer than this build")

// migrations returns the numbered scripts in order. Script N upgrades a
// database at user_version N-1 to N.
func migrations() ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, err
	}
	scripts := make([]string, 0, len(entries))
	for _, entry := range entries {
		data, err := migrationFS.ReadFile(path.Join("migrations", entry.Name()))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, string(data))
	}
	return scripts, nil
}

// migrate brings the database up to the latest user_version in one
// transaction.
func (s *Store) migrate(ctx context.Context) error {
	scripts, err := migrations()
	if err != nil {
		return fmt.Errorf("load history migrations: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var version int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read history version: %w", err)
	}
	latest := len(scripts)
	switch {
	case version == latest:
		return nil
	case version > latest:
		return fmt.Errorf("%w: %s is at version %d, this build knows %d", ErrNewerSchema, s.path, version, latest)
	}

	for v := version; v < latest; v++ {
		if _, err := tx.ExecContext(ctx, scripts[v]); err != nil {
			return fmt.Errorf("apply history migration %d: %w", v+1, err)
		}
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", latest)); err != nil {
		return fmt.Errorf("record history version: %w", err)
	}
	return tx.Commit()
}
