package history

import "context"

// UserVersionForTest reports the stored schema version.
func (s *Store) UserVersionForTest() (int, error) {
	var version int
	err := s.db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version)
	return version, err
}

// ExecForTest runs raw SQL against the history database.
func (s *Store) ExecForTest(query string) error {
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// IndexExistsForTest reports whether the named index exists.
func (s *Store) IndexExistsForTest(name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(context.Background(),
		"SELECT COUNT(1) FROM sqlite_master WHERE type = 'index' AND name = ?", name).Scan(&count)
	return count > 0, err
}
