package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const entryColumns = "id, run_id, input_path, output_path, direction, records, skipped, status, error_message, started_at, completed_at"

// Record inserts a conversion outcome and returns it with its assigned id.
func (s *Store) Record(ctx context.Context, entry Entry) (Entry, error) {
	if entry.Input == "" {
		return Entry{}, errors.New("history entry requires an input path")
	}
	if entry.Status == "" {
		return Entry{}, errors.New("history entry requires a status")
	}
	if entry.CompletedAt.IsZero() {
		entry.CompletedAt = time.Now()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = entry.CompletedAt
	}
	entry.StartedAt = entry.StartedAt.UTC()
	entry.CompletedAt = entry.CompletedAt.UTC()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversions (
            run_id, input_path, output_path, direction, records, skipped,
            status, error_message, started_at, completed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Input,
		nullableString(entry.Output),
		nullableString(entry.Direction),
		entry.Records,
		entry.Skipped,
		string(entry.Status),
		nullableString(entry.Error),
		entry.StartedAt.Format(time.RFC3339Nano),
		entry.CompletedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert conversion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	return entry, nil
}

// List returns the most recent entries first. A limit of zero or less
// returns every row.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM conversions ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// ListRun returns the entries recorded for one run in insertion order.
func (s *Store) ListRun(ctx context.Context, runID string) ([]Entry, error) {
	return s.query(ctx, `SELECT `+entryColumns+` FROM conversions WHERE run_id = ? ORDER BY id`, runID)
}

// Summarize counts all entries by status.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM conversions GROUP BY status`)
	if err != nil {
		return Summary{}, fmt.Errorf("history summary: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, err
		}
		summary.Total += count
		switch status {
		case StatusConverted:
			summary.Converted += count
		case StatusSkipped:
			summary.Skipped += count
		case StatusFailed:
			summary.Failed += count
		}
	}
	return summary, rows.Err()
}

// Clear removes every entry and returns the number deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversions`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

// Prune keeps the newest retain entries and deletes the rest. A retain value
// of zero or less keeps everything.
func (s *Store) Prune(ctx context.Context, retain int) (int64, error) {
	if retain <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM conversions WHERE id NOT IN (SELECT id FROM conversions ORDER BY id DESC LIMIT ?)`,
		retain,
	)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry      Entry
		output     sql.NullString
		direction  sql.NullString
		status     string
		errMessage sql.NullString
		startedRaw string
		doneRaw    string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.Input,
		&output,
		&direction,
		&entry.Records,
		&entry.Skipped,
		&status,
		&errMessage,
		&startedRaw,
		&doneRaw,
	); err != nil {
		return Entry{}, fmt.Errorf("scan conversion: %w", err)
	}
	entry.Output = output.String
	entry.Direction = direction.String
	entry.Status = Status(status)
	entry.Error = errMessage.String
	entry.StartedAt = parseTime(startedRaw)
	entry.CompletedAt = parseTime(doneRaw)
	return entry, nil
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
