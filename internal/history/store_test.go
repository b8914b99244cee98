package history_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"recfix/internal/history"
	"recfix/internal/testsupport"
)

func TestRecordAndList(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	first, err := store.Record(ctx, history.Entry{
		RunID:       "run-1",
		Input:       "/in/a.json",
		Output:      "/in/a.csv",
		Direction:   "json_to_csv",
		Records:     2,
		Status:      history.StatusConverted,
		StartedAt:   started,
		CompletedAt: started.Add(1500 * time.Millisecond),
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if _, err := store.Record(ctx, history.Entry{
		RunID:  "run-1",
		Input:  "/in/b.csv",
		Status: history.StatusFailed,
		Error:  "missing id column",
	}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Input != "/in/b.csv" {
		t.Fatalf("expected newest first, got %q", entries[0].Input)
	}
	if entries[0].Output != "" || entries[0].Error != "missing id column" {
		t.Fatalf("unexpected nullable columns: %#v", entries[0])
	}
	got := entries[1]
	if got.Direction != "json_to_csv" || got.Records != 2 || got.Status != history.StatusConverted {
		t.Fatalf("unexpected entry: %#v", got)
	}
	if got.Duration() != 1500*time.Millisecond {
		t.Fatalf("unexpected duration: %s", got.Duration())
	}

	limited, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List with limit failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 entry with limit, got %d", len(limited))
	}
}

func TestRecordValidatesEntry(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	if _, err := store.Record(ctx, history.Entry{Status: history.StatusConverted}); err == nil {
		t.Fatal("expected error when input missing")
	}
	if _, err := store.Record(ctx, history.Entry{Input: "x"}); err == nil {
		t.Fatal("expected error when status missing")
	}
}

func TestSummarizeListRunAndPrune(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	statuses := []history.Status{
		history.StatusConverted,
		history.StatusConverted,
		history.StatusSkipped,
		history.StatusFailed,
		history.StatusConverted,
	}
	for i, status := range statuses {
		run := "run-a"
		if i >= 3 {
			run = "run-b"
		}
		if _, err := store.Record(ctx, history.Entry{RunID: run, Input: fmt.Sprintf("f%d", i), Status: status}); err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	summary, err := store.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	want := history.Summary{Total: 5, Converted: 3, Skipped: 1, Failed: 1}
	if summary != want {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}

	run, err := store.ListRun(ctx, "run-b")
	if err != nil {
		t.Fatalf("ListRun failed: %v", err)
	}
	if len(run) != 2 || run[0].Input != "f3" {
		t.Fatalf("unexpected run entries: %#v", run)
	}

	removed, err := store.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 pruned rows, got %d", removed)
	}
	remaining, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 2 || remaining[0].Input != "f4" || remaining[1].Input != "f3" {
		t.Fatalf("prune kept the wrong rows: %#v", remaining)
	}

	if removed, err := store.Prune(ctx, 0); err != nil || removed != 0 {
		t.Fatalf("Prune(0) = %d, %v; want no-op", removed, err)
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("expected 2 cleared rows, got %d", cleared)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := store.Record(context.Background(), history.Entry{Input: "a", Status: history.StatusSkipped}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	entries, err := reopened.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected persisted entry, got %d", len(entries))
	}
}

func TestOpenMigratesOlderDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := store.Record(context.Background(), history.Entry{Input: "a", Status: history.StatusConverted}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	latest, err := store.UserVersionForTest()
	if err != nil {
		t.Fatalf("read version: %v", err)
	}
	if latest < 2 {
		t.Fatalf("expected at least two migrations, got version %d", latest)
	}
	// Roll the file back to the first schema version.
	if err := store.ExecForTest("DROP INDEX idx_conversions_status; PRAGMA user_version = 1"); err != nil {
		t.Fatalf("downgrade: %v", err)
	}
	store.Close()

	reopened := testsupport.MustOpenStore(t, cfg)
	version, err := reopened.UserVersionForTest()
	if err != nil {
		t.Fatalf("read version: %v", err)
	}
	if version != latest {
		t.Fatalf("version = %d, want %d", version, latest)
	}
	exists, err := reopened.IndexExistsForTest("idx_conversions_status")
	if err != nil || !exists {
		t.Fatalf("status index not recreated: exists=%v err=%v", exists, err)
	}
	entries, err := reopened.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("migration lost entries: %d", len(entries))
	}
}

func TestOpenRejectsNewerDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.ExecForTest("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set version: %v", err)
	}
	store.Close()

	_, err = history.Open(cfg)
	if !errors.Is(err, history.ErrNewerSchema) {
		t.Fatalf("expected ErrNewerSchema, got %v", err)
	}
}

func TestConcurrentRecords(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	const writers = 8
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			_, err := store.Record(ctx, history.Entry{RunID: "run", Input: fmt.Sprintf("f%d", i), Status: history.StatusConverted})
			errs <- err
		}(i)
	}
	for i := 0; i < writers; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	summary, err := store.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.Converted != writers {
		t.Fatalf("converted = %d, want %d", summary.Converted, writers)
	}
}
