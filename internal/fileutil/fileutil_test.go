package fileutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteCreatesParentsAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "nested", "out.csv")
	fs := FS{}
	ctx := context.Background()

	if err := fs.Write(ctx, dst, []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := fs.Write(ctx, dst, []byte("second")); err != nil {
		t.Fatal(err)
	}

	got, err := fs.Read(ctx, dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content mismatch: got %q, want %q", got, "second")
	}
}

func TestWriteMode(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.json")
	if err := (FS{Mode: 0o600}).Write(context.Background(), dst, []byte("{}")); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		t.Fatalf("expected group/other bits cleared, got %v", info.Mode().Perm())
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()
	fs := FS{}
	if _, err := fs.Read(context.Background(), filepath.Join(dir, "missing.json")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := fs.Read(context.Background(), dir); err == nil {
		t.Fatal("expected error reading a directory")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fs.Read(ctx, dir); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		path, suffix, ext, want string
	}{
		{"a/b.json", "", ".csv", "a/b.csv"},
		{"a/b.json", "_FIXED", ".json", "a/b_FIXED.json"},
		{"noext", "_readable", ".csv", "noext_readable.csv"},
		{"dir.v2/data.tar.csv", "", ".json", "dir.v2/data.tar.json"},
	}
	for _, tt := range tests {
		if got := ReplaceExt(tt.path, tt.suffix, tt.ext); got != tt.want {
			t.Errorf("ReplaceExt(%q, %q, %q) = %q, want %q", tt.path, tt.suffix, tt.ext, got, tt.want)
		}
	}
}

func TestIsRegularFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsRegularFile(file) {
		t.Fatal("expected regular file")
	}
	if IsRegularFile(dir) || IsRegularFile(filepath.Join(dir, "nope")) {
		t.Fatal("expected false for directory and missing path")
	}
}
