package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories, and returns
// the path.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// SampleExport is a small export with a literal newline inside a string, the
// shape the repair path exists for.
const SampleExport = "{\"records\":[" +
	"{\"id\":\"rec1\",\"createdTime\":\"2024-01-01T00:00:00Z\",\"fields\":{\"name\":\"Acme Inc.\",\"notes\":\"Line one\nLine two\"}}," +
	"{\"id\":\"rec2\",\"createdTime\":\"2024-01-02T00:00:00Z\",\"fields\":{\"name\":\"Widgets, and Gadgets\"}}" +
	"]}"

// SampleCSV is the table form of SampleExport.
const SampleCSV = "id,createdTime,name,notes\n" +
	"rec1,2024-01-01T00:00:00Z,Acme Inc.,Line one | Line two\n" +
	"rec2,2024-01-02T00:00:00Z,\"Widgets, and Gadgets\",\n"
