package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recfix/internal/config"
	"recfix/internal/textutil"
)

// Options describes logger construction parameters.
type Options struct {
	// Level is debug, info, warn or error. Anything else means info.
	Level string
	// Format is console or json; empty means console.
	Format string
	// OutputPaths lists stdout, stderr or file paths. Empty means stderr.
	OutputPaths []string
	// RunID is attached to every record when set.
	RunID string
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	handler, err := newHandler(opts)
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

func newHandler(opts Options) (slog.Handler, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	w, err := openOutputs(opts.OutputPaths)
	if err != nil {
		return nil, err
	}

	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	addSource := level.Level() <= slog.LevelDebug

	var handler slog.Handler
	if format == "json" {
		handler = newJSONHandler(w, level, addSource)
	} else {
		handler = newConsoleHandler(w, level, addSource)
	}
	if opts.RunID != "" {
		handler = newRunIDHandler(handler, opts.RunID)
	}
	return handler, nil
}

// NewFromConfig creates a logger for one CLI run. Records go to stderr in the
// configured format and, when a log directory is configured, to a per-run
// JSON file inside it whose path is returned.
func NewFromConfig(cfg *config.Config, runID string) (*slog.Logger, string, error) {
	if cfg == nil {
		logger, err := New(Options{RunID: runID})
		return logger, "", err
	}

	stderr, err := newHandler(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
		RunID:       runID,
	})
	if err != nil {
		return nil, "", err
	}
	if cfg.Paths.LogDir == "" {
		return slog.New(stderr), "", nil
	}

	logPath := filepath.Join(cfg.Paths.LogDir, RunLogName(time.Now(), runID))
	file, err := newHandler(Options{
		Level:       cfg.Logging.Level,
		Format:      "json",
		OutputPaths: []string{logPath},
		RunID:       runID,
	})
	if err != nil {
		return nil, "", err
	}
	return slog.New(TeeHandler(stderr, file)), logPath, nil
}

// RunLogPattern matches the files written by NewFromConfig.
const RunLogPattern = "recfix-*.log"

// RunLogName builds the per-run log file name from the UTC start time and the
// first eight characters of the run id.
func RunLogName(started time.Time, runID string) string {
	token := textutil.SanitizeToken(runID)
	if len(token) > 8 {
		token = token[:8]
	}
	return fmt.Sprintf("recfix-%s-%s.log", started.UTC().Format("20060102T150405"), token)
}

func parseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// openOutputs resolves output names to one writer. stdout and stderr name the
// process streams; anything else is a file opened for append.
func openOutputs(names []string) (io.Writer, error) {
	var writers []io.Writer
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		w, err := openOutput(name)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func openOutput(name string) (io.Writer, error) {
	switch name {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory for %s: %w", name, err)
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", name, err)
	}
	return f, nil
}
