package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"recfix/internal/batch"
	"recfix/internal/config"
	"recfix/internal/fileutil"
	"recfix/internal/logging"
)

// ErrAlreadyRunning is returned when another watcher holds the lock.
var ErrAlreadyRunning = errors.New("another recfix watcher is already running")

const minTick = 20 * time.Millisecond

var watchedExtensions = map[string]struct{}{
	".json": {},
	".csv":  {},
}

// Options configures a Watcher.
type Options struct {
	Dir       string
	OutputDir string
	Debounce  time.Duration
	LockPath  string
	// OnReady runs once the directory is being watched.
	OnReady func()
	// OnReport receives the report of every conversion pass.
	OnReport func(batch.Report)
}

// OptionsFromConfig builds Options for dir. An empty outDir falls back to
// watch.output_dir.
func OptionsFromConfig(cfg *config.Config, dir, outDir string) Options {
	if strings.TrimSpace(outDir) == "" {
		outDir = cfg.Watch.OutputDir
	}
	return Options{
		Dir:       dir,
		OutputDir: outDir,
		Debounce:  cfg.WatchDebounce(),
		LockPath:  cfg.LockPath(),
	}
}

// Watcher converts settled files from Dir.
type Watcher struct {
	opts   Options
	runner *batch.Runner
	lock   *flock.Flock
	logger *slog.Logger

	pending map[string]time.Time
}

// New validates opts and builds a Watcher. The runner's converter must be
// configured to write into opts.OutputDir.
func New(opts Options, runner *batch.Runner, logger *slog.Logger) (*Watcher, error) {
	if runner == nil {
		return nil, errors.New("watch requires a batch runner")
	}
	if err := config.ValidateWatchDirs(opts.Dir, opts.OutputDir); err != nil {
		return nil, err
	}
	info, err := os.Stat(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory %s is not a directory", opts.Dir)
	}
	if strings.TrimSpace(opts.LockPath) == "" {
		return nil, errors.New("watch requires a lock path")
	}
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	return &Watcher{
		opts:    opts,
		runner:  runner,
		lock:    flock.New(opts.LockPath),
		logger:  logging.NewComponentLogger(logger, "watch"),
		pending: make(map[string]time.Time),
	}, nil
}

// Run blocks until ctx is cancelled or the event stream fails. It returns
// nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(w.opts.LockPath), 0o755); err != nil {
		return fmt.Errorf("ensure lock directory: %w", err)
	}
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn("failed to release watch lock", logging.Error(err))
		}
	}()

	if err := os.MkdirAll(w.opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.opts.Dir, err)
	}

	w.logger.Info("watching directory",
		logging.String("dir", w.opts.Dir),
		logging.String("output_dir", w.opts.OutputDir),
		logging.Duration("debounce", w.opts.Debounce),
		logging.String(logging.FieldEventType, "watch_started"),
	)
	if w.opts.OnReady != nil {
		w.opts.OnReady()
	}

	tick := w.opts.Debounce / 2
	if tick < minTick {
		tick = minTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped", logging.String(logging.FieldEventType, "watch_stopped"))
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("watch event stream closed")
			}
			w.handleEvent(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watch error stream closed")
			}
			logging.WarnWithContext(w.logger, "watch event error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some file changes may be missed"),
			)
		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !Watched(event.Name) {
		return
	}
	w.pending[event.Name] = time.Now()
}

// flush converts every pending file that has been quiet for the debounce
// period.
func (w *Watcher) flush(ctx context.Context, now time.Time) {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) < w.opts.Debounce {
			continue
		}
		delete(w.pending, path)
		if !fileutil.IsRegularFile(path) {
			continue
		}
		ready = append(ready, path)
	}
	if len(ready) == 0 {
		return
	}
	slices.Sort(ready)

	report, err := w.runner.Run(ctx, uuid.NewString(), batch.ModeConvert, batch.Items(ready...))
	if err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Warn("watch conversion pass failed", logging.Error(err))
	}
	if w.opts.OnReport != nil {
		w.opts.OnReport(report)
	}
}

// Watched reports whether path has an extension the watcher converts.
func Watched(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	_, ok := watchedExtensions[strings.ToLower(filepath.Ext(base))]
	return ok
}
