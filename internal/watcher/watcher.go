// Package watcher reruns work when a single source file changes on disk.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a change fires the callback.
const DefaultDebounce = 500 * time.Millisecond

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("watcher already started")

// FileWatcher watches one file. Its parent directory is watched so that editors
// that replace the file through a rename are still seen.
type FileWatcher struct {
	watcher      *fsnotify.Watcher
	path         string        // Cleaned absolute path of the watched file
	debounceTime time.Duration // Quiet period before firing callback
	logger       *zap.Logger
	callback     func()
	cancel       context.CancelFunc
	pending      int // events since the last callback; only touched by the watch goroutine
	timer        *time.Timer
	timerMu      sync.Mutex
	startOnce    sync.Once
	stopOnce     sync.Once
	doneCh       chan struct{} // Signals watch goroutine has finished
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(fw *FileWatcher) {
		if d > 0 {
			fw.debounceTime = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(fw *FileWatcher) {
		if l != nil {
			fw.logger = l
		}
	}
}

// New creates a watcher for path. The parent directory must exist.
func New(path string, opts ...Option) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:      w,
		path:         filepath.Clean(abs),
		debounceTime: DefaultDebounce,
		logger:       zap.NewNop(),
		doneCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(fw)
	}

	if err := w.Add(filepath.Dir(fw.path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(fw.path), err)
	}
	return fw, nil
}

// Path returns the watched file.
func (fw *FileWatcher) Path() string {
	return fw.path
}

// Start begins watching. callback runs on the watcher goroutine after each debounced
// burst of changes; changes that arrive while it runs are coalesced into the next call.
func (fw *FileWatcher) Start(ctx context.Context, callback func()) error {
	if callback == nil {
		return errors.New("callback is required")
	}

	err := ErrAlreadyStarted
	fw.startOnce.Do(func() {
		var watchCtx context.Context
		watchCtx, fw.cancel = context.WithCancel(ctx)
		fw.callback = callback
		go fw.watch(watchCtx)
		err = nil
	})
	return err
}

// Stop stops the watcher and waits for the watch goroutine to exit. It is idempotent.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		started := true
		fw.startOnce.Do(func() { started = false })

		if started {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

// watch is the main event loop.
func (fw *FileWatcher) watch(ctx context.Context) {
	defer close(fw.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.shouldProcessEvent(event) {
				continue
			}
			fw.pending++
			fw.logger.Debug("source changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			fw.resetDebounceTimer(fireCh)

		case <-fireCh:
			if fw.pending == 0 {
				continue
			}
			fw.pending = 0
			fw.callback()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// resetDebounceTimer restarts the quiet period.
func (fw *FileWatcher) resetDebounceTimer(fireCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (fw *FileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
}

// shouldProcessEvent keeps writes and (re)creations of the watched file only.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == fw.path
}
