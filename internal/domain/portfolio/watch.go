package portfolio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a data directory whenever one of its dataset files changes
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	onReload func(*Dataset)
	logger   *zap.Logger
	debounce time.Duration
	closed   chan struct{}
}

// NewWatcher starts watching dir. onReload receives every successfully parsed
// dataset; parse failures are logged and the previous dataset stays in use.
func NewWatcher(dir string, logger *zap.Logger, onReload func(*Dataset)) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:      dir,
		watcher:  fw,
		onReload: onReload,
		logger:   logger.Named("datawatch"),
		debounce: 100 * time.Millisecond,
		closed:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var pending <-chan time.Time
	for {
		select {
		case <-w.closed:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !IsDatasetFile(filepath.Base(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				// editors write in bursts; collapse them
				pending = time.After(w.debounce)
			}
		case <-pending:
			pending = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	ds, err := Load(os.DirFS(w.dir))
	if err != nil {
		w.logger.Warn("dataset reload failed", zap.String("dir", w.dir), zap.Error(err))
		return
	}
	w.logger.Info("dataset reloaded",
		zap.String("dir", w.dir),
		zap.Int("projects", len(ds.Projects)),
		zap.Int("companies", len(ds.Companies)),
	)
	if w.onReload != nil {
		w.onReload(ds)
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	select {
	case <-w.closed:
		return nil
	default:
		close(w.closed)
	}
	return w.watcher.Close()
}
