// Package watch recomputes part documents when meshes in a directory
// change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/chazu/urdfkit/pkg/part"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a mesh must stay quiet before it is
// recomputed. Exporters typically write an STL in several chunks.
const DefaultDebounce = 250 * time.Millisecond

// Watcher recomputes <stem>.xml whenever <stem>.stl in Dir is written.
type Watcher struct {
	Dir      string
	Engine   *massprop.Engine
	Options  part.FileOptions
	Debounce time.Duration
	Logger   *zap.Logger
	// Updated, when set, is called after every recompute attempt.
	Updated func(stlPath string, err error)

	fw      *fsnotify.Watcher
	mu      sync.Mutex
	pending map[string]*time.Timer
	ready   chan string
	done    chan struct{}
	once    sync.Once
}

// New starts watching dir. Call Run to process events and Close when done.
func New(dir string, engine *massprop.Engine, opts part.FileOptions, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch: %s: %w", dir, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		Dir:      dir,
		Engine:   engine,
		Options:  opts,
		Debounce: DefaultDebounce,
		Logger:   log.Named("watch"),
		fw:       fw,
		pending:  make(map[string]*time.Timer),
		ready:    make(chan string, 16),
		done:     make(chan struct{}),
	}, nil
}

// Close stops the underlying watcher and any pending timers.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.done) })
	w.mu.Lock()
	for p, t := range w.pending {
		t.Stop()
		delete(w.pending, p)
	}
	w.mu.Unlock()
	return w.fw.Close()
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	w.Logger.Info("watching", zap.String("dir", w.Dir))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if isMeshWrite(ev) {
				w.schedule(ev.Name)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watcher error", zap.Error(err))
		case path := <-w.ready:
			w.recompute(path)
		}
	}
}

func isMeshWrite(ev fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(ev.Name), ".stl") {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// schedule (re)arms the debounce timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Reset(w.Debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.deliver(path)
	})
}

// deliver hands path to Run, or drops it once the watcher is closed.
func (w *Watcher) deliver(path string) {
	select {
	case w.ready <- path:
	case <-w.done:
	}
}

func (w *Watcher) recompute(path string) {
	docPath, res, err := part.File(w.Engine, path, w.Options)
	if err != nil {
		w.Logger.Error("recompute failed", zap.String("mesh", path), zap.Error(err))
	} else {
		w.Logger.Info("part updated",
			zap.String("doc", docPath),
			zap.Float64("mass", res.Properties.Mass),
			zap.Float64("volume", res.Properties.Volume))
		for _, d := range res.Properties.Diagnostics.Warnings() {
			w.Logger.Warn("mass properties", zap.String("mesh", path), zap.Stringer("diagnostic", d))
		}
	}
	if w.Updated != nil {
		w.Updated(path, err)
	}
}
