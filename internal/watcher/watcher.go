// Package watcher incrementally classifies package directories as they
// appear under the corpus root, so classification can run alongside a batch
// unpack instead of waiting for it to finish.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sdist-tools/backendscan/internal/classify"
	"github.com/sdist-tools/backendscan/internal/store"
)

// DefaultSettle is how long a package directory must stay quiet before it
// is classified. Unpacking a source distribution produces a burst of events
// under the new directory; classifying mid-unpack would read a partial
// tree.
const DefaultSettle = 2 * time.Second

// Watcher watches a corpus directory and classifies each new package
// directory once its contents settle.
type Watcher struct {
	classifier *classify.Classifier
	store      *store.Store
	dir        string

	// Settle overrides DefaultSettle (tests use a short window).
	Settle time.Duration

	fsw     *fsnotify.Watcher
	stopCh  chan struct{}
	wg      sync.WaitGroup
	errCh   chan error
	recCh   chan *classify.Record
	mu      sync.Mutex
	pending map[string]time.Time
}

// New creates a Watcher over the given corpus directory. The store must be
// open for the watcher's lifetime.
func New(c *classify.Classifier, st *store.Store, dir string) (*Watcher, error) {
	if c == nil || st == nil {
		return nil, fmt.Errorf("classifier and store are required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat corpus directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	return &Watcher{
		classifier: c,
		store:      st,
		dir:        dir,
		Settle:     DefaultSettle,
		stopCh:     make(chan struct{}),
		errCh:      make(chan error, 1),
		recCh:      make(chan *classify.Record, 64),
		pending:    make(map[string]time.Time),
	}, nil
}

// Records yields each record stored by the watcher, for progress display.
func (w *Watcher) Records() <-chan *classify.Record {
	return w.recCh
}

// Errors yields the first fatal error. Classification-integrity failures
// abort the watcher the same way they abort a batch pass.
func (w *Watcher) Errors() <-chan error {
	return w.errCh
}

// Start begins watching. It returns once the filesystem watch is
// established; classification happens on background goroutines until Stop.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.fsw = fsw

	w.wg.Add(2)
	go w.collectEvents()
	go w.sweepPending()

	return nil
}

// Stop halts the watcher. Packages still inside their settle window are
// left for the next batch pass to pick up.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	err := w.fsw.Close()
	w.wg.Wait()
	close(w.recCh)
	return err
}

// collectEvents turns raw filesystem events into pending package names.
func (w *Watcher) collectEvents() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.touch(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watcher: filesystem event error: %v\n", err)
		case <-w.stopCh:
			return
		}
	}
}

// touch records activity for the package directory owning path. Events for
// files nested deeper than one level still belong to the top-level package
// directory.
func (w *Watcher) touch(path string) {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil || rel == "." || rel == ".." {
		return
	}
	name := firstComponent(rel)
	if name == "" {
		return
	}

	info, err := os.Stat(filepath.Join(w.dir, name))
	if err != nil || !info.IsDir() {
		return
	}

	w.mu.Lock()
	w.pending[name] = time.Now()
	w.mu.Unlock()
}

// sweepPending classifies packages whose settle window has elapsed.
func (w *Watcher) sweepPending() {
	defer w.wg.Done()

	interval := w.Settle / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !w.sweepOnce() {
				return
			}
		case <-w.stopCh:
			return
		}
	}
}

// sweepOnce classifies every settled pending package. Returns false when a
// fatal error stops the watcher.
func (w *Watcher) sweepOnce() bool {
	now := time.Now()

	w.mu.Lock()
	var ready []string
	for name, last := range w.pending {
		if now.Sub(last) >= w.Settle {
			ready = append(ready, name)
			delete(w.pending, name)
		}
	}
	w.mu.Unlock()

	for _, name := range ready {
		exists, err := w.store.HasRecord(name)
		if err != nil {
			w.fail(err)
			return false
		}
		if exists {
			continue
		}

		rec, err := w.classifier.Package(name, filepath.Join(w.dir, name))
		if err != nil {
			w.fail(err)
			return false
		}
		if err := w.store.InsertRecord(rec); err != nil {
			w.fail(err)
			return false
		}

		select {
		case w.recCh <- rec:
		default:
			// Nobody is draining records; classification still counts.
		}
	}

	return true
}

func (w *Watcher) fail(err error) {
	select {
	case w.errCh <- err:
	default:
	}
}

// firstComponent returns the leading path element of a relative path.
func firstComponent(rel string) string {
	for i := 0; i < len(rel); i++ {
		if os.IsPathSeparator(rel[i]) {
			return rel[:i]
		}
	}
	return rel
}
