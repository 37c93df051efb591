// Package watcher re-runs work whenever a file changes on disk.
package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 300 * time.Millisecond

// Watcher calls onChange after each settled burst of writes to a file.
// A change that arrives while onChange is still running cancels the
// context of that call before the next one starts.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *log.Logger
	onChange func(ctx context.Context)
}

func New(path string, onChange func(ctx context.Context)) *Watcher {
	return &Watcher{
		path:     path,
		debounce: DefaultDebounce,
		logger:   log.New(os.Stderr, "", log.LstdFlags),
		onChange: onChange,
	}
}

func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

func (w *Watcher) WithLogger(l *log.Logger) *Watcher {
	w.logger = l
	return w
}

// Watch blocks until ctx is cancelled or the underlying watcher fails.
// The directory is watched rather than the file so that editors which
// replace the file on save are still seen.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dir, name := filepath.Dir(w.path), filepath.Base(w.path)
	if err := fw.Add(dir); err != nil {
		return err
	}
	w.logger.Printf("watching %s for changes", w.path)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		closed bool
		cancel context.CancelFunc = func() {}
		timer  *time.Timer
	)
	fire := func() {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		cancel()
		runCtx, c := context.WithCancel(ctx)
		cancel = c

		w.logger.Printf("file changed: %s", w.path)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.onChange(runCtx)
		}()
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		mu.Lock()
		closed = true
		cancel()
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, fire)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("watcher error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
