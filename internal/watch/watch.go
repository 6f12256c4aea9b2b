// Package watch re-imports chat exports as they appear or change on disk.
package watch

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/index"
	"github.com/Zuo-Peng/chatlens/internal/scan"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before it is imported.
// Exports are often written in several chunks.
const DefaultDebounce = 500 * time.Millisecond

// Handler receives settled changes. Removed is also called with a watched
// directory that went away; everything below it is gone too.
type Handler interface {
	Changed(path string) error
	Removed(path string) error
}

// IndexHandler keeps the index in step with the watched exports.
type IndexHandler struct {
	DB *index.DB
}

func (h IndexHandler) Changed(path string) error {
	fi, err := scan.Stat(path)
	if err != nil {
		return err
	}
	updated, err := index.ImportFile(h.DB, fi)
	if err != nil {
		return err
	}
	if updated {
		log.Printf("imported %s as %s", path, fi.Key)
	}
	return nil
}

func (h IndexHandler) Removed(path string) error {
	ok, err := h.DB.DeleteChatByPath(path)
	if err != nil {
		return err
	}
	if ok {
		log.Printf("removed %s", path)
		return nil
	}
	n, err := h.DB.DeleteChatsUnder(path)
	if n > 0 {
		log.Printf("removed %d chats under %s", n, path)
	}
	return err
}

// Watcher monitors an export root, including directories created later.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	handler  Handler
	dirs     map[string]bool
	Debounce time.Duration
}

// New creates a Watcher for every directory below root.
func New(root string, h Handler) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fsw: fsw, root: abs, handler: h, dirs: make(map[string]bool), Debounce: DefaultDebounce}
	if err := w.addTree(abs); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and its subdirectories; fsnotify is not recursive.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			log.Printf("warning: cannot watch %s: %v", path, err)
			return nil
		}
		w.dirs[path] = true
		return nil
	})
}

// Run dispatches settled events to the handler. It blocks until the context
// is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	pending := make(map[string]time.Time)
	tick := time.NewTicker(max(w.Debounce/2, 10*time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.event(ev, pending)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)
		case now := <-tick.C:
			for path, at := range pending {
				if now.Sub(at) < w.Debounce {
					continue
				}
				delete(pending, path)
				if err := w.handler.Changed(path); err != nil {
					log.Printf("import %s: %v", path, err)
				}
			}
		}
	}
}

func (w *Watcher) event(ev fsnotify.Event, pending map[string]time.Time) {
	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		switch {
		case w.dirs[ev.Name]:
			w.forgetTree(ev.Name, pending)
		case scan.Match(w.root, ev.Name):
			delete(pending, ev.Name)
		default:
			return
		}
		if err := w.handler.Removed(ev.Name); err != nil {
			log.Printf("remove %s: %v", ev.Name, err)
		}
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if ev.Op&fsnotify.Create != 0 {
				if err := w.addTree(ev.Name); err != nil {
					log.Printf("watch %s: %v", ev.Name, err)
					return
				}
				w.queueTree(ev.Name, pending)
			}
			return
		}
		if scan.Match(w.root, ev.Name) {
			pending[ev.Name] = time.Now()
		}
	}
}

// queueTree queues exports that landed in a new directory before it was
// watched.
func (w *Watcher) queueTree(dir string, pending map[string]time.Time) {
	files, err := scan.ScanRoot(dir)
	if err != nil {
		log.Printf("scan %s: %v", dir, err)
		return
	}
	for _, f := range files {
		pending[f.Path] = time.Now()
	}
}

// forgetTree drops dir and everything below it from the watch state.
func (w *Watcher) forgetTree(dir string, pending map[string]time.Time) {
	prefix := dir + string(filepath.Separator)
	for d := range w.dirs {
		if d == dir || strings.HasPrefix(d, prefix) {
			delete(w.dirs, d)
		}
	}
	for path := range pending {
		if strings.HasPrefix(path, prefix) {
			delete(pending, path)
		}
	}
}
