// Package filesystem finds and watches ingestible files in a directory.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/logger"
)

// DefaultDebounce is how long a path must stay quiet before its change
// is emitted. Editors often write a file several times when saving.
const DefaultDebounce = 500 * time.Millisecond

// Connector watches one directory tree.
type Connector struct {
	rootPath string
	debounce time.Duration
}

// Option configures a Connector.
type Option func(*Connector)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(c *Connector) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// New creates a connector for rootPath.
func New(rootPath string, opts ...Option) *Connector {
	c := &Connector{rootPath: rootPath, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the watched directory.
func (c *Connector) Root() string {
	return c.rootPath
}

// Scan lists the ingestible files under the root in lexical order.
// Hidden files and directories are skipped.
func (c *Connector) Scan() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != c.rootPath && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && Ingestible(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", c.rootPath, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Watch emits the path of every ingestible file created or written under
// the root, once per burst of writes. The channel closes when ctx is
// cancelled or the watcher fails.
func (c *Connector) Watch(ctx context.Context) (<-chan string, error) {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watching %s: not a directory", c.rootPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := c.addTree(watcher, c.rootPath); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan string)
	go c.run(ctx, watcher, out)
	return out, nil
}

func (c *Connector) run(ctx context.Context, watcher *fsnotify.Watcher, out chan<- string) {
	defer close(out)
	defer watcher.Close()

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	ready := make(chan string)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Reset(c.debounce)
			return
		}
		timers[path] = time.AfterFunc(c.debounce, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			select {
			case ready <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case path := <-ready:
			select {
			case out <- path:
			case <-ctx.Done():
				return
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if path := c.handleFsEvent(watcher, event); path != "" {
				schedule(path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", "root", c.rootPath, "err", err)
		}
	}
}

// handleFsEvent returns the file to ingest for event, or "" to ignore
// it. New directories are added to the watch.
func (c *Connector) handleFsEvent(watcher *fsnotify.Watcher, event fsnotify.Event) string {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return ""
	}
	rel, err := filepath.Rel(c.rootPath, event.Name)
	if err != nil || hasHiddenPart(rel) {
		return ""
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return ""
	}
	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && watcher != nil {
			if err := c.addTree(watcher, event.Name); err != nil {
				logger.Warn("directory not watched", "path", event.Name, "err", err)
			}
		}
		return ""
	}
	if !Ingestible(event.Name) {
		return ""
	}
	return event.Name
}

func (c *Connector) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.rootPath && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// Ingestible reports whether the file's extension is accepted by the
// text pipeline. Images are excluded; they go through OCR.
func Ingestible(path string) bool {
	ft, ok := domain.FileTypeFor(path)
	return ok && ft != domain.FileTypeImage && !isHidden(filepath.Base(path))
}

// isHidden reports whether a single path element is hidden.
// "." and ".." are not.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func hasHiddenPart(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if isHidden(part) {
			return true
		}
	}
	return false
}
