// Package picker lets the user choose a file to load.
//
// Browser holds the directory listing and navigation state. It has no UI of
// its own; the viewer's browse scene and LinePicker both drive one.
package picker

import (
	"cmp"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
)

var (
	ErrCancelled = errors.New("picker: cancelled")
	ErrNotFound  = errors.New("picker: no such entry")
	ErrNotDir    = errors.New("picker: not a directory")
	ErrFiltered  = errors.New("picker: file does not match the active filter")
)

// Picker asks the user for a file.
type Picker interface {
	// Pick returns the absolute path of the chosen file, or ErrCancelled.
	Pick(ctx context.Context) (string, error)
}

// Entry is one listed directory entry.
type Entry struct {
	Name    string
	Path    string
	Dir     bool
	Size    int64
	ModTime time.Time
}

// Options configure a Browser.
type Options struct {
	// StartDir may begin with "~". Empty means the working directory.
	StartDir   string
	Filters    []Filter
	ShowHidden bool
}

// Browser lists one directory at a time.
type Browser struct {
	mu         sync.Mutex
	dir        string
	filters    []Filter
	active     int
	showHidden bool
	entries    []Entry
	cursor     int

	watcher *fsnotify.Watcher
	dirty   atomic.Bool
}

// NewBrowser opens a browser on opts.StartDir.
func NewBrowser(opts Options) (*Browser, error) {
	dir, err := resolveDir(opts.StartDir)
	if err != nil {
		return nil, err
	}
	filters := opts.Filters
	if len(filters) == 0 {
		filters = []Filter{AllFiles()}
	}
	b := &Browser{
		dir:        dir,
		filters:    filters,
		showHidden: opts.ShowHidden,
	}
	if err := b.Refresh(); err != nil {
		return nil, err
	}
	return b, nil
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", errors.Wrapf(err, "expand %q", dir)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %q", dir)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Wrapf(err, "open %q", dir)
	}
	if !info.IsDir() {
		return "", errors.Wrapf(ErrNotDir, "%q", dir)
	}
	return abs, nil
}

// Dir returns the absolute path of the listed directory.
func (b *Browser) Dir() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dir
}

// Entries returns the current listing: directories first, then files,
// each group sorted case-insensitively.
func (b *Browser) Entries() []Entry {
	return slices.Clone(b.entries)
}

// Filters returns the configured filters.
func (b *Browser) Filters() []Filter { return b.filters }

// Filter returns the active filter.
func (b *Browser) Filter() Filter { return b.filters[b.active] }

// SetFilter activates filter i and relists.
func (b *Browser) SetFilter(i int) error {
	if i < 0 || i >= len(b.filters) {
		return errors.Newf("picker: filter %d out of range", i)
	}
	b.active = i
	return b.Refresh()
}

// NextFilter cycles to the next filter.
func (b *Browser) NextFilter() error {
	return b.SetFilter((b.active + 1) % len(b.filters))
}

// HiddenShown reports whether dot files are listed.
func (b *Browser) HiddenShown() bool { return b.showHidden }

// ShowHidden toggles listing of dot files.
func (b *Browser) ShowHidden(show bool) error {
	b.showHidden = show
	return b.Refresh()
}

// Refresh rereads the directory and clears the dirty flag.
func (b *Browser) Refresh() error {
	dir := b.Dir()
	des, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "read %q", dir)
	}

	filter := b.Filter()
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		name := de.Name()
		if !b.showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		isDir := info.IsDir()
		if !isDir && info.Mode()&os.ModeSymlink != 0 {
			if target, err := os.Stat(path); err == nil {
				isDir = target.IsDir()
			}
		}
		if !isDir && !filter.Match(path) {
			continue
		}
		entries = append(entries, Entry{
			Name:    name,
			Path:    path,
			Dir:     isDir,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	slices.SortFunc(entries, compareEntries)

	b.entries = entries
	b.cursor = min(b.cursor, max(len(entries)-1, 0))
	b.dirty.Store(false)
	return nil
}

func compareEntries(a, b Entry) int {
	if a.Dir != b.Dir {
		if a.Dir {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

func (b *Browser) find(name string) (Entry, bool) {
	for _, e := range b.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Enter descends into the listed directory name.
func (b *Browser) Enter(name string) error {
	e, ok := b.find(name)
	if !ok {
		return errors.Wrapf(ErrNotFound, "%q", name)
	}
	if !e.Dir {
		return errors.Wrapf(ErrNotDir, "%q", name)
	}
	return b.chdir(e.Path)
}

// Up moves to the parent directory. At the filesystem root it is a no-op.
func (b *Browser) Up() error {
	dir := b.Dir()
	parent := filepath.Dir(dir)
	if parent == dir {
		return nil
	}
	return b.chdir(parent)
}

// Go jumps to dir, which may begin with "~".
func (b *Browser) Go(dir string) error {
	abs, err := resolveDir(dir)
	if err != nil {
		return err
	}
	return b.chdir(abs)
}

func (b *Browser) chdir(dir string) error {
	b.mu.Lock()
	prev := b.dir
	b.dir = dir
	w := b.watcher
	b.mu.Unlock()

	if err := b.Refresh(); err != nil {
		b.mu.Lock()
		b.dir = prev
		b.mu.Unlock()
		return err
	}
	b.cursor = 0

	if w != nil {
		_ = w.Remove(prev)
		if err := w.Add(dir); err != nil {
			slog.Warn("picker: cannot watch directory", "dir", dir, "err", err)
		}
	}
	return nil
}

// Select returns the absolute path of the listed file name.
func (b *Browser) Select(name string) (string, error) {
	e, ok := b.find(name)
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "%q", name)
	}
	if e.Dir {
		return "", errors.Newf("picker: %q is a directory", name)
	}
	if !b.Filter().Match(e.Path) {
		return "", errors.Wrapf(ErrFiltered, "%q", name)
	}
	return e.Path, nil
}

// Cursor returns the index of the highlighted entry.
func (b *Browser) Cursor() int { return b.cursor }

// Move shifts the cursor by delta, clamped to the listing.
func (b *Browser) Move(delta int) {
	if len(b.entries) == 0 {
		b.cursor = 0
		return
	}
	b.cursor = min(max(b.cursor+delta, 0), len(b.entries)-1)
}

// Current returns the highlighted entry.
func (b *Browser) Current() (Entry, bool) {
	if b.cursor < 0 || b.cursor >= len(b.entries) {
		return Entry{}, false
	}
	return b.entries[b.cursor], true
}

// Activate enters the highlighted directory or selects the highlighted
// file. It returns the file path, or "" after entering a directory.
func (b *Browser) Activate() (string, error) {
	e, ok := b.Current()
	if !ok {
		return "", ErrNotFound
	}
	if e.Dir {
		return "", b.Enter(e.Name)
	}
	return b.Select(e.Name)
}

// Dirty reports whether the watched directory changed since the last
// Refresh.
func (b *Browser) Dirty() bool { return b.dirty.Load() }

// Watch marks the browser dirty whenever an entry of the listed directory
// is created, removed or renamed. It blocks until ctx is done.
func (b *Browser) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "picker: watcher")
	}
	defer w.Close()

	b.mu.Lock()
	if b.watcher != nil {
		b.mu.Unlock()
		return errors.New("picker: already watching")
	}
	b.watcher = w
	dir := b.dir
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.watcher = nil
		b.mu.Unlock()
	}()

	if err := w.Add(dir); err != nil {
		return errors.Wrapf(err, "picker: watch %q", dir)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				b.dirty.Store(true)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("picker: watch error", "err", err)
		}
	}
}
