package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/tasmanium/reportview"
)

// Compile-time interface verification.
var (
	_ reportview.Location        = (*LocationFile)(nil)
	_ reportview.LocationWatcher = (*LocationFile)(nil)
)

// LocationFile persists the deep-link fragment in a file so it survives
// restarts and can be changed by other processes.
type LocationFile struct {
	path string
	mu   sync.Mutex
}

// NewLocationFile returns a location stored at path.
func NewLocationFile(path string) *LocationFile {
	return &LocationFile{path: path}
}

// Path returns the file the fragment is stored in.
func (l *LocationFile) Path() string {
	return l.path
}

// Fragment returns the stored fragment, or an empty string if the file does
// not exist or cannot be read.
func (l *LocationFile) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

func (l *LocationFile) read() string {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return ""
	}
	return reportview.ParseFragment(string(data))
}

// SetFragment writes the fragment atomically.
func (l *LocationFile) SetFragment(scenarioID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create location dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".*")
	if err != nil {
		return fmt.Errorf("create location file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(reportview.FormatFragment(scenarioID) + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("write location file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write location file: %w", err)
	}
	return os.Rename(tmp.Name(), l.path)
}

// Watch calls onChange with the new fragment whenever another writer changes
// the file. It blocks until ctx is done, returning nil, or until the watcher
// fails.
func (l *LocationFile) Watch(ctx context.Context, onChange func(fragment string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create location dir: %w", err)
	}
	// Watch the directory so atomic renames are seen.
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Base(l.path)
	last := l.Fragment()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			fragment := l.Fragment()
			if fragment == last {
				continue
			}
			last = fragment
			onChange(fragment)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				continue
			}
			return fmt.Errorf("watch location: %w", err)
		}
	}
}

