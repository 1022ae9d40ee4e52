package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/mindmap/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeWrite ChangeType = iota
	ChangeTypeRemove
)

func (t ChangeType) String() string {
	if t == ChangeTypeRemove {
		return "remove"
	}
	return "write"
}

// ChangeEvent represents a batch of file system changes to the watched file
type ChangeEvent struct {
	Type      ChangeType
	Path      string
	Count     int // raw events folded into this one
	Timestamp time.Time
}

// FileWatcher watches a single dataset file.
//
// The parent directory is watched rather than the file itself so that editors
// which save by renaming a temporary file over the original keep being seen.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan ChangeEvent
	once    sync.Once
}

// NewFileWatcher creates a watcher for path
func NewFileWatcher(path string) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		path:    abs,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Path returns the absolute path being watched
func (fw *FileWatcher) Path() string {
	return fw.path
}

// Start begins watching. Events stop and the channel closes when ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(fw.path)
	if err := fw.watcher.Add(dir); err != nil {
		fw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logging.Info("watching dataset", "path", fw.path)

	go fw.processEvents(ctx)
	return nil
}

// processEvents forwards events for the watched file
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			ce, relevant := fw.classify(event)
			if !relevant {
				continue
			}
			logging.Trace("dataset file event", "op", event.Op.String(), "path", event.Name)

			select {
			case fw.events <- ce:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) classify(event fsnotify.Event) (ChangeEvent, bool) {
	if filepath.Clean(event.Name) != fw.path {
		return ChangeEvent{}, false
	}

	ce := ChangeEvent{Path: fw.path, Count: 1, Timestamp: time.Now()}
	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		ce.Type = ChangeTypeWrite
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		ce.Type = ChangeTypeRemove
	default:
		return ChangeEvent{}, false
	}
	return ce, true
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	var err error
	fw.once.Do(func() {
		err = fw.watcher.Close()
	})
	return err
}
