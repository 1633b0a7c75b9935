package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/jol333/TaskTimer/internal/core/model"
	"github.com/jol333/TaskTimer/internal/util"
)

// Watcher reports changes to a single file. It watches the parent directory
// so that editors which replace the file by rename are still noticed.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan model.FileEvent
	done    chan struct{}
}

// NewWatcher starts watching path.
func NewWatcher(path string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: watcher,
		path:    filepath.Clean(abs),
		events:  make(chan model.FileEvent, 16),
		done:    make(chan struct{}),
	}
	go w.processEvents()
	return w, nil
}

func (w *Watcher) processEvents() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only the watched file, and only changes that alter its content
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			fe := model.FileEvent{Path: event.Name, Operation: event.Op.String()}
			select {
			case w.events <- fe:
			default:
				// A reload is already queued; it will read the latest content.
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("Config watch error: " + err.Error())
		}
	}
}

// Events delivers one event per observed change to the file.
func (w *Watcher) Events() <-chan model.FileEvent {
	return w.events
}

func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
