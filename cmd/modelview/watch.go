package main

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/meshport/internal/engine/texture"
	"github.com/Faultbox/meshport/internal/logger"
)

// watcher signals when the model file, or an image in a watched directory,
// changes. Bursts of events within delay collapse into one signal.
type watcher struct {
	fs     *fsnotify.Watcher
	target string
	dirs   map[string]struct{}
	delay  time.Duration
	reload chan struct{}
	done   chan struct{}
}

// watchModel watches the directory holding path. Editors often replace files
// by rename, so the file itself is not watched.
func watchModel(path string, delay time.Duration) (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &watcher{
		fs:     fs,
		target: filepath.Clean(path),
		dirs:   make(map[string]struct{}),
		delay:  delay,
		reload: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	if err := w.Watch(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, err
	}
	go w.run()
	return w, nil
}

// Watch adds dir, typically a texture directory, to the watch list.
// Directories already watched are skipped. Not safe for concurrent use.
func (w *watcher) Watch(dir string) error {
	if w == nil {
		return nil
	}
	dir = filepath.Clean(dir)
	if _, ok := w.dirs[dir]; ok {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = struct{}{}
	return nil
}

// Reloads delivers one value per settled burst of changes. A nil watcher
// returns a nil channel, which never delivers.
func (w *watcher) Reloads() <-chan struct{} {
	if w == nil {
		return nil
	}
	return w.reload
}

// Close stops watching.
func (w *watcher) Close() error {
	if w == nil {
		return nil
	}
	close(w.done)
	return w.fs.Close()
}

// triggers reports whether e should reload the model.
func (w *watcher) triggers(e fsnotify.Event) bool {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) && !e.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(e.Name)
	return name == w.target || texture.IsImageFile(name)
}

func (w *watcher) run() {
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.triggers(e) {
				continue
			}
			logger.Debug("model source changed", zap.String("file", e.Name), zap.String("op", e.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			select {
			case w.reload <- struct{}{}:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", zap.Error(err))

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}
