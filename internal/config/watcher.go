package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"tabflow/internal/logging"
)

const reloadDebounce = 500 * time.Millisecond

// ReloadCallback receives the freshly loaded settings after the file on
// disk changes.
type ReloadCallback func(Settings)

// Watcher reloads the settings file when it changes on disk, debounced so
// editors that write in several steps trigger one reload.
type Watcher struct {
	path      string
	fsWatcher *fsnotify.Watcher
	callback  ReloadCallback
	log       logging.Logger
	done      chan struct{}
}

func NewWatcher(path string, callback ReloadCallback, log logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.Nop()
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory rather than the file so replace-style saves keep
	// working after the inode changes.
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}
	w := &Watcher{
		path:      path,
		fsWatcher: fsWatcher,
		callback:  callback,
		log:       log,
		done:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.matches(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			w.reload()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("settings watcher error", logging.F("error", err))
		}
	}
}

func (w *Watcher) matches(name string) bool {
	return strings.EqualFold(filepath.Clean(name), filepath.Clean(w.path))
}

func (w *Watcher) reload() {
	settings, err := LoadSettings(w.path)
	if err != nil {
		w.log.Warn("settings reload failed", logging.F("path", w.path), logging.F("error", err))
		return
	}
	w.log.Info("settings reloaded", logging.F("path", w.path))
	if w.callback != nil {
		w.callback(settings)
	}
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fsWatcher.Close()
}
