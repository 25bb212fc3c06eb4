// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kortschak/framesync/config"
)

// FileDebounce is the default duration we wait for the contents to have
// stabilised to work around some editors writing an empty file and then the
// buffer.
const FileDebounce = 10 * time.Millisecond

// Change is a configuration change identified by a Watcher.
type Change struct {
	Event  []fsnotify.Event
	Config *config.Config
	Sum    config.Sum
	Err    error
}

// Op returns an aggregated fsnotify.Op for all elements of the receivers'
// Event field.
func (c Change) Op() fsnotify.Op {
	var op fsnotify.Op
	for _, e := range c.Event {
		op |= e.Op
	}
	return op
}

// Watcher sends semantically meaningful changes to a single configuration
// file. Writes that do not change the sum of the loaded configuration are
// not reported.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	changes  chan<- Change
	last     *config.Sum
	log      *slog.Logger
}

// NewWatcher returns a Watcher for the configuration file at path. Change
// events are sent on changes. The file's directory is watched so that
// editors replacing the file by rename are seen. The debounce parameter
// specifies how long to wait after an fsnotify.Event before reading the
// file. If it is less than zero, FileDebounce is used.
func NewWatcher(path string, changes chan<- Change, debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = watcher.Add(filepath.Dir(path))
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if debounce < 0 {
		debounce = FileDebounce
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		watcher:  watcher,
		changes:  changes,
		log:      log.With(slog.String("component", "config_watcher")),
	}, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Watch sends the initial state of the configuration file and then
// watches for changes until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.watcher.Close()
	w.load(ctx, fsnotify.Event{Name: w.path, Op: fsnotify.Create})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			switch {
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
				w.log.LogAttrs(ctx, slog.LevelDebug, "write", slog.String("name", ev.Name), slog.String("op", ev.Op.String()))
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(w.debounce):
				}
				w.load(ctx, ev)
			case ev.Has(fsnotify.Rename), ev.Has(fsnotify.Remove):
				// Forget the current sum so that the replacement
				// file is always reported.
				w.log.LogAttrs(ctx, slog.LevelDebug, "remove", slog.String("name", ev.Name), slog.String("op", ev.Op.String()))
				w.last = nil
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if !w.send(ctx, Change{Err: err}) {
				return ctx.Err()
			}
		}
	}
}

func (w *Watcher) load(ctx context.Context, ev fsnotify.Event) {
	cfg, sum, err := Load(w.path)
	if err == nil && w.last.Equal(&sum) {
		w.log.LogAttrs(ctx, slog.LevelDebug, "no change", slog.Any("sum", &sum))
		return
	}
	if err == nil {
		w.log.LogAttrs(ctx, slog.LevelDebug, "set sum", slog.Any("sum", &sum), slog.Any("previous", w.last))
		w.last = &sum
	} else {
		w.log.LogAttrs(ctx, slog.LevelError, "load config", slog.String("path", w.path), slog.Any("error", err))
	}
	w.send(ctx, Change{Event: []fsnotify.Event{ev}, Config: cfg, Sum: sum, Err: err})
}

func (w *Watcher) send(ctx context.Context, c Change) bool {
	select {
	case <-ctx.Done():
		return false
	case w.changes <- c:
		w.log.LogAttrs(ctx, slog.LevelDebug, "sent change", slog.Any("change", changeValue{c}))
		return true
	}
}
