package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 200 * time.Millisecond

// Watch reloads the file at path whenever it changes and hands the result
// to onChange. It watches the parent directory so atomic rename saves are
// seen. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "start config watcher")
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "resolve config path").WithContext("path", path)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "watch config directory").WithContext("path", path)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			onChange(nil, lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "config watcher"))
		case <-fire:
			fire = nil
			cfg, err := LoadFromPath(abs)
			onChange(cfg, err)
		}
	}
}
