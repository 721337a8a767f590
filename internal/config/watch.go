package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"checkctl/internal/system"
)

// Watch reloads the config whenever the file changes on disk and hands the
// fresh value to onChange. The parent directory is watched, not the file,
// so editors that rename-over the file keep working. Returns a stop func.
func Watch(onChange func(Config)) (func(), error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(p)); err != nil {
		_ = w.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name != p {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load()
				if err != nil {
					system.Logger.Warn("config reload failed", "err", err)
					continue
				}
				onChange(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				system.Logger.Warn("config watcher error", "err", err)
			}
		}
	}()
	return func() { _ = w.Close() }, nil
}
