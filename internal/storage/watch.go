package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports keys changed by edits made outside this process. Writes made
// through the store itself are already in the snapshot and produce nothing.
// The channel is closed when ctx is done.
func (store *SettingsStore) Watch(ctx context.Context) (<-chan []string, error) {
	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create settings watcher: %w", err)
	}
	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	changes := make(chan []string, 4)
	go func() {
		defer close(changes)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != store.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				changed, err := store.Reload()
				if err != nil {
					log.Printf("reload settings: %v", err)
					continue
				}
				if len(changed) == 0 {
					continue
				}
				select {
				case changes <- changed:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("settings watcher: %v", err)
			}
		}
	}()
	return changes, nil
}
