// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package watch

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options configures a Watcher.
type Options struct {
	// DebounceDuration collapses bursts of events into one tick.
	DebounceDuration time.Duration
}

// Watcher delivers a tick whenever the working directory changes.
type Watcher struct {
	fswatch  *fsnotify.Watcher
	root     string
	ignore   string
	debounce time.Duration
	ticks    chan struct{}
}

// NewWatcher watches the working directory rooted at root, ignoring the
// gitDir subtree.
func NewWatcher(root, gitDir string, options Options) (*Watcher, error) {
	if options.DebounceDuration == 0 {
		options.DebounceDuration = 500 * time.Millisecond
	}

	fswatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		fswatch:  fswatch,
		root:     root,
		ignore:   gitDir,
		debounce: options.DebounceDuration,
		ticks:    make(chan struct{}, 1),
	}

	if err := w.addRecursive(root); err != nil {
		fswatch.Close()
		return nil, err
	}
	return w, nil
}

// Ticks returns the channel that receives one value per change burst.
func (w *Watcher) Ticks() <-chan struct{} { return w.ticks }

// Run processes filesystem events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fswatch.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}
			// New directories need watching too.
			if event.Op&fsnotify.Create != 0 {
				_ = w.addRecursive(event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case w.ticks <- struct{}{}:
			default:
			}

		case err, ok := <-w.fswatch.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				return fmt.Errorf("watch error: %w", err)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fswatch.Close()
}

func (w *Watcher) ignored(name string) bool {
	return name == w.ignore || strings.HasPrefix(name, w.ignore+string(filepath.Separator))
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		_ = w.fswatch.Add(path)
		return nil
	})
}
