package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/qrnotes/internal/foundation/errors"
	"git.home.luguber.info/inful/qrnotes/internal/logfields"
)

const watchDebounce = 300 * time.Millisecond

// Watch runs the conversion once and again whenever the input file changes,
// until ctx is canceled. Failed reruns are logged and do not stop watching.
//
// The input's directory is watched rather than the file itself so editors
// that save by renaming a temp file over the input keep triggering runs.
func (c *Converter) Watch(ctx context.Context, force bool) error {
	if _, err := c.Run(ctx, force); err != nil {
		c.logger.Warn("Initial conversion failed; waiting for changes", logfields.Error(err))
	}

	input, err := filepath.Abs(c.cfg.Input)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "resolve input path").Fatal().Build()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ferrors.WrapError(fmt.Errorf("fsnotify: %w", err), ferrors.CategoryRuntime, "start watcher").Fatal().Build()
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "watch input directory").
			Fatal().
			WithContext("path", filepath.Dir(input)).
			Build()
	}
	c.logger.Info("Watching for changes", logfields.Input(input))

	rerun, trigger, stop := newDebouncer(watchDebounce)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Stopping watch")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isInputEvent(ev, input) {
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("watcher error", logfields.Error(err))
		case <-rerun:
			c.logger.Info("Change detected; converting again")
			if _, err := c.Run(ctx, force); err != nil {
				c.logger.Warn("Conversion failed; waiting for changes", logfields.Error(err))
			}
		}
	}
}

func isInputEvent(ev fsnotify.Event, input string) bool {
	if filepath.Clean(ev.Name) != input {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// newDebouncer returns a channel that fires once per burst of trigger calls,
// d after the last call of the burst.
func newDebouncer(d time.Duration) (<-chan struct{}, func(), func()) {
	var mu sync.Mutex
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return fire, trigger, stop
}
