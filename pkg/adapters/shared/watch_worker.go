package shared

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/blinknote/pkg/core"
)

type watchWorker struct {
	store     *Store
	events    chan core.Change
	watcher   *fsnotify.Watcher
	debouncer *debouncer
}

func newWatchWorker(store *Store, events chan core.Change) *watchWorker {
	return &watchWorker{
		store:  store,
		events: events,
	}
}

// start registers the directory with fsnotify before returning, so writes made
// after Watch returns are never missed.
func (w *watchWorker) start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(w.store.config.Dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.store.config.Dir, err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.store.config.Debounce)
	w.store.setWatching(1)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(w.store.handleError))
	return nil
}

// run is the main event loop of the watcher.
func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			w.store.config.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
		}
	}()
	defer close(w.events)
	defer w.store.setWatching(-1)
	defer w.watcher.Close()

	err = w.loop(ctx)

	// Pending timers may still send; wait for them before the channel closes.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchWorker) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.process(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.store.handleError(wErr)
		}
	}
}

// process maps a filesystem event to a key and schedules reading its value.
// Removals are not reported: a deleted key carries no collection.
func (w *watchWorker) process(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	key, ok := w.store.keyOf(event.Name)
	if !ok {
		return
	}
	w.store.config.Logger.Debug("shared key changed", "key", key, "op", event.Op.String())

	w.debouncer.add(key, func() {
		value, err := w.store.Get(ctx, key)
		if err != nil {
			if ctx.Err() == nil {
				w.store.handleError(fmt.Errorf("failed to read %s: %w", key, err))
			}
			return
		}
		if value == nil {
			return
		}
		w.store.recordEvent()
		select {
		case w.events <- core.Change{Key: key, Value: value}:
		case <-ctx.Done():
		}
	})
}
