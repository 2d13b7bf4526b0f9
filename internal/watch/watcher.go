// Package watch revalidates a mapping file whenever it changes on disk.
// Editors and spreadsheet exports save in bursts, so events are
// debounced: validation runs once the file has been quiet for the
// configured interval. The watcher monitors the file's directory rather
// than the file itself, because many editors replace the file on save
// and a direct watch dies with the old inode.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mapcheck/internal/validation"
)

// Handler receives each validation result produced by the watcher.
type Handler func(mappingName string, result validation.Result)

// Watcher revalidates mappings from one source file on change.
type Watcher struct {
	path      string
	mappings  []string
	source    validation.Source
	validator *validation.Validator
	debounce  time.Duration
	handler   Handler
	log       *zap.Logger
}

// New builds a watcher over the file at path. The mappings listed are
// revalidated on every change; an empty list validates the unnamed
// document.
func New(path string, mappings []string, source validation.Source, validator *validation.Validator, debounce time.Duration, handler Handler, log *zap.Logger) *Watcher {
	if validator == nil {
		validator = validation.New()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	if len(mappings) == 0 {
		mappings = []string{""}
	}
	return &Watcher{
		path:      path,
		mappings:  mappings,
		source:    source,
		validator: validator,
		debounce:  debounce,
		handler:   handler,
		log:       log,
	}
}

// Run validates once up front, then blocks watching for changes until
// the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.log.Info("watching for changes",
		zap.String("file", w.path),
		zap.Duration("debounce", w.debounce))

	w.validateAll(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.loop(ctx, fw)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) error {
	target := filepath.Clean(w.path)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			w.log.Debug("change detected", zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.validateAll(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) validateAll(ctx context.Context) {
	for _, name := range w.mappings {
		result := w.validator.ValidateSource(ctx, w.source, name)

		w.log.Info("validated",
			zap.String("mapping", name),
			zap.Bool("valid", result.Valid),
			zap.Int("errors", result.Summary.ErrorCount),
			zap.Int("warnings", result.Summary.WarningCount))

		if w.handler != nil {
			w.handler(name, result)
		}
	}
}
