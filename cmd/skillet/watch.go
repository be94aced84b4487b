package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillet-cli/skillet/pkg/index"
	"github.com/skillet-cli/skillet/pkg/logger"
	"github.com/skillet-cli/skillet/pkg/presenter"
)

// fileEvent is a file system event tagged with its arrival time
type fileEvent struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch discovery directories and keep the catalog fresh",
	Long: `Continuously monitor the skill discovery directories and rebuild the
catalog whenever markdown bundles change. Events are debounced so editor
save bursts trigger a single rebuild.

Examples:
  skillet watch
  skillet watch --debounce 1000
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		debounceMs, _ := cmd.Flags().GetInt("debounce")
		if debounceMs < 0 {
			return errors.Errorf("debounce time cannot be negative: %d", debounceMs)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			presenter.Warning("Stopping watcher...")
			cancel()
		}()

		return runWatch(ctx, time.Duration(debounceMs)*time.Millisecond)
	},
}

func runWatch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	watched := watchRoots()
	if len(watched) == 0 {
		return errors.New("no discovery directories exist; create .skillet/skills or ~/.skillet/skills first")
	}
	for _, dir := range watched {
		if err := addTree(watcher, dir); err != nil {
			return errors.Wrapf(err, "failed to watch %s", dir)
		}
	}

	events := make(chan fileEvent)
	debounced := make(chan fileEvent)
	go debounceFileEvents(ctx, events, debounced, debounce)

	go func() {
		for {
			select {
			case event, ok := <-debounced:
				if !ok {
					return
				}
				presenter.Info(fmt.Sprintf("Change detected: %s (%s)", event.Path, event.Op))
				rebuildCatalog(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				// New directories need to be picked up for nested bundles
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = addTree(watcher, event.Name)
					}
				}

				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if !strings.HasSuffix(event.Name, ".md") {
					continue
				}

				events <- fileEvent{Path: event.Name, Op: event.Op, Time: time.Now()}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.G(ctx).WithError(err).Error("file watcher error")
			case <-ctx.Done():
				return
			}
		}
	}()

	presenter.Info(fmt.Sprintf("Watching %d directories... Press Ctrl+C to stop", len(watched)))
	logger.G(ctx).WithField("directories", watched).Info("file watcher initialized")

	<-ctx.Done()
	return nil
}

// watchRoots returns the discovery directories that exist
func watchRoots() []string {
	roots := []string{".skillet"}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, ".skillet"))
	}

	var existing []string
	for _, root := range roots {
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			existing = append(existing, root)
		}
	}
	return existing
}

// addTree registers a directory and all its subdirectories with the watcher
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func rebuildCatalog(ctx context.Context) {
	skillDiscovery, pluginDiscovery, err := newDiscoveries()
	if err != nil {
		presenter.Error(err, "Failed to initialize discovery")
		return
	}

	entries, err := index.CollectEntries(ctx, skillDiscovery, pluginDiscovery)
	if err != nil {
		presenter.Error(err, "Failed to collect entries")
		return
	}

	store, err := index.OpenDefault(ctx)
	if err != nil {
		presenter.Error(err, "Failed to open catalog")
		return
	}
	defer store.Close()

	run, err := store.Rebuild(ctx, entries)
	if err != nil {
		presenter.Error(err, "Failed to rebuild catalog")
		return
	}

	presenter.Success(fmt.Sprintf("Catalog refreshed: %d entries", run.EntryCount))
}

// debounceFileEvents collapses rapid changes to the same file into one event
func debounceFileEvents(ctx context.Context, input <-chan fileEvent, output chan<- fileEvent, delay time.Duration) {
	pending := make(map[string]*time.Timer)

	for {
		select {
		case event, ok := <-input:
			if !ok {
				for _, timer := range pending {
					timer.Stop()
				}
				return
			}

			if timer, exists := pending[event.Path]; exists {
				timer.Stop()
				delete(pending, event.Path)
			}

			eventCopy := event
			pending[event.Path] = time.AfterFunc(delay, func() {
				select {
				case output <- eventCopy:
				case <-ctx.Done():
				}
			})
		case <-ctx.Done():
			for _, timer := range pending {
				timer.Stop()
			}
			return
		}
	}
}

func init() {
	watchCmd.Flags().IntP("debounce", "d", 500, "Debounce time in milliseconds for file change events")
	rootCmd.AddCommand(watchCmd)
}
