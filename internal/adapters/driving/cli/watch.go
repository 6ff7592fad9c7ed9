package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

var (
	watchTenant   string
	watchMeta     []string
	watchExts     []string
	watchInitial  bool
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-ingest files in a directory when they change",
	Long: `Watches a directory tree. Created or modified files are ingested (unchanged
content is skipped) and removed files are deleted from the index.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchTenant, "tenant", "t", "", "tenant to ingest into")
	watchCmd.Flags().StringArrayVarP(&watchMeta, "meta", "m", nil, "metadata key=value (repeatable)")
	watchCmd.Flags().StringSliceVar(&watchExts, "ext", defaultExtensions, "file extensions to watch")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", true, "ingest existing files before watching")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "delay before acting on changes")
	rootCmd.AddCommand(watchCmd)
}

// watchAction is what a filesystem event asks for.
type watchAction int

const (
	watchIgnore watchAction = iota
	watchIngest
	watchDelete
	watchAddDir
)

// dirWatch carries what a running watch needs.
type dirWatch struct {
	cmd     *cobra.Command
	watcher *fsnotify.Watcher
	tenant  domain.Tenant
	meta    map[string]any
	exts    []string
	delay   time.Duration
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchDebounce <= 0 {
		return fmt.Errorf("%w: --debounce must be positive, got %v", domain.ErrInvalidInput, watchDebounce)
	}
	if ingestService == nil {
		return errNotConfigured
	}
	root := args[0]
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("watch needs a directory")
	}
	meta, err := parseKeyValues(watchMeta)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	w := &dirWatch{
		cmd:     cmd,
		watcher: watcher,
		tenant:  domain.Tenant(watchTenant),
		meta:    meta,
		exts:    watchExts,
		delay:   watchDebounce,
	}
	if err := w.addTree(root); err != nil {
		return err
	}

	if watchInitial {
		files, err := collectFiles([]string{root}, w.exts)
		if err != nil {
			return err
		}
		for _, path := range files {
			w.apply(ctx, path, watchIngest)
		}
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", root)
	return w.loop(ctx)
}

// loop collects events and acts on them once per debounce interval, so a
// burst of writes to one file ingests it once.
func (w *dirWatch) loop(ctx context.Context) error {
	ticker := time.NewTicker(w.delay)
	defer ticker.Stop()

	pending := make(map[string]watchAction)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			switch action := classifyEvent(event, w.exts); action {
			case watchAddDir:
				if err := w.addTree(event.Name); err != nil {
					logger.Warn("watching %s: %v", event.Name, err)
				}
			case watchIngest, watchDelete:
				pending[event.Name] = action
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-ticker.C:
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			slices.Sort(paths)
			for _, path := range paths {
				w.apply(ctx, path, pending[path])
			}
			clear(pending)
		}
	}
}

func (w *dirWatch) apply(ctx context.Context, path string, action watchAction) {
	switch action {
	case watchIngest:
		report, err := ingestFile(ctx, path, w.tenant, w.meta)
		if err != nil {
			w.cmd.PrintErrf("  %s: %v\n", path, err)
			return
		}
		printReport(w.cmd, path, report)

	case watchDelete:
		err := ingestService.Delete(ctx, w.tenant, path)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			w.cmd.PrintErrf("  %s: %v\n", path, err)
		default:
			w.cmd.Printf("  %s: removed\n", path)
		}
	}
}

// addTree watches dir and every non-hidden directory below it.
func (w *dirWatch) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// classifyEvent maps an fsnotify event to an action. Hidden paths, chmod
// events and files with other extensions are ignored.
func classifyEvent(event fsnotify.Event, exts []string) watchAction {
	if isHidden(event.Name) {
		return watchIgnore
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if matchesExtension(event.Name, exts) {
			return watchDelete
		}
		return watchIgnore
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return watchIgnore
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return watchIgnore
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			return watchAddDir
		}
		return watchIgnore
	}
	if info.Mode().IsRegular() && matchesExtension(event.Name, exts) {
		return watchIngest
	}
	return watchIgnore
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
