package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/docsight-labs/docsight-cli/internal/logger"
)

// settleDelay is how long a file must be quiet before it is ingested.
// Downloads and copies produce a burst of write events.
const settleDelay = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest PDFs dropped into it",
	Long: `Watches a directory and ingests every PDF that appears in it. Existing
PDFs are ingested on startup. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	// Catch up on files that were dropped while not watching.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isPDF(entry.Name()) {
			continue
		}
		if err := ingestOne(cmd, filepath.Join(dir, entry.Name())); err != nil {
			cmd.PrintErrf("%s: %v\n", entry.Name(), err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	cmd.Printf("Watching %s for PDFs (Ctrl-C to stop)\n", dir)

	// Pending files wait out settleDelay; a new event restarts the clock.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isPDF(event.Name) {
				continue
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				logger.Debug("File event: %s %s", event.Op, event.Name)
				pending[event.Name] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < settleDelay {
					continue
				}
				delete(pending, path)
				if err := ingestOne(cmd, path); err != nil {
					cmd.PrintErrf("%s: %v\n", filepath.Base(path), err)
				}
			}
		}
	}
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
