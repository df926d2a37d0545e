package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest PDF documents into the index",
	Long: `Renders each PDF's pages to images, embeds them and adds them to the
similarity index. Re-ingesting a byte-identical file is a no-op.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	var failed int
	for _, path := range args {
		if err := ingestOne(cmd, path); err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(args))
	}
	return nil
}

func ingestOne(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	result, err := pipelineService.Ingest(cmd.Context(), data, filepath.Base(path))
	if err != nil {
		return err
	}

	if result.IsNew {
		cmd.Printf("Indexed %s: %s (%d pages)\n", filepath.Base(path), result.DocID, result.NumPages)
	} else {
		cmd.Printf("Already indexed %s: %s (%d pages)\n", filepath.Base(path), result.DocID, result.NumPages)
	}
	return nil
}
