package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var indexResetYes bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index maintenance commands",
}

var indexResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the similarity index",
	Long: `Clears all vectors from the index and marks every document as not
indexed. Stored documents and rendered pages are kept, so the index can
be rebuilt with 'docsight index rebuild'.`,
	RunE: runIndexReset,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the index from stored documents",
	Long: `Clears the index and re-renders, re-embeds and re-indexes every stored
document. Use after an index reset, a corrupt index state or an embedding
model change.`,
	RunE: runIndexRebuild,
}

func init() {
	indexResetCmd.Flags().BoolVarP(&indexResetYes, "yes", "y", false, "skip confirmation")
	indexCmd.AddCommand(indexResetCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexReset(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	if !indexResetYes {
		cmd.Print("This clears the whole index. Continue? [y/N]: ")
		var answer string
		fmt.Fscanln(cmd.InOrStdin(), &answer) //nolint:errcheck // empty input means no
		if answer != "y" && answer != "Y" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := pipelineService.ResetIndex(cmd.Context()); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	cmd.Println("Index cleared. Run 'docsight index rebuild' to re-index stored documents.")
	return nil
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	cmd.Println("Rebuilding index from stored documents...")
	result, err := pipelineService.RebuildAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	cmd.Printf("Rebuilt %d documents (%d pages) in %s\n", result.Docs, result.Pages, result.Elapsed.Round(time.Millisecond))
	return nil
}
