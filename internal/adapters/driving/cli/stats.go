package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List known documents",
	RunE:  runDocuments,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	stats, err := pipelineService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Index")
	cmd.Printf("  Documents:     %d\n", stats.DocCount)
	cmd.Printf("  Indexed pages: %d\n", stats.IndexedPages)
	cmd.Printf("  Backend:       %s (%s)\n", stats.IndexBackend, stats.IndexType)
	cmd.Println()
	cmd.Println("Embedding")
	cmd.Printf("  Model:      %s\n", stats.EmbedderID)
	cmd.Printf("  Dimensions: %d\n", stats.EmbedDim)
	cmd.Println()
	cmd.Println("Limits")
	cmd.Printf("  Max pages:     %d\n", stats.Limits.MaxPages)
	cmd.Printf("  Max file size: %d bytes\n", stats.Limits.MaxFileBytes)
	cmd.Printf("  Render DPI:    %d\n", stats.Limits.DPI)
	return nil
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	manifests, err := pipelineService.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents failed: %w", err)
	}

	if len(manifests) == 0 {
		cmd.Println("No documents. Run 'docsight ingest <file.pdf>' to add one.")
		return nil
	}

	for _, m := range manifests {
		state := "indexed"
		if !m.Indexed {
			state = "not indexed"
		}
		cmd.Printf("%s  %-30s %4d pages  %s\n", m.DocID, m.Filename, m.NumPages, state)
	}
	return nil
}
