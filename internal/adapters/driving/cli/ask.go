package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed documents",
	Long: `Embeds the question, retrieves the most relevant indexed pages and
generates an answer grounded in them. The evidence pages are listed with
their similarity scores.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of evidence pages to retrieve (default 3, max 10)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	topK := askTopK
	if topK == 0 && appConfig != nil {
		topK = appConfig.Query.TopK
	}

	result, err := pipelineService.Chat(cmd.Context(), args[0], topK)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, result)
	}
	return outputAskText(cmd, result)
}

func outputAskJSON(cmd *cobra.Command, result domain.ChatResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAskText(cmd *cobra.Command, result domain.ChatResult) error {
	cmd.Println(strings.TrimSpace(result.Answer))

	if len(result.Evidence) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println("Evidence:")
	for i, e := range result.Evidence {
		cmd.Printf("  [%d] doc %s page %d (%.3f)\n", i+1, e.DocID, e.PageNum, e.Score)
	}
	return nil
}
