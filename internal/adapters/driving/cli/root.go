// Package cli provides the cobra command tree for docsight.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/docsight-labs/docsight-cli/internal/adapters/driven/config/file"
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driving"
	"github.com/docsight-labs/docsight-cli/internal/logger"
)

// version is the docsight version, reported by the version command.
// Overridable at build time via -ldflags.
var version = "0.1.0"

// Injected collaborators. Set by Execute before any command runs.
var (
	pipelineService driving.PipelineService
	appConfig       *file.Config
	configDir       string
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docsight",
	Short: "Ask questions about your PDF documents",
	Long: `Docsight ingests PDF documents, renders their pages to images, embeds
them with a vision model and answers questions grounded in the most
relevant pages.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Deps carries the collaborators the command tree needs.
type Deps struct {
	Pipeline  driving.PipelineService
	Config    *file.Config
	ConfigDir string
}

// Execute injects dependencies and runs the command tree. The context
// cancels long-running commands (serve, watch, tui) on shutdown.
func Execute(ctx context.Context, deps Deps) error {
	pipelineService = deps.Pipeline
	appConfig = deps.Config
	configDir = deps.ConfigDir
	return rootCmd.ExecuteContext(ctx)
}
