package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsight-labs/docsight-cli/internal/adapters/driving/mcp"
	"github.com/docsight-labs/docsight-cli/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default, for Claude Desktop)
  docsight serve

  # HTTP mode (for MCP Inspector, remote access)
  docsight serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "docsight": {
        "command": "/path/to/docsight",
        "args": ["serve"]
      }
    }
  }`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	// Fail fast before accepting requests; a dead embedding server would
	// otherwise fail every tool call.
	if err := pipelineService.Ping(cmd.Context()); err != nil {
		logger.Warn("Collaborator check failed: %v", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{Pipeline: pipelineService})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
