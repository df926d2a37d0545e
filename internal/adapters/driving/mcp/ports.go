package mcp

import (
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Pipeline drives ingestion, retrieval and maintenance.
	Pipeline driving.PipelineService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Pipeline == nil {
		return ErrMissingPipelineService
	}
	return nil
}
