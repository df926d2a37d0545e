package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for docsight resources.
const uriScheme = "docsight://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "health",
		Name:        "health",
		Description: "Service liveness and indexed page count",
		MIMEType:    "application/json",
	}, s.handleHealthResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "All known documents with their indexing state",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)
}

// handleHealthResource reports liveness.
func (s *Server) handleHealthResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	health := s.ports.Pipeline.Health(ctx)

	data, err := json.MarshalIndent(map[string]any{
		"ok":            health.OK,
		"indexed_pages": health.IndexedPages,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling health: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentsResource lists every known document.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	manifests, err := s.ports.Pipeline.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		DocID     string     `json:"doc_id"`
		Filename  string     `json:"filename"`
		NumPages  int        `json:"num_pages"`
		Indexed   bool       `json:"indexed"`
		CreatedAt time.Time  `json:"created_at"`
		IndexedAt *time.Time `json:"indexed_at,omitempty"`
	}

	infos := make([]docInfo, len(manifests))
	for i := range manifests {
		infos[i] = docInfo{
			DocID:     manifests[i].DocID,
			Filename:  manifests[i].Filename,
			NumPages:  manifests[i].NumPages,
			Indexed:   manifests[i].Indexed,
			CreatedAt: manifests[i].CreatedAt,
			IndexedAt: manifests[i].IndexedAt,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
