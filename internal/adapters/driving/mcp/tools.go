package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// IngestInput is the input schema for the ingest_document tool.
type IngestInput struct {
	Path string `json:"path" jsonschema:"absolute path of the PDF file to ingest"`
}

// IngestOutput is the output schema for the ingest_document tool.
type IngestOutput struct {
	DocID    string `json:"doc_id"`
	NumPages int    `json:"num_pages"`
	IsNew    bool   `json:"is_new"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from indexed documents"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of evidence pages to retrieve (default 3, max 10)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string           `json:"answer"`
	Evidence []EvidenceOutput `json:"evidence"`
}

// EvidenceOutput is one retrieved page.
type EvidenceOutput struct {
	DocID     string  `json:"doc_id"`
	PageNum   int     `json:"page_num"`
	ImagePath string  `json:"image_path"`
	Score     float64 `json:"score"`
}

// StatsInput is the input schema for the stats tool. It takes no arguments.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	DocCount     int    `json:"doc_count"`
	IndexedPages int    `json:"indexed_pages"`
	EmbedDim     int    `json:"embed_dim"`
	EmbedderID   string `json:"embedder_id"`
	IndexBackend string `json:"index_backend"`
	IndexType    string `json:"index_type"`
	MaxPages     int    `json:"max_pages"`
	MaxFileBytes int64  `json:"max_file_bytes"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Ingest a PDF file into the index so its pages become searchable",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the most relevant indexed PDF pages",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Report index statistics and configured limits",
	}, s.handleStats)
}

// handleIngest handles the ingest_document tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("reading %s: %w", input.Path, err)
	}

	result, err := s.ports.Pipeline.Ingest(ctx, data, filepath.Base(input.Path))
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		DocID:    result.DocID,
		NumPages: result.NumPages,
		IsNew:    result.IsNew,
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Pipeline.Chat(ctx, input.Question, input.TopK)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:   result.Answer,
		Evidence: make([]EvidenceOutput, len(result.Evidence)),
	}
	for i, e := range result.Evidence {
		output.Evidence[i] = EvidenceOutput{
			DocID:     e.DocID,
			PageNum:   e.PageNum,
			ImagePath: e.ImagePath,
			Score:     e.Score,
		}
	}

	return nil, output, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Pipeline.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	return nil, StatsOutput{
		DocCount:     stats.DocCount,
		IndexedPages: stats.IndexedPages,
		EmbedDim:     stats.EmbedDim,
		EmbedderID:   stats.EmbedderID,
		IndexBackend: stats.IndexBackend,
		IndexType:    stats.IndexType,
		MaxPages:     stats.Limits.MaxPages,
		MaxFileBytes: stats.Limits.MaxFileBytes,
	}, nil
}
