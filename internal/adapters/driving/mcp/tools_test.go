package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
)

func newTestServer(t *testing.T, pipeline *mockPipelineService) *Server {
	t.Helper()

	server, err := NewServer(&Ports{Pipeline: pipeline})
	require.NoError(t, err)
	return server
}

func TestNewServer_RequiresPipeline(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.ErrorIs(t, err, ErrMissingPipelineService)
}

func TestServer_handleIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("reads file and reports result", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 body"), 0600))

		pipeline := &mockPipelineService{
			ingestResult: domain.IngestResult{DocID: "0123456789abcdef", NumPages: 4, IsNew: true},
		}
		server := newTestServer(t, pipeline)

		_, output, err := server.handleIngest(ctx, nil, IngestInput{Path: path})
		require.NoError(t, err)

		assert.Equal(t, "0123456789abcdef", output.DocID)
		assert.Equal(t, 4, output.NumPages)
		assert.True(t, output.IsNew)
		assert.Equal(t, []byte("%PDF-1.4 body"), pipeline.ingestedData)
		assert.Equal(t, "report.pdf", pipeline.ingestedName)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		server := newTestServer(t, &mockPipelineService{})

		_, _, err := server.handleIngest(ctx, nil, IngestInput{Path: "/nonexistent.pdf"})
		require.Error(t, err)
	})

	t.Run("pipeline error is surfaced", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "big.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0600))

		pipeline := &mockPipelineService{err: domain.ErrInvalidInput}
		server := newTestServer(t, pipeline)

		_, _, err := server.handleIngest(ctx, nil, IngestInput{Path: path})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with evidence", func(t *testing.T) {
		pipeline := &mockPipelineService{
			chatResult: domain.ChatResult{
				Answer: "revenue grew in Q3",
				Evidence: []domain.Evidence{
					{DocID: "0123456789abcdef", PageNum: 2, ImagePath: "pages/page_0002.png", Score: 0.91},
				},
			},
		}
		server := newTestServer(t, pipeline)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "how did revenue do", TopK: 5})
		require.NoError(t, err)

		assert.Equal(t, "revenue grew in Q3", output.Answer)
		require.Len(t, output.Evidence, 1)
		assert.Equal(t, "0123456789abcdef", output.Evidence[0].DocID)
		assert.Equal(t, 2, output.Evidence[0].PageNum)
		assert.Equal(t, 0.91, output.Evidence[0].Score)
		assert.Equal(t, "how did revenue do", pipeline.chatQuestion)
		assert.Equal(t, 5, pipeline.chatTopK)
	})

	t.Run("returns error on chat failure", func(t *testing.T) {
		pipeline := &mockPipelineService{err: errors.New("embedder unreachable")}
		server := newTestServer(t, pipeline)

		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedder unreachable")
	})
}

func TestServer_handleStats(t *testing.T) {
	pipeline := &mockPipelineService{
		stats: domain.Stats{
			DocCount:     2,
			IndexedPages: 17,
			EmbedDim:     512,
			EmbedderID:   "clip-vit-base-patch32",
			IndexBackend: "flat",
			IndexType:    "flat-ip",
			Limits:       domain.Limits{MaxPages: 100, MaxFileBytes: 50 << 20, DPI: 180},
		},
	}
	server := newTestServer(t, pipeline)

	_, output, err := server.handleStats(context.Background(), nil, StatsInput{})
	require.NoError(t, err)

	assert.Equal(t, 2, output.DocCount)
	assert.Equal(t, 17, output.IndexedPages)
	assert.Equal(t, 512, output.EmbedDim)
	assert.Equal(t, "clip-vit-base-patch32", output.EmbedderID)
	assert.Equal(t, "flat", output.IndexBackend)
	assert.Equal(t, int64(50<<20), output.MaxFileBytes)
}
