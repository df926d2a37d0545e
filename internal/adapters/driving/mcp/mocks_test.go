package mcp

import (
	"context"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
)

// mockPipelineService is a mock implementation of driving.PipelineService.
type mockPipelineService struct {
	ingestResult  domain.IngestResult
	ingestedData  []byte
	ingestedName  string
	chatResult    domain.ChatResult
	chatQuestion  string
	chatTopK      int
	stats         domain.Stats
	manifests     []domain.Manifest
	health        domain.HealthInfo
	rebuildResult domain.RebuildResult
	err           error
}

func (m *mockPipelineService) Ingest(_ context.Context, data []byte, filename string) (domain.IngestResult, error) {
	m.ingestedData = data
	m.ingestedName = filename
	return m.ingestResult, m.err
}

func (m *mockPipelineService) Chat(_ context.Context, question string, topK int) (domain.ChatResult, error) {
	m.chatQuestion = question
	m.chatTopK = topK
	return m.chatResult, m.err
}

func (m *mockPipelineService) Health(_ context.Context) domain.HealthInfo {
	return m.health
}

func (m *mockPipelineService) Stats(_ context.Context) (domain.Stats, error) {
	return m.stats, m.err
}

func (m *mockPipelineService) ListDocuments(_ context.Context) ([]domain.Manifest, error) {
	return m.manifests, m.err
}

func (m *mockPipelineService) ResetIndex(_ context.Context) error {
	return m.err
}

func (m *mockPipelineService) RebuildAll(_ context.Context) (domain.RebuildResult, error) {
	return m.rebuildResult, m.err
}

func (m *mockPipelineService) Ping(_ context.Context) error {
	return m.err
}
