package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight-labs/docsight-cli/internal/adapters/driven/index/flat"
	"github.com/docsight-labs/docsight-cli/internal/core/domain"
)

// pipelineFixture wires the full facade over mocks and a real index.
type pipelineFixture struct {
	facade    *PipelineFacade
	manifests *mockManifestStore
	docs      *mockDocStore
	index     *flat.Index
	embedder  *mockEmbedder
}

func newPipelineFixture(t *testing.T, pageCount int) *pipelineFixture {
	t.Helper()

	manifests := newMockManifestStore()
	docs := newMockDocStore()
	index := flat.New(t.TempDir(), testDim)
	raster := &mockRasterizer{docs: docs, pageCount: pageCount}
	embedder := &mockEmbedder{dim: testDim, model: "clip-test"}

	facade, err := NewPipelineFacade(manifests, docs, index, raster, embedder,
		&mockAnswerer{}, testLimits, flat.Backend, flat.IndexType)
	require.NoError(t, err)

	return &pipelineFixture{
		facade:    facade,
		manifests: manifests,
		docs:      docs,
		index:     index,
		embedder:  embedder,
	}
}

func TestNewPipelineFacade_DimensionMismatch(t *testing.T) {
	index := flat.New(t.TempDir(), 512)
	embedder := &mockEmbedder{dim: 768, model: "clip-test"}
	docs := newMockDocStore()

	_, err := NewPipelineFacade(newMockManifestStore(), docs, index,
		&mockRasterizer{docs: docs, pageCount: 1}, embedder, &mockAnswerer{},
		testLimits, flat.Backend, flat.IndexType)

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestResetIndex(t *testing.T) {
	f := newPipelineFixture(t, 2)
	ctx := context.Background()

	_, err := f.facade.Ingest(ctx, pdfBytes("doc one"), "one.pdf")
	require.NoError(t, err)
	require.Equal(t, 2, f.index.Size())

	require.NoError(t, f.facade.ResetIndex(ctx))

	assert.Equal(t, 0, f.index.Size())
	list, err := f.facade.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Indexed, "reset marks manifests unindexed")
	assert.Nil(t, list[0].IndexedAt)
	assert.True(t, f.docs.HasSource(list[0].DocID), "reset keeps stored documents")
}

func TestRebuildAll_RestoresIndexFromSources(t *testing.T) {
	f := newPipelineFixture(t, 2)
	ctx := context.Background()

	first, err := f.facade.Ingest(ctx, pdfBytes("doc one"), "one.pdf")
	require.NoError(t, err)
	second, err := f.facade.Ingest(ctx, pdfBytes("doc two"), "two.pdf")
	require.NoError(t, err)
	require.NotEqual(t, first.DocID, second.DocID)

	require.NoError(t, f.facade.ResetIndex(ctx))
	require.Equal(t, 0, f.index.Size())

	result, err := f.facade.RebuildAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Docs)
	assert.Equal(t, 4, result.Pages)
	assert.Equal(t, 4, f.index.Size())

	list, err := f.facade.ListDocuments(ctx)
	require.NoError(t, err)
	for _, m := range list {
		assert.True(t, m.Indexed)
	}
}

func TestRebuildAll_SkipsDocumentsWithoutSource(t *testing.T) {
	f := newPipelineFixture(t, 2)
	ctx := context.Background()

	// A manifest with no stored source, as after a partial restore.
	require.NoError(t, f.manifests.Save(ctx, &domain.Manifest{
		DocID: "feedfacefeedface", Filename: "ghost.pdf", NumPages: 9,
	}))

	result, err := f.facade.RebuildAll(ctx)
	require.NoError(t, err, "missing sources are skipped, not fatal")
	assert.Equal(t, 0, result.Docs)
	assert.Equal(t, 0, f.index.Size())
}

func TestStats(t *testing.T) {
	f := newPipelineFixture(t, 3)
	ctx := context.Background()

	_, err := f.facade.Ingest(ctx, pdfBytes("doc one"), "one.pdf")
	require.NoError(t, err)

	stats, err := f.facade.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DocCount)
	assert.Equal(t, 3, stats.IndexedPages)
	assert.Equal(t, testDim, stats.EmbedDim)
	assert.Equal(t, "clip-test", stats.EmbedderID)
	assert.Equal(t, flat.Backend, stats.IndexBackend)
	assert.Equal(t, flat.IndexType, stats.IndexType)
	assert.Equal(t, testLimits, stats.Limits)
}

func TestStats_UnindexedDocumentsNotCounted(t *testing.T) {
	f := newPipelineFixture(t, 2)
	ctx := context.Background()

	_, err := f.facade.Ingest(ctx, pdfBytes("doc one"), "one.pdf")
	require.NoError(t, err)
	require.NoError(t, f.facade.ResetIndex(ctx))

	stats, err := f.facade.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.DocCount)
	assert.Equal(t, 0, stats.IndexedPages)
}

func TestHealth(t *testing.T) {
	f := newPipelineFixture(t, 2)
	ctx := context.Background()

	health := f.facade.Health(ctx)
	assert.True(t, health.OK)
	assert.Equal(t, 0, health.IndexedPages)

	_, err := f.facade.Ingest(ctx, pdfBytes("doc"), "doc.pdf")
	require.NoError(t, err)

	health = f.facade.Health(ctx)
	assert.Equal(t, 2, health.IndexedPages)
}
