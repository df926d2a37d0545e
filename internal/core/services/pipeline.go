package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driving"
	"github.com/docsight-labs/docsight-cli/internal/logger"
)

// Ensure PipelineFacade implements the interface.
var _ driving.PipelineService = (*PipelineFacade)(nil)

// PipelineFacade is the process-lifetime owner of the manifest store and
// vector index. All index mutations (ingest, reset, rebuild) are
// serialized behind a single mutex; searches run concurrently and rely on
// the index's own read consistency.
type PipelineFacade struct {
	manifests driven.ManifestStore
	docs      driven.DocumentStore
	index     driven.PageIndex
	embedder  driven.EmbeddingService
	answerer  driven.AnswerService
	ingest    *IngestOrchestrator
	query     *QueryOrchestrator
	limits    domain.Limits
	backend   string
	indexType string

	mu sync.Mutex // serializes index mutations
}

// NewPipelineFacade wires the orchestrators and validates that the
// embedder's output dimension matches the index. A mismatch is a hard
// startup error, never silent corruption.
func NewPipelineFacade(
	manifests driven.ManifestStore,
	docs driven.DocumentStore,
	index driven.PageIndex,
	raster driven.Rasterizer,
	embedder driven.EmbeddingService,
	answerer driven.AnswerService,
	limits domain.Limits,
	backend, indexType string,
) (*PipelineFacade, error) {
	if index.Dim() != embedder.Dimensions() {
		return nil, fmt.Errorf("%w: index dimension %d, embedder %s produces %d",
			domain.ErrDimensionMismatch, index.Dim(), embedder.ModelName(), embedder.Dimensions())
	}

	return &PipelineFacade{
		manifests: manifests,
		docs:      docs,
		index:     index,
		embedder:  embedder,
		answerer:  answerer,
		ingest:    NewIngestOrchestrator(manifests, docs, index, raster, embedder, limits, backend),
		query:     NewQueryOrchestrator(index, embedder, answerer),
		limits:    limits,
		backend:   backend,
		indexType: indexType,
	}, nil
}

// Ingest processes one uploaded document. Mutations are serialized.
func (p *PipelineFacade) Ingest(ctx context.Context, data []byte, filename string) (domain.IngestResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ingest.Ingest(ctx, data, filename)
}

// Chat answers a question from indexed pages. Safe to call concurrently.
func (p *PipelineFacade) Chat(ctx context.Context, question string, topK int) (domain.ChatResult, error) {
	return p.query.Chat(ctx, question, topK)
}

// Health reports liveness and the indexed page count.
func (p *PipelineFacade) Health(_ context.Context) domain.HealthInfo {
	return domain.HealthInfo{OK: true, IndexedPages: p.index.Size()}
}

// Stats reflects internal state for observability. It mutates nothing.
func (p *PipelineFacade) Stats(ctx context.Context) (domain.Stats, error) {
	manifests, err := p.manifests.List(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("list manifests: %w", err)
	}

	docCount := 0
	for i := range manifests {
		if manifests[i].Indexed {
			docCount++
		}
	}

	return domain.Stats{
		DocCount:     docCount,
		IndexedPages: p.index.Size(),
		EmbedDim:     p.index.Dim(),
		EmbedderID:   p.embedder.ModelName(),
		IndexBackend: p.backend,
		IndexType:    p.indexType,
		Limits:       p.limits,
	}, nil
}

// ListDocuments returns every known manifest.
func (p *PipelineFacade) ListDocuments(ctx context.Context) ([]domain.Manifest, error) {
	return p.manifests.List(ctx)
}

// ResetIndex clears the index, persists the empty state and marks every
// manifest unindexed. Documents and rendered pages are untouched.
func (p *PipelineFacade) ResetIndex(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.index.Reset(); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	if err := p.manifests.MarkAllUnindexed(ctx); err != nil {
		return fmt.Errorf("mark manifests unindexed: %w", err)
	}

	logger.Info("Index cleared")
	return nil
}

// RebuildAll deterministically rebuilds the whole index from stored
// source documents. Documents without a stored source are skipped with a
// warning; the rebuild never attempts partial repair of existing state.
func (p *PipelineFacade) RebuildAll(ctx context.Context) (domain.RebuildResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()

	if err := p.index.Reset(); err != nil {
		return domain.RebuildResult{}, fmt.Errorf("reset index: %w", err)
	}

	manifests, err := p.manifests.List(ctx)
	if err != nil {
		return domain.RebuildResult{}, fmt.Errorf("list manifests: %w", err)
	}

	var docs, pages int
	for i := range manifests {
		docID := manifests[i].DocID
		n, err := p.ingest.Reindex(ctx, docID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Warn("Skipping %s: no stored source", docID)
				continue
			}
			return domain.RebuildResult{}, fmt.Errorf("reindex %s: %w", docID, err)
		}
		docs++
		pages += n
		logger.Info("Reindexed %s: %d pages", docID, n)
	}

	if err := p.index.Persist(); err != nil {
		return domain.RebuildResult{}, fmt.Errorf("persist index: %w", err)
	}

	elapsed := time.Since(start)
	logger.Info("Rebuild complete: %d documents, %d pages in %s", docs, pages, elapsed)
	return domain.RebuildResult{Docs: docs, Pages: pages, Elapsed: elapsed}, nil
}

// Ping verifies external collaborators are reachable, for fail-fast
// startup of long-running transports.
func (p *PipelineFacade) Ping(ctx context.Context) error {
	if err := p.embedder.Ping(ctx); err != nil {
		return fmt.Errorf("embedding service: %w", err)
	}
	if err := p.answerer.Ping(ctx); err != nil {
		return fmt.Errorf("answer service: %w", err)
	}
	return nil
}
