package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-labs/docsight-cli/internal/logger"
)

// pdfMagic is the header every PDF starts with.
var pdfMagic = []byte("%PDF-")

// IngestOrchestrator drives the render, embed, index, commit sequence for
// one document, enforcing idempotency and the configured limits.
type IngestOrchestrator struct {
	manifests driven.ManifestStore
	docs      driven.DocumentStore
	index     driven.PageIndex
	raster    driven.Rasterizer
	embedder  driven.EmbeddingService
	limits    domain.Limits
	backend   string
}

// NewIngestOrchestrator creates an ingest orchestrator. backend identifies
// the index implementation and is recorded on manifests.
func NewIngestOrchestrator(
	manifests driven.ManifestStore,
	docs driven.DocumentStore,
	index driven.PageIndex,
	raster driven.Rasterizer,
	embedder driven.EmbeddingService,
	limits domain.Limits,
	backend string,
) *IngestOrchestrator {
	return &IngestOrchestrator{
		manifests: manifests,
		docs:      docs,
		index:     index,
		raster:    raster,
		embedder:  embedder,
		limits:    limits,
		backend:   backend,
	}
}

// Ingest processes one uploaded document.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *IngestOrchestrator) Ingest(ctx context.Context, data []byte, filename string) (domain.IngestResult, error) {
	logger.Section("Ingest")

	// Validate before anything durable happens.
	if len(data) == 0 {
		return domain.IngestResult{}, domain.ErrEmptyDocument
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return domain.IngestResult{}, fmt.Errorf("%w: missing PDF header", domain.ErrUnsupportedType)
	}
	if int64(len(data)) > o.limits.MaxFileBytes {
		return domain.IngestResult{}, &domain.LimitError{
			What: "file size", Unit: "bytes",
			Actual: int64(len(data)), Max: o.limits.MaxFileBytes,
		}
	}

	docID := domain.DocIDFromBytes(data)
	sha := domain.SHA256FromBytes(data)
	logger.Debug("Document %s (%s, %d bytes)", docID, filename, len(data))

	// Idempotency check: re-submitting byte-identical content is a no-op
	// beyond this lookup. The cached result is trusted only when the
	// recorded embedder and backend match the running configuration;
	// stale vectors from a different embedder must not be served.
	existing, err := o.manifests.Load(ctx, docID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.IngestResult{}, fmt.Errorf("load manifest: %w", err)
	}
	if existing != nil && existing.Indexed {
		if existing.EmbedderID == o.embedder.ModelName() && existing.IndexBackend == o.backend {
			logger.Info("Already indexed, idempotent skip: %s (%d pages)", docID, existing.NumPages)
			return domain.IngestResult{DocID: docID, NumPages: existing.NumPages, IsNew: false}, nil
		}
		logger.Warn("Manifest %s was indexed with %s/%s, current is %s/%s; re-ingesting",
			docID, existing.EmbedderID, existing.IndexBackend, o.embedder.ModelName(), o.backend)
	}

	// Structural preflight gives the page count before rendering.
	pageCount, err := o.raster.Preflight(data)
	if err != nil {
		return domain.IngestResult{}, err
	}
	if pageCount > o.limits.MaxPages {
		return domain.IngestResult{}, &domain.LimitError{
			What: "page count", Unit: "pages",
			Actual: int64(pageCount), Max: int64(o.limits.MaxPages),
		}
	}

	// Persist the immutable source. Re-ingestion of the same identifier
	// never rewrites it.
	if err := o.docs.SaveSource(docID, data); err != nil {
		return domain.IngestResult{}, fmt.Errorf("save source: %w", err)
	}

	images, err := o.renderPages(ctx, docID)
	if err != nil {
		return domain.IngestResult{}, err
	}

	pages, err := o.embedAndAppend(ctx, docID, images)
	if err != nil {
		return domain.IngestResult{}, err
	}

	// The manifest commit happens last: the index is tentative state, the
	// manifest the durable done marker. A crash before this point leaves
	// orphan vectors recoverable only by a full rebuild.
	now := time.Now().UTC()
	m := &domain.Manifest{
		DocID:        docID,
		Filename:     filename,
		NumPages:     pages,
		Indexed:      true,
		CreatedAt:    now,
		IndexedAt:    &now,
		SHA256:       sha,
		IndexBackend: o.backend,
		EmbedderID:   o.embedder.ModelName(),
	}
	if existing != nil {
		m.CreatedAt = existing.CreatedAt
	}
	if err := o.manifests.Save(ctx, m); err != nil {
		return domain.IngestResult{}, fmt.Errorf("save manifest: %w", err)
	}

	logger.Info("Indexed %d pages for document %s", pages, docID)
	return domain.IngestResult{DocID: docID, NumPages: pages, IsNew: true}, nil
}

// Reindex re-renders and re-embeds one stored document and appends its
// vectors to the index. Used by the rebuild path; the caller persists the
// index once at the end.
func (o *IngestOrchestrator) Reindex(ctx context.Context, docID string) (int, error) {
	if !o.docs.HasSource(docID) {
		return 0, fmt.Errorf("%w: no stored source for %s", domain.ErrNotFound, docID)
	}

	images, err := o.renderPages(ctx, docID)
	if err != nil {
		return 0, err
	}

	vectors, err := o.embedder.EmbedImages(ctx, images)
	if err != nil {
		return 0, &domain.ProcessError{Stage: "embed", Err: err}
	}
	if err := o.index.Add(vectors, pageRefs(docID, images)); err != nil {
		return 0, err
	}

	existing, err := o.manifests.Load(ctx, docID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, fmt.Errorf("load manifest: %w", err)
	}

	now := time.Now().UTC()
	m := &domain.Manifest{
		DocID:        docID,
		NumPages:     len(images),
		Indexed:      true,
		CreatedAt:    now,
		IndexedAt:    &now,
		IndexBackend: o.backend,
		EmbedderID:   o.embedder.ModelName(),
	}
	if existing != nil {
		m.Filename = existing.Filename
		m.CreatedAt = existing.CreatedAt
		m.SHA256 = existing.SHA256
	}
	if err := o.manifests.Save(ctx, m); err != nil {
		return 0, fmt.Errorf("save manifest: %w", err)
	}

	return len(images), nil
}

// renderPages returns the rendered page images for a document, rendering
// into a staging directory and publishing atomically when no pages exist
// yet. The post-render page count is checked against the limit since the
// preflight count can disagree with what the renderer produces.
func (o *IngestOrchestrator) renderPages(ctx context.Context, docID string) ([]string, error) {
	images, err := o.docs.ListPages(docID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if len(images) == 0 {
		staging, err := o.docs.StagingDir(docID)
		if err != nil {
			return nil, fmt.Errorf("create staging dir: %w", err)
		}

		logger.Debug("Rendering pages for %s at %d DPI", docID, o.limits.DPI)
		rendered, err := o.raster.Render(ctx, o.docs.SourcePath(docID), staging, o.limits.DPI)
		if err != nil {
			return nil, &domain.ProcessError{Stage: "render", Err: err}
		}
		if len(rendered) > o.limits.MaxPages {
			return nil, &domain.LimitError{
				What: "page count", Unit: "pages",
				Actual: int64(len(rendered)), Max: int64(o.limits.MaxPages),
			}
		}

		if err := o.docs.PublishPages(docID, staging); err != nil {
			return nil, fmt.Errorf("publish pages: %w", err)
		}
		images, err = o.docs.ListPages(docID)
		if err != nil {
			return nil, fmt.Errorf("list pages: %w", err)
		}
	}

	if len(images) == 0 {
		return nil, &domain.ProcessError{Stage: "render", Err: errors.New("no pages produced")}
	}
	return images, nil
}

// embedAndAppend embeds rendered pages and appends vectors and references
// to the index in one step. No partial vectors are ever added: Add is only
// called once embedding has fully succeeded for all pages.
func (o *IngestOrchestrator) embedAndAppend(ctx context.Context, docID string, images []string) (int, error) {
	vectors, err := o.embedder.EmbedImages(ctx, images)
	if err != nil {
		return 0, &domain.ProcessError{Stage: "embed", Err: err}
	}

	if err := o.index.Add(vectors, pageRefs(docID, images)); err != nil {
		return 0, err
	}
	if err := o.index.Persist(); err != nil {
		return 0, fmt.Errorf("persist index: %w", err)
	}
	return len(images), nil
}

// pageRefs builds references in render order, 1-based.
func pageRefs(docID string, images []string) []domain.PageRef {
	refs := make([]domain.PageRef, len(images))
	for i, img := range images {
		refs[i] = domain.PageRef{DocID: docID, PageNum: i + 1, ImagePath: img}
	}
	return refs
}
