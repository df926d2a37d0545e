package driving

import (
	"context"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
)

// Default and maximum evidence counts for Chat.
const (
	DefaultTopK = 3
	MaxTopK     = 10
)

// PipelineService is the full surface the transport layers consume. It is
// implemented by the pipeline facade, the process-lifetime owner of the
// manifest store and the vector index.
type PipelineService interface {
	// Ingest processes an uploaded document: identify, validate, render,
	// embed, index, commit. Re-submitting byte-identical content is a
	// no-op beyond the manifest lookup and reports IsNew=false.
	Ingest(ctx context.Context, data []byte, filename string) (domain.IngestResult, error)

	// Chat answers a question from the most relevant indexed pages.
	// topK is clamped to [1, MaxTopK]; values <= 0 use DefaultTopK.
	Chat(ctx context.Context, question string, topK int) (domain.ChatResult, error)

	// Health reports liveness and the indexed page count.
	Health(ctx context.Context) domain.HealthInfo

	// Stats reflects internal state read-only for observability.
	Stats(ctx context.Context) (domain.Stats, error)

	// ListDocuments returns every known manifest.
	ListDocuments(ctx context.Context) ([]domain.Manifest, error)

	// ResetIndex clears the vector index, persists the empty state and
	// marks every manifest unindexed. Documents and rendered pages are
	// untouched.
	ResetIndex(ctx context.Context) error

	// RebuildAll deterministically rebuilds the index from stored source
	// documents. This is the only sanctioned recovery for index/manifest
	// divergence; it never attempts partial repair.
	RebuildAll(ctx context.Context) (domain.RebuildResult, error)

	// Ping verifies external collaborators are reachable. Long-running
	// transports call it at startup to fail fast.
	Ping(ctx context.Context) error
}
