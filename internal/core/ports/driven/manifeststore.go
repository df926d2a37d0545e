package driven

import (
	"context"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
)

// ManifestStore persists per-document manifests.
// Backed by SQLite for metadata storage.
type ManifestStore interface {
	// Load retrieves the manifest for a document.
	// Returns domain.ErrNotFound when no record exists; absence is a
	// first-class outcome distinguishing "new document" from "known
	// document". A store that detects a corrupt record treats it as
	// absent and logs the anomaly rather than surfacing a parse failure.
	Load(ctx context.Context, docID string) (*domain.Manifest, error)

	// Save stores or updates a manifest atomically: either the full
	// manifest is durably written or the previous state is observed on
	// the next Load.
	Save(ctx context.Context, m *domain.Manifest) error

	// List returns all known manifests, ordered by document identifier.
	List(ctx context.Context) ([]domain.Manifest, error)

	// MarkAllUnindexed clears the indexed flag and timestamp on every
	// manifest. Used by index reset.
	MarkAllUnindexed(ctx context.Context) error
}
