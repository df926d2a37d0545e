package driven

import "github.com/docsight-labs/docsight-cli/internal/core/domain"

// PageIndex stores unit-normalized page vectors alongside their page
// references and supports exact similarity search. The contract allows an
// approximate backend to be substituted later without changing Search.
//
// Implementations must make Add appear atomic to concurrent Search calls.
// Mutations themselves are serialized by the pipeline facade.
type PageIndex interface {
	// Add appends vectors and references in matching order. It validates
	// that both sequences have equal length (domain.ErrLengthMismatch)
	// and that every vector matches the index's fixed dimension
	// (domain.ErrDimensionMismatch). It never reorders and never
	// deduplicates; deduplication is an ingestion-level concern.
	Add(vectors [][]float32, refs []domain.PageRef) error

	// Search returns the min(k, Size()) references most similar to the
	// query by inner product, sorted by strictly descending score with
	// ties broken by insertion order. An empty index returns an empty
	// slice, never an error.
	Search(query []float32, k int) ([]PageHit, error)

	// Persist writes the full vector+reference state to durable storage
	// as a single logical unit.
	Persist() error

	// Restore loads persisted state. Missing state restores to an empty
	// index; a vector/reference length divergence fails closed with
	// domain.ErrIndexCorrupt and leaves the index empty.
	Restore() error

	// Reset clears the index and persists the empty state.
	Reset() error

	// Size returns the current vector count.
	Size() int

	// Dim returns the fixed vector dimension.
	Dim() int
}

// PageHit is a similarity search result.
type PageHit struct {
	// Ref is the matched page.
	Ref domain.PageRef

	// Score is the inner product with the query, which equals cosine
	// similarity under the unit-normalization invariant.
	Score float64
}
