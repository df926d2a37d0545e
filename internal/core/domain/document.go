package domain

import "time"

// Manifest is the durable per-document record of ingestion state.
// It is created on first upload and rewritten only at the commit point of
// ingestion, after every page vector has been added to the index. The
// manifest is therefore the "done" marker: Indexed is true only when the
// index holds one vector per page under the recorded embedder identity.
type Manifest struct {
	// DocID is the content-derived document identifier (primary key).
	DocID string

	// Filename is the original upload filename, kept for display only.
	// It never participates in identity.
	Filename string

	// NumPages is the rendered page count.
	NumPages int

	// Indexed reports whether every page of this document has a vector in
	// the index at the recorded embedder identity.
	Indexed bool

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// IndexedAt is when indexing last completed. Nil when never indexed
	// or after an index reset.
	IndexedAt *time.Time

	// SHA256 is the full content hash, kept for verification.
	SHA256 string

	// IndexBackend identifies the vector index implementation the vectors
	// were added to.
	IndexBackend string

	// EmbedderID identifies the embedding model that produced the vectors.
	EmbedderID string
}

// PageRef correlates one stored vector with one rendered page of one
// document. The Nth vector in the index corresponds to the Nth PageRef.
type PageRef struct {
	// DocID is the owning document identifier.
	DocID string `json:"doc_id"`

	// PageNum is the 1-based page number.
	PageNum int `json:"page_num"`

	// ImagePath locates the rendered page image.
	ImagePath string `json:"image_path"`
}

// Evidence is a retrieved page with its similarity score, as returned to
// the caller of Chat.
type Evidence struct {
	DocID     string  `json:"doc_id"`
	PageNum   int     `json:"page_num"`
	ImagePath string  `json:"image_path"`
	Score     float64 `json:"score"`
}

// IngestResult reports the outcome of ingesting one document.
type IngestResult struct {
	DocID    string `json:"doc_id"`
	NumPages int    `json:"num_pages"`
	IsNew    bool   `json:"is_new"`
}

// ChatResult is the answer to a question plus the evidence it was
// generated from, ordered by descending similarity.
type ChatResult struct {
	Answer   string     `json:"answer"`
	Evidence []Evidence `json:"evidence"`
}

// RebuildResult reports aggregate counts for a full index rebuild.
type RebuildResult struct {
	Docs    int           `json:"docs"`
	Pages   int           `json:"pages"`
	Elapsed time.Duration `json:"elapsed"`
}

// HealthInfo is a read-only liveness snapshot.
type HealthInfo struct {
	OK           bool `json:"ok"`
	IndexedPages int  `json:"indexed_pages"`
}

// Limits holds the configured ingestion limits.
type Limits struct {
	// MaxPages is the maximum rendered page count per document.
	MaxPages int `json:"max_pages"`

	// MaxFileBytes is the maximum upload size in bytes.
	MaxFileBytes int64 `json:"max_file_bytes"`

	// DPI is the page render resolution.
	DPI int `json:"dpi"`
}

// Stats is a read-only reflection of pipeline state for observability.
type Stats struct {
	DocCount     int    `json:"doc_count"`
	IndexedPages int    `json:"indexed_pages"`
	EmbedDim     int    `json:"embed_dim"`
	EmbedderID   string `json:"embedder_id"`
	IndexBackend string `json:"index_backend"`
	IndexType    string `json:"index_type"`
	Limits       Limits `json:"limits"`
}
