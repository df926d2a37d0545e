package driven

// DocumentStore persists original document bytes and rendered page images
// in a per-document layout keyed by identifier.
type DocumentStore interface {
	// SaveSource writes the original bytes for a document. Content is
	// immutable once written: re-saving an existing identifier is a no-op.
	SaveSource(docID string, data []byte) error

	// HasSource reports whether the original bytes are on disk.
	HasSource(docID string) bool

	// SourcePath returns the path to the stored original document.
	SourcePath(docID string) string

	// StagingDir returns a fresh directory for an in-flight render, to be
	// published with PublishPages once rendering fully succeeds.
	StagingDir(docID string) (string, error)

	// PublishPages atomically moves a completed staging directory into
	// place as the pages directory.
	PublishPages(docID, stagingDir string) error

	// ListPages returns the rendered page image paths in page order, or
	// an empty slice when the document has not been rendered.
	ListPages(docID string) ([]string, error)
}
