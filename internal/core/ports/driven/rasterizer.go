package driven

import "context"

// Rasterizer renders document pages to images. This is an external
// collaborator; its failures surface as processing errors.
type Rasterizer interface {
	// Preflight validates the document structure and returns its page
	// count without rendering. Malformed content yields
	// domain.ErrUnsupportedType.
	Preflight(data []byte) (int, error)

	// Render produces one ordered image per page at the given resolution,
	// named with 1-based zero-padded page numbers for deterministic
	// ordering, and returns the image paths in page order.
	Render(ctx context.Context, sourcePath, outDir string, dpi int) ([]string, error)
}
