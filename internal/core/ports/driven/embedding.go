package driven

import "context"

// EmbeddingService generates unit-normalized vector embeddings for page
// images and query text in a shared embedding space.
//
// Note: this is separate from PageIndex, which stores and searches
// vectors. EmbeddingService generates them.
type EmbeddingService interface {
	// EmbedImages embeds page images in order, one vector per image,
	// batching internally as the model requires.
	EmbedImages(ctx context.Context, imagePaths []string) ([][]float32, error)

	// EmbedText embeds a query string into the same space and dimension
	// as page vectors.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size. This is fixed by the
	// model and must match the PageIndex configuration.
	Dimensions() int

	// ModelName returns the embedder identity recorded on manifests.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	// Used at startup to fail fast.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
