// Package clipd provides an embedding service adapter for a CLIP
// inference server that embeds images and text into a shared space.
package clipd

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:8192"
	DefaultModel      = "clip-vit-base-patch32"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 512 // clip-vit-base-patch32 default
	DefaultRPS        = 4   // requests per second against the server

	// imageBatchSize caps how many images go into one request body;
	// base64-encoded pages are large.
	imageBatchSize = 16
)

// Config holds configuration for the CLIP embedding service.
type Config struct {
	// BaseURL is the CLIP server base URL (default: http://localhost:8192).
	BaseURL string

	// Model is the embedding model to use (default: clip-vit-base-patch32).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int

	// RPS throttles requests to the server (default: 4/s).
	RPS float64
}

// EmbeddingService generates embeddings using a CLIP inference server.
type EmbeddingService struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	model      string
	dimensions int
}

// embedImagesRequest is the /embed/images request format.
type embedImagesRequest struct {
	Model  string   `json:"model"`
	Images []string `json:"images"` // base64-encoded PNG bytes
}

// embedTextRequest is the /embed/text request format.
type embedTextRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// embedResponse is the response format for both endpoints.
type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// NewEmbeddingService creates a new CLIP embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.RPS == 0 {
		cfg.RPS = DefaultRPS
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// EmbedImages embeds page images in order, one unit vector per image.
func (s *EmbeddingService) EmbedImages(ctx context.Context, imagePaths []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(imagePaths))

	for start := 0; start < len(imagePaths); start += imageBatchSize {
		end := start + imageBatchSize
		if end > len(imagePaths) {
			end = len(imagePaths)
		}

		batch, err := s.embedImageBatch(ctx, imagePaths[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed images %d-%d: %w", start, end-1, err)
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// embedImageBatch sends one batch of images to the server.
func (s *EmbeddingService) embedImageBatch(ctx context.Context, imagePaths []string) ([][]float32, error) {
	encoded := make([]string, len(imagePaths))
	for i, path := range imagePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		encoded[i] = base64.StdEncoding.EncodeToString(data)
	}

	resp, err := s.post(ctx, "/embed/images", embedImagesRequest{
		Model:  s.model,
		Images: encoded,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(imagePaths) {
		return nil, fmt.Errorf("%w: server returned %d embeddings for %d images",
			domain.ErrLengthMismatch, len(resp.Embeddings), len(imagePaths))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		v, err := s.toUnitVector(emb)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

// EmbedText embeds a query string into the same space as page vectors.
func (s *EmbeddingService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.post(ctx, "/embed/text", embedTextRequest{
		Model: s.model,
		Text:  text,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != 1 {
		return nil, fmt.Errorf("clipd: server returned %d embeddings for one text", len(resp.Embeddings))
	}

	return s.toUnitVector(resp.Embeddings[0])
}

// post sends one rate-limited JSON request and decodes the response.
func (s *EmbeddingService) post(ctx context.Context, path string, body any) (*embedResponse, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+path,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("clipd error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("clipd error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if embedResp.Error != "" {
		return nil, fmt.Errorf("clipd error: %s", embedResp.Error)
	}

	return &embedResp, nil
}

// toUnitVector converts a server embedding to float32 and L2-normalizes
// it so inner-product search behaves as cosine similarity.
func (s *EmbeddingService) toUnitVector(emb []float64) ([]float32, error) {
	if len(emb) != s.dimensions {
		return nil, fmt.Errorf("%w: server returned %d dimensions, expected %d",
			domain.ErrDimensionMismatch, len(emb), s.dimensions)
	}

	var norm float64
	for _, v := range emb {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, fmt.Errorf("clipd: server returned a zero vector")
	}

	vector := make([]float32, len(emb))
	for i, v := range emb {
		vector[i] = float32(v / norm)
	}
	return vector, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the server is reachable by checking the /health endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("clipd: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("clipd: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("clipd: server returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("clipd: server returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
