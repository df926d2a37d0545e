package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
)

// mockManifestStore is an in-memory manifest store with call counters.
type mockManifestStore struct {
	manifests map[string]*domain.Manifest
	saveCalls int
	loadErr   error
	saveErr   error
}

func newMockManifestStore() *mockManifestStore {
	return &mockManifestStore{manifests: make(map[string]*domain.Manifest)}
}

func (m *mockManifestStore) Load(_ context.Context, docID string) (*domain.Manifest, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	manifest, ok := m.manifests[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *manifest
	return &copied, nil
}

func (m *mockManifestStore) Save(_ context.Context, manifest *domain.Manifest) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := *manifest
	m.manifests[manifest.DocID] = &copied
	return nil
}

func (m *mockManifestStore) List(_ context.Context) ([]domain.Manifest, error) {
	ids := make([]string, 0, len(m.manifests))
	for id := range m.manifests {
		ids = append(ids, id)
	}
	// Ordered by identifier, matching the store contract.
	sort.Strings(ids)
	list := make([]domain.Manifest, len(ids))
	for i, id := range ids {
		list[i] = *m.manifests[id]
	}
	return list, nil
}

func (m *mockManifestStore) MarkAllUnindexed(_ context.Context) error {
	for _, manifest := range m.manifests {
		manifest.Indexed = false
		manifest.IndexedAt = nil
	}
	return nil
}

// mockDocStore tracks sources and published pages in memory. Rendered
// pages land in rendered and become visible through ListPages only once
// published, mirroring the staging semantics of the files adapter.
type mockDocStore struct {
	sources   map[string][]byte
	pages     map[string][]string
	rendered  map[string][]string
	saveCalls int
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{
		sources:  make(map[string][]byte),
		pages:    make(map[string][]string),
		rendered: make(map[string][]string),
	}
}

func (m *mockDocStore) SaveSource(docID string, data []byte) error {
	m.saveCalls++
	if _, ok := m.sources[docID]; ok {
		return nil
	}
	m.sources[docID] = data
	return nil
}

func (m *mockDocStore) HasSource(docID string) bool {
	_, ok := m.sources[docID]
	return ok
}

func (m *mockDocStore) SourcePath(docID string) string {
	return filepath.Join("docs", docID, "original.pdf")
}

func (m *mockDocStore) StagingDir(docID string) (string, error) {
	return filepath.Join("docs", docID, "pages.staging"), nil
}

func (m *mockDocStore) PublishPages(docID, _ string) error {
	if _, ok := m.pages[docID]; ok {
		return nil
	}
	m.pages[docID] = m.rendered[docID]
	return nil
}

func (m *mockDocStore) ListPages(docID string) ([]string, error) {
	return m.pages[docID], nil
}

// mockRasterizer produces a fixed number of synthetic page paths.
type mockRasterizer struct {
	docs           *mockDocStore
	pageCount      int
	preflightErr   error
	renderErr      error
	preflightCalls int
	renderCalls    int
}

func (m *mockRasterizer) Preflight(_ []byte) (int, error) {
	m.preflightCalls++
	if m.preflightErr != nil {
		return 0, m.preflightErr
	}
	return m.pageCount, nil
}

func (m *mockRasterizer) Render(_ context.Context, sourcePath, outDir string, _ int) ([]string, error) {
	m.renderCalls++
	if m.renderErr != nil {
		return nil, m.renderErr
	}
	paths := make([]string, m.pageCount)
	for i := range paths {
		paths[i] = filepath.Join(outDir, fmt.Sprintf("page_%04d.png", i+1))
	}
	// Mirror the files adapter: rendered pages become visible on publish.
	docID := filepath.Base(filepath.Dir(sourcePath))
	m.docs.rendered[docID] = paths
	return paths, nil
}

// mockEmbedder returns fixed unit vectors and counts calls.
type mockEmbedder struct {
	dim        int
	model      string
	imageErr   error
	textErr    error
	imageCalls int
	textCalls  int
}

func (m *mockEmbedder) EmbedImages(_ context.Context, imagePaths []string) ([][]float32, error) {
	m.imageCalls++
	if m.imageErr != nil {
		return nil, m.imageErr
	}
	vectors := make([][]float32, len(imagePaths))
	for i := range vectors {
		v := make([]float32, m.dim)
		v[i%m.dim] = 1
		vectors[i] = v
	}
	return vectors, nil
}

func (m *mockEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	m.textCalls++
	if m.textErr != nil {
		return nil, m.textErr
	}
	v := make([]float32, m.dim)
	v[0] = 1
	return v, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dim }
func (m *mockEmbedder) ModelName() string            { return m.model }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockAnswerer echoes how many evidence images it received.
type mockAnswerer struct {
	err   error
	calls int
}

func (m *mockAnswerer) Answer(_ context.Context, question string, evidenceImages []string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("answer to %q from %d pages", question, len(evidenceImages)), nil
}

func (m *mockAnswerer) ModelName() string            { return "mock-answerer" }
func (m *mockAnswerer) Ping(_ context.Context) error { return nil }
func (m *mockAnswerer) Close() error                 { return nil }
