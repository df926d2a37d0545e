package sqlite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

func testManifest(docID string) *domain.Manifest {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Manifest{
		DocID:        docID,
		Filename:     "report.pdf",
		NumPages:     3,
		Indexed:      true,
		CreatedAt:    now,
		IndexedAt:    &now,
		SHA256:       strings.Repeat("ab", 32),
		IndexBackend: "flat",
		EmbedderID:   "clip-vit-base-patch32",
	}
}

func TestManifestStore_SaveAndLoad(t *testing.T) {
	store := setupTestStore(t)
	manifests := store.ManifestStore()
	ctx := context.Background()

	m := testManifest("0123456789abcdef")
	require.NoError(t, manifests.Save(ctx, m))

	got, err := manifests.Load(ctx, m.DocID)
	require.NoError(t, err)
	assert.Equal(t, m.DocID, got.DocID)
	assert.Equal(t, m.Filename, got.Filename)
	assert.Equal(t, m.NumPages, got.NumPages)
	assert.True(t, got.Indexed)
	assert.Equal(t, m.SHA256, got.SHA256)
	assert.Equal(t, m.IndexBackend, got.IndexBackend)
	assert.Equal(t, m.EmbedderID, got.EmbedderID)
	require.NotNil(t, got.IndexedAt)
}

func TestManifestStore_LoadAbsent(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.ManifestStore().Load(context.Background(), "feedfacefeedface")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManifestStore_SaveIsUpsert(t *testing.T) {
	store := setupTestStore(t)
	manifests := store.ManifestStore()
	ctx := context.Background()

	m := testManifest("0123456789abcdef")
	require.NoError(t, manifests.Save(ctx, m))

	m.NumPages = 7
	m.Indexed = false
	m.IndexedAt = nil
	require.NoError(t, manifests.Save(ctx, m))

	got, err := manifests.Load(ctx, m.DocID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.NumPages)
	assert.False(t, got.Indexed)
	assert.Nil(t, got.IndexedAt)
}

func TestManifestStore_ListOrdered(t *testing.T) {
	store := setupTestStore(t)
	manifests := store.ManifestStore()
	ctx := context.Background()

	for _, id := range []string{"ffffffffffffffff", "0000000000000000", "8888888888888888"} {
		m := testManifest(id)
		require.NoError(t, manifests.Save(ctx, m))
	}

	list, err := manifests.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "0000000000000000", list[0].DocID)
	assert.Equal(t, "8888888888888888", list[1].DocID)
	assert.Equal(t, "ffffffffffffffff", list[2].DocID)
}

func TestManifestStore_MarkAllUnindexed(t *testing.T) {
	store := setupTestStore(t)
	manifests := store.ManifestStore()
	ctx := context.Background()

	require.NoError(t, manifests.Save(ctx, testManifest("0123456789abcdef")))
	require.NoError(t, manifests.Save(ctx, testManifest("fedcba9876543210")))

	require.NoError(t, manifests.MarkAllUnindexed(ctx))

	list, err := manifests.List(ctx)
	require.NoError(t, err)
	for _, m := range list {
		assert.False(t, m.Indexed)
		assert.Nil(t, m.IndexedAt)
	}
}

func TestManifestStore_CorruptRecordTreatedAsAbsent(t *testing.T) {
	store := setupTestStore(t)
	manifests := store.ManifestStore()
	ctx := context.Background()

	m := testManifest("0123456789abcdef")
	require.NoError(t, manifests.Save(ctx, m))

	// Truncate the stored content hash behind the store's back. An
	// indexed manifest without a full hash must not be believed.
	_, err := store.db.Exec("UPDATE manifests SET sha256 = 'deadbeef' WHERE doc_id = ?", m.DocID)
	require.NoError(t, err)

	_, err = manifests.Load(ctx, m.DocID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Re-opening the same directory must not re-apply migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}
