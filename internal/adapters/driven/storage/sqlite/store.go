package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docsight-labs/docsight-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/docsight-labs/docsight-cli/internal/core/domain"
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-labs/docsight-cli/internal/logger"
)

// Store is the SQLite-backed metadata storage.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ManifestStore returns a ManifestStore interface backed by this store.
func (s *Store) ManifestStore() driven.ManifestStore {
	return &manifestStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Manifest Store ====================

// manifestStore implements driven.ManifestStore.
type manifestStore struct {
	store *Store
}

var _ driven.ManifestStore = (*manifestStore)(nil)

// Load retrieves the manifest for a document. A record that fails
// integrity checks is treated as absent and logged, never surfaced as a
// valid manifest.
func (s *manifestStore) Load(ctx context.Context, docID string) (*domain.Manifest, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT doc_id, filename, num_pages, indexed, created_at, indexed_at,
		       sha256, index_backend, embedder_id
		FROM manifests WHERE doc_id = ?
	`, docID)

	m, err := scanManifest(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if !manifestValid(m) {
		logger.Warn("Manifest %s failed integrity check, treating as absent", docID)
		return nil, domain.ErrNotFound
	}

	return m, nil
}

// Save stores or updates a manifest atomically via upsert.
func (s *manifestStore) Save(ctx context.Context, m *domain.Manifest) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	var indexedAt any
	if m.IndexedAt != nil {
		indexedAt = m.IndexedAt.UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO manifests (doc_id, filename, num_pages, indexed, created_at,
		                       indexed_at, sha256, index_backend, embedder_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			filename = excluded.filename,
			num_pages = excluded.num_pages,
			indexed = excluded.indexed,
			indexed_at = excluded.indexed_at,
			sha256 = excluded.sha256,
			index_backend = excluded.index_backend,
			embedder_id = excluded.embedder_id
	`, m.DocID, m.Filename, m.NumPages, m.Indexed, m.CreatedAt.UTC(),
		indexedAt, m.SHA256, m.IndexBackend, m.EmbedderID)

	if err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}
	return nil
}

// List returns all manifests ordered by document identifier.
func (s *manifestStore) List(ctx context.Context) ([]domain.Manifest, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT doc_id, filename, num_pages, indexed, created_at, indexed_at,
		       sha256, index_backend, embedder_id
		FROM manifests ORDER BY doc_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying manifests: %w", err)
	}
	defer rows.Close()

	var manifests []domain.Manifest //nolint:prealloc // size unknown from query
	for rows.Next() {
		m, err := scanManifestRows(rows)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating manifests: %w", err)
	}

	return manifests, nil
}

// MarkAllUnindexed clears the indexed flag and timestamp on every manifest.
func (s *manifestStore) MarkAllUnindexed(ctx context.Context) error {
	_, err := s.store.db.ExecContext(ctx,
		"UPDATE manifests SET indexed = 0, indexed_at = NULL")
	if err != nil {
		return fmt.Errorf("marking manifests unindexed: %w", err)
	}
	return nil
}

// manifestValid checks the invariants a trustworthy record must satisfy.
// An indexed manifest without a full content hash or page count cannot be
// believed, because the idempotency check would then skip re-processing a
// document the index may not actually hold.
func manifestValid(m *domain.Manifest) bool {
	if len(m.DocID) != domain.DocIDLen {
		return false
	}
	if m.Indexed && (len(m.SHA256) != 64 || m.NumPages <= 0 || m.EmbedderID == "") {
		return false
	}
	return true
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanManifest(row *sql.Row) (*domain.Manifest, error) {
	m, err := scanManifestFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func scanManifestRows(rows *sql.Rows) (*domain.Manifest, error) {
	return scanManifestFrom(rows)
}

func scanManifestFrom(scanner rowScanner) (*domain.Manifest, error) {
	var m domain.Manifest
	var createdAt sql.NullTime
	var indexedAt sql.NullTime

	if err := scanner.Scan(&m.DocID, &m.Filename, &m.NumPages, &m.Indexed,
		&createdAt, &indexedAt, &m.SHA256, &m.IndexBackend, &m.EmbedderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning manifest: %w", err)
	}

	if createdAt.Valid {
		m.CreatedAt = createdAt.Time
	}
	if indexedAt.Valid {
		t := indexedAt.Time
		m.IndexedAt = &t
	}

	return &m, nil
}
