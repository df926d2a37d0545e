// Package files provides the on-disk document store: one directory per
// document holding the immutable original and its rendered page images.
//
// Layout under the data directory:
//
//	docs/<docID>/original.pdf
//	docs/<docID>/pages/page_0001.png ...
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/docsight-labs/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-labs/docsight-cli/internal/logger"
)

// Ensure DocStore implements the interface.
var _ driven.DocumentStore = (*DocStore)(nil)

const (
	sourceName = "original.pdf"
	pagesName  = "pages"
)

// DocStore stores documents under a root directory.
type DocStore struct {
	root string
}

// NewDocStore creates a document store rooted at dataDir/docs.
func NewDocStore(dataDir string) (*DocStore, error) {
	root := filepath.Join(dataDir, "docs")
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("creating docs directory: %w", err)
	}
	return &DocStore{root: root}, nil
}

// SaveSource writes the original bytes if not already present. Content is
// immutable once written; the write goes through a temp file and rename so
// a crash never leaves a partial source behind.
func (s *DocStore) SaveSource(docID string, data []byte) error {
	if s.HasSource(docID) {
		return nil
	}

	dir := s.docDir(docID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, sourceName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing source: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing source: %w", err)
	}
	if err := os.Rename(tmpName, s.SourcePath(docID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming source into place: %w", err)
	}

	logger.Debug("Saved source for %s (%d bytes)", docID, len(data))
	return nil
}

// HasSource reports whether the original bytes are on disk.
func (s *DocStore) HasSource(docID string) bool {
	_, err := os.Stat(s.SourcePath(docID))
	return err == nil
}

// SourcePath returns the path to the stored original document.
func (s *DocStore) SourcePath(docID string) string {
	return filepath.Join(s.docDir(docID), sourceName)
}

// PagesDir returns the directory holding the rendered page images.
func (s *DocStore) PagesDir(docID string) string {
	return filepath.Join(s.docDir(docID), pagesName)
}

// StagingDir creates a fresh directory for an in-flight render. The name
// is unique per attempt so a crashed render never pollutes a later one.
func (s *DocStore) StagingDir(docID string) (string, error) {
	dir := filepath.Join(s.docDir(docID), pagesName+".staging-"+uuid.New().String())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}
	return dir, nil
}

// PublishPages atomically moves a completed staging directory into place.
// If another render published first, the staging directory is discarded.
func (s *DocStore) PublishPages(docID, stagingDir string) error {
	target := s.PagesDir(docID)
	if _, err := os.Stat(target); err == nil {
		os.RemoveAll(stagingDir)
		return nil
	}

	if err := os.Rename(stagingDir, target); err != nil {
		return fmt.Errorf("publishing pages: %w", err)
	}
	return nil
}

// ListPages returns the rendered page image paths in page order. A
// missing pages directory is an empty result, not an error.
func (s *DocStore) ListPages(docID string) ([]string, error) {
	dir := s.PagesDir(docID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading pages directory: %w", err)
	}

	var pages []string //nolint:prealloc // non-page entries are skipped
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "page_") || !strings.HasSuffix(name, ".png") {
			continue
		}
		pages = append(pages, filepath.Join(dir, name))
	}

	// Zero-padded names make lexical order page order.
	sort.Strings(pages)
	return pages, nil
}

// docDir returns the root directory for a document.
func (s *DocStore) docDir(docID string) string {
	return filepath.Join(s.root, docID)
}
