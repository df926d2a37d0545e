// Package flat provides an exact brute-force similarity index over
// unit-normalized page vectors. Scoring is the inner product, which equals
// cosine similarity under the normalization invariant. Exact search is
// intentional for the target scale of tens of thousands of vectors; an
// approximate backend can be substituted behind the same port.
package flat

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-labs/docsight-cli/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.PageIndex = (*Index)(nil)

// Identity strings recorded on manifests and reported by stats.
const (
	Backend   = "flat"
	IndexType = "flat-ip"
)

// On-disk artifact names. Vectors and references are persisted together
// as one logical unit under the index directory.
const (
	vectorsFile = "pages.vec"
	refsFile    = "pages.refs.json"
)

// Index stores vectors flattened into one contiguous float32 slice,
// parallel to an ordered reference slice. A RWMutex makes Add atomic to
// concurrent Search calls; mutation serialization is the facade's job.
type Index struct {
	mu      sync.RWMutex
	dir     string
	dim     int
	vectors []float32 // flattened, len == count*dim
	refs    []domain.PageRef
}

// New creates an index with a fixed dimension, persisted under dir.
func New(dir string, dim int) *Index {
	return &Index{dir: dir, dim: dim}
}

// Add appends vectors and references in matching order.
func (x *Index) Add(vectors [][]float32, refs []domain.PageRef) error {
	if len(vectors) != len(refs) {
		return fmt.Errorf("%w: %d vectors, %d references",
			domain.ErrLengthMismatch, len(vectors), len(refs))
	}
	for i, v := range vectors {
		if len(v) != x.dim {
			return fmt.Errorf("%w: vector %d has dimension %d, index expects %d",
				domain.ErrDimensionMismatch, i, len(v), x.dim)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	for _, v := range vectors {
		x.vectors = append(x.vectors, v...)
	}
	x.refs = append(x.refs, refs...)
	return nil
}

// Search scans every stored vector and returns the top k by inner
// product, descending, ties broken by insertion order.
func (x *Index) Search(query []float32, k int) ([]driven.PageHit, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			domain.ErrDimensionMismatch, len(query), x.dim)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	n := len(x.refs)
	if n == 0 || k <= 0 {
		return []driven.PageHit{}, nil
	}

	hits := make([]driven.PageHit, n)
	for i := 0; i < n; i++ {
		row := x.vectors[i*x.dim : (i+1)*x.dim]
		var score float64
		for j, q := range query {
			score += float64(q) * float64(row[j])
		}
		hits[i] = driven.PageHit{Ref: x.refs[i], Score: score}
	}

	// Stable sort keeps insertion order on equal scores, making results
	// deterministic.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < n {
		hits = hits[:k]
	}
	return hits, nil
}

// Persist writes the vector and reference state to disk as one logical
// unit, each file via temp-and-rename so a partial write is never read
// back as valid state.
func (x *Index) Persist() error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if err := os.MkdirAll(x.dir, 0700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	if err := x.writeVectors(); err != nil {
		return err
	}
	return x.writeRefs()
}

// Restore loads persisted state. Missing artifacts restore to an empty
// index; divergent vector/reference counts fail closed with
// domain.ErrIndexCorrupt and the index stays empty.
func (x *Index) Restore() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.vectors = nil
	x.refs = nil

	vecPath := filepath.Join(x.dir, vectorsFile)
	refPath := filepath.Join(x.dir, refsFile)

	vectors, dim, vecErr := readVectors(vecPath)
	refs, refErr := readRefs(refPath)

	if os.IsNotExist(vecErr) && os.IsNotExist(refErr) {
		return nil // nothing persisted yet
	}
	if os.IsNotExist(vecErr) != os.IsNotExist(refErr) {
		return fmt.Errorf("%w: one of %s/%s is missing", domain.ErrIndexCorrupt, vectorsFile, refsFile)
	}
	if vecErr != nil {
		return fmt.Errorf("reading vectors: %w", vecErr)
	}
	if refErr != nil {
		return fmt.Errorf("reading references: %w", refErr)
	}

	if dim != x.dim {
		return fmt.Errorf("%w: persisted dimension %d, index expects %d",
			domain.ErrIndexCorrupt, dim, x.dim)
	}
	if len(vectors)/x.dim != len(refs) {
		return fmt.Errorf("%w: %d vectors, %d references",
			domain.ErrIndexCorrupt, len(vectors)/x.dim, len(refs))
	}

	x.vectors = vectors
	x.refs = refs
	logger.Debug("Restored index: %d vectors, dimension %d", len(refs), dim)
	return nil
}

// Reset clears the index and persists the empty state.
func (x *Index) Reset() error {
	x.mu.Lock()
	x.vectors = nil
	x.refs = nil
	x.mu.Unlock()
	return x.Persist()
}

// Size returns the current vector count.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.refs)
}

// Dim returns the fixed vector dimension.
func (x *Index) Dim() int {
	return x.dim
}

// writeVectors persists the flattened vectors with a count+dim header,
// little-endian float32. Caller holds at least a read lock.
func (x *Index) writeVectors() error {
	buf := make([]byte, 8+len(x.vectors)*4)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(x.refs)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(x.dim))
	for i, v := range x.vectors {
		binary.LittleEndian.PutUint32(buf[8+i*4:], math.Float32bits(v))
	}
	return atomicWrite(filepath.Join(x.dir, vectorsFile), buf)
}

// writeRefs persists the reference sequence as JSON.
func (x *Index) writeRefs() error {
	data, err := json.MarshalIndent(x.refs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling references: %w", err)
	}
	return atomicWrite(filepath.Join(x.dir, refsFile), data)
}

func readVectors(path string) ([]float32, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	if len(data) < 8 {
		return nil, 0, fmt.Errorf("%w: vector file truncated", domain.ErrIndexCorrupt)
	}

	count := int(binary.LittleEndian.Uint32(data[0:4]))
	dim := int(binary.LittleEndian.Uint32(data[4:8]))
	if len(data) != 8+count*dim*4 {
		return nil, 0, fmt.Errorf("%w: vector file has %d bytes, header declares %d vectors of dimension %d",
			domain.ErrIndexCorrupt, len(data), count, dim)
	}

	vectors := make([]float32, count*dim)
	for i := range vectors {
		vectors[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[8+i*4:]))
	}
	return vectors, dim, nil
}

func readRefs(path string) ([]domain.PageRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var refs []domain.PageRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}
	return refs, nil
}

// atomicWrite writes data to a temp file in the target directory and
// renames it into place.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming %s into place: %w", filepath.Base(path), err)
	}
	return nil
}
