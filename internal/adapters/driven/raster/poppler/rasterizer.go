// Package poppler renders PDF pages to PNG images by shelling out to
// pdftoppm. Structural validation and page counting happen in-process via
// a pure Go PDF reader so malformed uploads are rejected before any
// rendering work starts.
package poppler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-labs/docsight-cli/internal/logger"
)

// Ensure Rasterizer implements the interface.
var _ driven.Rasterizer = (*Rasterizer)(nil)

// DefaultBinary is the poppler renderer executable.
const DefaultBinary = "pdftoppm"

// Rasterizer renders PDFs with pdftoppm.
type Rasterizer struct {
	binary string
}

// New creates a rasterizer. binary overrides the pdftoppm path; empty
// uses the default from PATH.
func New(binary string) *Rasterizer {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Rasterizer{binary: binary}
}

// Preflight validates the PDF structure and returns its page count
// without rendering.
func (r *Rasterizer) Preflight(data []byte) (pages int, err error) {
	// The PDF reader panics on some malformed inputs; a bad upload is a
	// validation error, not a crash.
	defer func() {
		if rec := recover(); rec != nil {
			pages = 0
			err = fmt.Errorf("%w: malformed PDF: %v", domain.ErrUnsupportedType, rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUnsupportedType, err)
	}

	n := reader.NumPage()
	if n <= 0 {
		return 0, fmt.Errorf("%w: document has no pages", domain.ErrUnsupportedType)
	}
	return n, nil
}

// Render produces one PNG per page at the given DPI, named
// page_0001.png onward in page order.
func (r *Rasterizer) Render(ctx context.Context, sourcePath, outDir string, dpi int) ([]string, error) {
	prefix := filepath.Join(outDir, "page")

	cmd := exec.CommandContext(ctx, r.binary,
		"-png", "-r", strconv.Itoa(dpi), sourcePath, prefix)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", r.binary, err, strings.TrimSpace(string(output)))
	}

	paths, err := r.collectPages(outDir)
	if err != nil {
		return nil, err
	}

	logger.Debug("Rendered %d pages at %d DPI", len(paths), dpi)
	return paths, nil
}

// collectPages renames pdftoppm's output (page-1.png, page-2.png, ...,
// padding dependent on page count) to the canonical zero-padded scheme
// and returns the paths in page order.
func (r *Rasterizer) collectPages(outDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(outDir, "page-*.png"))
	if err != nil {
		return nil, fmt.Errorf("globbing rendered pages: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("renderer produced no pages")
	}

	type rendered struct {
		num  int
		path string
	}
	pages := make([]rendered, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".png")
		numStr := strings.TrimPrefix(base, "page-")
		num, err := strconv.Atoi(numStr)
		if err != nil {
			continue // not a page image
		}
		pages = append(pages, rendered{num: num, path: m})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	paths := make([]string, len(pages))
	for i, p := range pages {
		canonical := filepath.Join(outDir, fmt.Sprintf("page_%04d.png", p.num))
		if err := os.Rename(p.path, canonical); err != nil {
			return nil, fmt.Errorf("renaming page %d: %w", p.num, err)
		}
		paths[i] = canonical
	}
	return paths, nil
}
