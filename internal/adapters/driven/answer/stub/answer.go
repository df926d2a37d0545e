// Package stub provides a deterministic answer service. It needs no
// network or API key, which makes it the default backend and the
// backstop when a remote vision model is unavailable.
package stub

import (
	"context"
	"fmt"
	"strings"

	"github.com/docsight-labs/docsight-cli/internal/core/ports/driven"
)

// Ensure AnswerService implements the interface.
var _ driven.AnswerService = (*AnswerService)(nil)

// Name identifies the stub backend.
const Name = "stub"

// AnswerService produces placeholder answers that name the retrieved
// evidence without interpreting it.
type AnswerService struct{}

// NewAnswerService creates a stub answer service.
func NewAnswerService() *AnswerService {
	return &AnswerService{}
}

// Answer returns a deterministic response listing the evidence pages.
// The retrieval result stands on its own; the text only frames it.
func (s *AnswerService) Answer(_ context.Context, question string, evidenceImages []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Retrieved %d page(s) relevant to: %s\n", len(evidenceImages), question)
	b.WriteString("No vision model is configured, so the pages are returned as evidence without a generated answer.\n")
	b.WriteString("Configure an answer provider to get grounded responses.")
	return b.String(), nil
}

// ModelName returns the stub backend identifier.
func (s *AnswerService) ModelName() string {
	return Name
}

// Ping always succeeds; there is nothing to reach.
func (s *AnswerService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *AnswerService) Close() error {
	return nil
}
