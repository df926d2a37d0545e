// Package answer composes answer backends. The fallback wrapper keeps
// queries serviceable when the primary vision model fails: retrieval
// evidence is already in hand by the time generation runs, so a degraded
// answer is better than a failed query.
package answer

import (
	"context"

	"github.com/docsight-labs/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-labs/docsight-cli/internal/logger"
)

// Ensure Fallback implements the interface.
var _ driven.AnswerService = (*Fallback)(nil)

// Fallback tries the primary answer service and degrades to the backstop
// when the primary fails.
type Fallback struct {
	primary  driven.AnswerService
	backstop driven.AnswerService
}

// NewFallback wraps a primary answer service with a backstop.
func NewFallback(primary, backstop driven.AnswerService) *Fallback {
	return &Fallback{primary: primary, backstop: backstop}
}

// Answer delegates to the primary and falls back on failure. A cancelled
// context is not retried against the backstop; the caller gave up.
func (f *Fallback) Answer(ctx context.Context, question string, evidenceImages []string) (string, error) {
	text, err := f.primary.Answer(ctx, question, evidenceImages)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", err
	}

	logger.Warn("Answer backend %s failed (%v), falling back to %s",
		f.primary.ModelName(), err, f.backstop.ModelName())
	return f.backstop.Answer(ctx, question, evidenceImages)
}

// ModelName reports the primary model; the backstop only shows up in logs.
func (f *Fallback) ModelName() string {
	return f.primary.ModelName()
}

// Ping checks the primary. The backstop needs no connectivity.
func (f *Fallback) Ping(ctx context.Context) error {
	return f.primary.Ping(ctx)
}

// Close releases both backends.
func (f *Fallback) Close() error {
	err := f.primary.Close()
	if cerr := f.backstop.Close(); err == nil {
		err = cerr
	}
	return err
}
