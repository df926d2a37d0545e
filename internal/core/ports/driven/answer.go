package driven

import "context"

// AnswerService generates an answer to a question from retrieved page
// images. Implementations may be a vision model or a deterministic stub;
// the orchestrator is agnostic to which is wired in.
type AnswerService interface {
	// Answer generates a response grounded in the ordered evidence
	// images. Failures are processing errors; the configured fallback
	// policy decides whether the query degrades instead of failing.
	Answer(ctx context.Context, question string, evidenceImages []string) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
