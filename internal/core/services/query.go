package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/docsight-labs/docsight-cli/internal/core/domain"
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driving"
	"github.com/docsight-labs/docsight-cli/internal/logger"
)

// NoDocumentsAnswer is returned when Chat is called on an empty index.
// No embedding or search call is made in that case.
const NoDocumentsAnswer = "No documents indexed yet. Please upload a PDF first."

// QueryOrchestrator answers a question by embedding it, searching the
// index, resolving evidence references and delegating to the answer
// generator.
type QueryOrchestrator struct {
	index    driven.PageIndex
	embedder driven.EmbeddingService
	answerer driven.AnswerService
}

// NewQueryOrchestrator creates a query orchestrator.
func NewQueryOrchestrator(
	index driven.PageIndex,
	embedder driven.EmbeddingService,
	answerer driven.AnswerService,
) *QueryOrchestrator {
	return &QueryOrchestrator{
		index:    index,
		embedder: embedder,
		answerer: answerer,
	}
}

// Chat answers a question from the topK most relevant pages.
func (o *QueryOrchestrator) Chat(ctx context.Context, question string, topK int) (domain.ChatResult, error) {
	logger.Section("Chat")

	question = strings.TrimSpace(question)
	if question == "" {
		return domain.ChatResult{}, fmt.Errorf("%w: question must not be empty", domain.ErrInvalidInput)
	}
	topK = clampTopK(topK)
	logger.Debug("Question: %q, topK=%d", question, topK)

	if o.index.Size() == 0 {
		logger.Debug("Index empty, short-circuiting")
		return domain.ChatResult{Answer: NoDocumentsAnswer, Evidence: []domain.Evidence{}}, nil
	}

	query, err := o.embedder.EmbedText(ctx, question)
	if err != nil {
		return domain.ChatResult{}, &domain.ProcessError{Stage: "embed", Err: err}
	}

	hits, err := o.index.Search(query, topK)
	if err != nil {
		return domain.ChatResult{}, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Search: %d hits", len(hits))

	evidence := make([]domain.Evidence, len(hits))
	images := make([]string, len(hits))
	for i, hit := range hits {
		evidence[i] = domain.Evidence{
			DocID:     hit.Ref.DocID,
			PageNum:   hit.Ref.PageNum,
			ImagePath: hit.Ref.ImagePath,
			Score:     hit.Score,
		}
		images[i] = hit.Ref.ImagePath
	}

	answer, err := o.answerer.Answer(ctx, question, images)
	if err != nil {
		return domain.ChatResult{}, &domain.ProcessError{Stage: "answer", Err: err}
	}

	return domain.ChatResult{Answer: answer, Evidence: evidence}, nil
}

// clampTopK applies the default and range of the chat contract.
func clampTopK(k int) int {
	switch {
	case k <= 0:
		return driving.DefaultTopK
	case k > driving.MaxTopK:
		return driving.MaxTopK
	default:
		return k
	}
}
