package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight-labs/docsight-cli/internal/adapters/driven/index/flat"
	"github.com/docsight-labs/docsight-cli/internal/core/domain"
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driving"
)

// queryFixture wires a query orchestrator over a real index.
type queryFixture struct {
	orch     *QueryOrchestrator
	index    *flat.Index
	embedder *mockEmbedder
	answerer *mockAnswerer
}

func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()

	index := flat.New(t.TempDir(), 3)
	embedder := &mockEmbedder{dim: 3, model: "clip-test"}
	answerer := &mockAnswerer{}

	return &queryFixture{
		orch:     NewQueryOrchestrator(index, embedder, answerer),
		index:    index,
		embedder: embedder,
		answerer: answerer,
	}
}

// addPage inserts one vector with a synthetic reference.
func addPage(t *testing.T, index *flat.Index, docID string, pageNum int, vector []float32) {
	t.Helper()
	require.NoError(t, index.Add(
		[][]float32{vector},
		[]domain.PageRef{{DocID: docID, PageNum: pageNum, ImagePath: docID + "/page.png"}},
	))
}

func TestChat_EmptyQuestionRejected(t *testing.T) {
	f := newQueryFixture(t)

	_, err := f.orch.Chat(context.Background(), "   ", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChat_EmptyIndexShortCircuits(t *testing.T) {
	f := newQueryFixture(t)

	result, err := f.orch.Chat(context.Background(), "what is this", 3)
	require.NoError(t, err)

	assert.Equal(t, NoDocumentsAnswer, result.Answer)
	assert.NotNil(t, result.Evidence)
	assert.Empty(t, result.Evidence)
	assert.Equal(t, 0, f.embedder.textCalls, "empty index must not call the embedder")
	assert.Equal(t, 0, f.answerer.calls, "empty index must not call the answerer")
}

func TestChat_EvidenceOrderedByScore(t *testing.T) {
	f := newQueryFixture(t)

	// Query embedding is [1,0,0]; scores are 0.0, 1.0, 0.6.
	addPage(t, f.index, "cccccccccccccccc", 1, []float32{0, 1, 0})
	addPage(t, f.index, "aaaaaaaaaaaaaaaa", 2, []float32{1, 0, 0})
	addPage(t, f.index, "bbbbbbbbbbbbbbbb", 3, []float32{0.6, 0.8, 0})

	result, err := f.orch.Chat(context.Background(), "which page matches", 2)
	require.NoError(t, err)

	require.Len(t, result.Evidence, 2)
	assert.Equal(t, "aaaaaaaaaaaaaaaa", result.Evidence[0].DocID)
	assert.InDelta(t, 1.0, result.Evidence[0].Score, 1e-5)
	assert.Equal(t, "bbbbbbbbbbbbbbbb", result.Evidence[1].DocID)
	assert.InDelta(t, 0.6, result.Evidence[1].Score, 1e-5)

	assert.Contains(t, result.Answer, "2 pages", "answerer receives exactly the evidence images")
}

func TestChat_TopKClamping(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero uses default", 0, driving.DefaultTopK},
		{"negative uses default", -4, driving.DefaultTopK},
		{"in range passes through", 7, 7},
		{"above max is capped", 50, driving.MaxTopK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampTopK(tt.in))
		})
	}
}

func TestChat_EmbedFailure(t *testing.T) {
	f := newQueryFixture(t)
	addPage(t, f.index, "aaaaaaaaaaaaaaaa", 1, []float32{1, 0, 0})
	f.embedder.textErr = errors.New("connection refused")

	_, err := f.orch.Chat(context.Background(), "question", 3)

	var procErr *domain.ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "embed", procErr.Stage)
	assert.Equal(t, 0, f.answerer.calls)
}

func TestChat_AnswerFailure(t *testing.T) {
	f := newQueryFixture(t)
	addPage(t, f.index, "aaaaaaaaaaaaaaaa", 1, []float32{1, 0, 0})
	f.answerer.err = errors.New("model overloaded")

	_, err := f.orch.Chat(context.Background(), "question", 3)

	var procErr *domain.ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "answer", procErr.Stage)
}
