// Package ask answers one normalized question: retrieve context chunks from
// the managed corpus, deduplicate the cited sources, and synthesize a
// natural-language answer, falling back to the best retrieved passage when
// synthesis fails. Everything here lives for a single request; no state
// crosses requests.
package ask

import (
	"context"

	"github.com/istock-app/istock-rag/pkg/adapter"
	"github.com/istock-app/istock-rag/pkg/model"
	"github.com/istock-app/istock-rag/pkg/utils/logging"
)

// defaultAnswerText is returned when neither synthesis nor the fallback
// truncation could produce anything.
const defaultAnswerText = "No response could be generated. Please try rephrasing your question."

type UseCase struct {
	engine adapter.RAGEngine
	gemini adapter.Gemini
}

func New(engine adapter.RAGEngine, gemini adapter.Gemini) *UseCase {
	return &UseCase{
		engine: engine,
		gemini: gemini,
	}
}

// Handle runs the full flow for one query. Retrieval failures propagate
// (already tagged by the adapter); synthesis failures never do, since they
// are recovered locally by the truncation fallback.
func (u *UseCase) Handle(ctx context.Context, query *model.Query) (*model.Answer, error) {
	payload, err := u.engine.RetrieveContexts(ctx, query.Prompt)
	if err != nil {
		return nil, err
	}

	records, scores := extractContexts(payload)
	texts := contextTexts(records, maxSynthesisContexts)

	answer := &model.Answer{
		Text:       defaultAnswerText,
		Sources:    dedupeSources(records),
		Confidence: confidence(scores),
	}

	if len(texts) == 0 {
		// Nothing usable was retrieved: skip synthesis entirely. Some service
		// versions still carry a pre-rendered answer at the top level.
		if flat := flattenedAnswer(payload); flat != "" {
			answer.Text = flat
		}
		return answer, nil
	}

	text, err := u.synthesize(ctx, query, texts)
	if err != nil {
		logging.From(ctx).Warn("answer synthesis failed, falling back to best context", "error", err)
		text = fallbackAnswer(texts)
	}
	answer.Text = text

	return answer, nil
}

// confidence picks the best retrieval score, clamped to [0,1], or the default
// when the payload carried no usable score.
func confidence(scores []float64) float64 {
	if len(scores) == 0 {
		return model.DefaultConfidence
	}
	c := scores[0]
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
