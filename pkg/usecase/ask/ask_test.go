package ask_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"

	"github.com/istock-app/istock-rag/pkg/model"
	"github.com/istock-app/istock-rag/pkg/usecase/ask"
)

// Mock RAGEngine
type mockEngine struct {
	payload map[string]any
	err     error
	lastQ   string
}

func (m *mockEngine) RetrieveContexts(ctx context.Context, query string) (map[string]any, error) {
	m.lastQ = query
	if m.err != nil {
		return nil, m.err
	}
	return m.payload, nil
}

// Mock Gemini
type mockGemini struct {
	generateFunc func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, contents, config)
	}
	return nil, goerr.New("not implemented")
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func TestHandleSynthesizedAnswer(t *testing.T) {
	engine := &mockEngine{payload: map[string]any{
		"contexts": []any{
			map[string]any{"text": "Fever above 39.5C in cattle often signals infection.", "sourceTitle": "Cattle Health Manual", "sourceUri": "https://example.com/manual"},
			map[string]any{"text": "Isolate febrile animals and provide water.", "sourceTitle": "Herd Care Notes", "sourceUri": "https://example.com/notes"},
		},
		"scores": []any{0.92, 0.81},
	}}

	var gotConfig *genai.GenerateContentConfig
	var gotPrompt string
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotConfig = config
			if len(contents) > 0 && len(contents[0].Parts) > 0 {
				gotPrompt = contents[0].Parts[0].Text
			}
			return textResponse("Fever in cattle usually signals infection; isolate the animal."), nil
		},
	}

	answer, err := ask.New(engine, gemini).Handle(context.Background(), &model.Query{Prompt: "cow has fever"})
	gt.NoError(t, err)

	gt.Equal(t, engine.lastQ, "cow has fever")
	gt.Equal(t, answer.Text, "Fever in cattle usually signals infection; isolate the animal.")
	gt.Equal(t, answer.Confidence, 0.92)
	gt.Equal(t, answer.Sources, []model.Source{
		{URI: "https://example.com/manual", Title: "Cattle Health Manual"},
		{URI: "https://example.com/notes", Title: "Herd Care Notes"},
	})

	// Fixed generation parameters.
	gt.NotNil(t, gotConfig)
	gt.Equal(t, gotConfig.MaxOutputTokens, int32(1000))
	gt.Equal(t, *gotConfig.Temperature, float32(0.7))
	gt.Equal(t, *gotConfig.TopP, float32(0.95))
	gt.NotNil(t, gotConfig.SystemInstruction)
	gt.Equal(t, strings.Contains(gotPrompt, "Question: cow has fever"), true)
	gt.Equal(t, strings.Contains(gotPrompt, "[1] Fever above 39.5C"), true)
}

func TestHandleSynthesisFailureFallsBack(t *testing.T) {
	passage := "Bloat develops fast in spring pasture. Watch the left flank."
	engine := &mockEngine{payload: map[string]any{
		"contexts": []any{map[string]any{"text": passage, "sourceTitle": "Pasture Guide"}},
	}}
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, goerr.New("model unavailable")
		},
	}

	answer, err := ask.New(engine, gemini).Handle(context.Background(), &model.Query{Prompt: "cow bloated"})
	gt.NoError(t, err)
	gt.Equal(t, answer.Text, passage)
	gt.Equal(t, answer.Confidence, model.DefaultConfidence)
}

func TestHandleEmptyCandidatesFallsBack(t *testing.T) {
	passage := "Keep the water trough clean."
	engine := &mockEngine{payload: map[string]any{
		"contexts": []any{map[string]any{"text": passage, "sourceTitle": "Water Notes"}},
	}}
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		},
	}

	answer, err := ask.New(engine, gemini).Handle(context.Background(), &model.Query{Prompt: "water hygiene"})
	gt.NoError(t, err)
	gt.Equal(t, answer.Text, passage)
}

func TestHandleNoContexts(t *testing.T) {
	engine := &mockEngine{payload: map[string]any{}}
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			t.Fatal("synthesis must be skipped when nothing was retrieved")
			return nil, nil
		},
	}

	answer, err := ask.New(engine, gemini).Handle(context.Background(), &model.Query{Prompt: "anything"})
	gt.NoError(t, err)
	gt.NotEqual(t, answer.Text, "")
	gt.Equal(t, len(answer.Sources), 0)
	gt.Equal(t, answer.Confidence, model.DefaultConfidence)
}

func TestHandleNoContextsFlattenedOverride(t *testing.T) {
	engine := &mockEngine{payload: map[string]any{
		"response": "Pre-rendered answer\nfrom   the service.",
	}}

	answer, err := ask.New(engine, &mockGemini{}).Handle(context.Background(), &model.Query{Prompt: "anything"})
	gt.NoError(t, err)
	gt.Equal(t, answer.Text, "Pre-rendered answer from the service.")
}

func TestHandleRetrievalErrorPropagates(t *testing.T) {
	engine := &mockEngine{err: goerr.New("Permission denied by the retrieval service", goerr.T(model.TagPermission))}

	_, err := ask.New(engine, &mockGemini{}).Handle(context.Background(), &model.Query{Prompt: "anything"})
	gt.Error(t, err)
	gt.Equal(t, goerr.HasTag(err, model.TagPermission), true)
}

func TestHandleConfidenceClamped(t *testing.T) {
	testCases := []struct {
		name  string
		score any
		want  float64
	}{
		{"above one", 1.7, 1},
		{"below zero", -0.3, 0},
		{"in range", 0.42, 0.42},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine := &mockEngine{payload: map[string]any{
				"contexts": []any{map[string]any{"text": "p", "sourceTitle": "T"}},
				"scores":   []any{tc.score},
			}}
			gemini := &mockGemini{
				generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
					return textResponse("ok"), nil
				},
			}

			answer, err := ask.New(engine, gemini).Handle(context.Background(), &model.Query{Prompt: "anything"})
			gt.NoError(t, err)
			gt.Equal(t, answer.Confidence, tc.want)
		})
	}
}
