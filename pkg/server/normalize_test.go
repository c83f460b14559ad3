package server

import (
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/istock-app/istock-rag/pkg/model"
)

func TestNormalizeRequestBodyShapes(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"prompt", `{"prompt":"how much hay"}`},
		{"query", `{"query":"how much hay"}`},
		{"data prompt", `{"data":{"prompt":"how much hay"}}`},
		{"data query", `{"data":{"query":"how much hay"}}`},
		{"double encoded", `"{\"prompt\":\"how much hay\"}"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := normalizeRequest([]byte(tc.body))
			gt.NoError(t, err)
			gt.Equal(t, q.Prompt, "how much hay")
		})
	}
}

func TestNormalizeRequestPromptPrecedence(t *testing.T) {
	q, err := normalizeRequest([]byte(`{"prompt":"first","query":"second"}`))
	gt.NoError(t, err)
	gt.Equal(t, q.Prompt, "first")
}

func TestNormalizeRequestContext(t *testing.T) {
	q, err := normalizeRequest([]byte(`{"prompt":"how much hay","context":"herd of 40"}`))
	gt.NoError(t, err)
	gt.Equal(t, q.Context, "herd of 40")

	q, err = normalizeRequest([]byte(`{"data":{"prompt":"how much hay","context":"herd of 40"}}`))
	gt.NoError(t, err)
	gt.Equal(t, q.Context, "herd of 40")
}

func TestNormalizeRequestRejections(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		message string
	}{
		{"empty body", ``, "Request body is required"},
		{"whitespace body", "  \n ", "Request body is required"},
		{"invalid JSON", `{"prompt":`, "Invalid JSON in request body"},
		{"double encoded garbage", `"not json at all"`, "Invalid JSON in request body"},
		{"array body", `[1,2,3]`, "Request body is required"},
		{"no prompt field", `{"question":"how much hay"}`, "Prompt is required"},
		{"non-string prompt", `{"prompt":42}`, "Prompt must be a string"},
		{"null prompt", `{"prompt":null}`, "Prompt must be a string"},
		{"too short", `{"prompt":"hi"}`, "Prompt must be at least 3 characters long"},
		{"too long", `{"prompt":"` + strings.Repeat("a", 2001) + `"}`, "Prompt must be at most 2000 characters long"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := normalizeRequest([]byte(tc.body))
			gt.Error(t, err)
			gt.Equal(t, err.Error(), tc.message)
			gt.True(t, goerr.HasTag(err, model.TagBadRequest))
		})
	}
}

func TestNormalizeRequestExposesReceivedBody(t *testing.T) {
	_, err := normalizeRequest([]byte(`{"question":"how much hay"}`))
	gt.Error(t, err)

	ge := goerr.Unwrap(err)
	gt.NotNil(t, ge)
	received, ok := ge.Values()["received"].(map[string]any)
	gt.True(t, ok)
	gt.Equal(t, received["question"], "how much hay")
}
