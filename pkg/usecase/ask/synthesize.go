package ask

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/istock-app/istock-rag/pkg/model"
)

const systemInstruction = `You are a helpful assistant for livestock farmers using the iStock app.
Answer the question using only the reference passages provided.
Write 2-4 paragraphs, roughly 200-400 words, in plain language the farmer can act on.
Do not include disclaimers, legal text, or metadata about the references.`

// Generation parameters are fixed; they are part of the service contract.
const (
	maxSynthesisContexts = 5
	maxOutputTokens      = 1000
	temperature          = 0.7
	topP                 = 0.95
)

// Fallback truncation bounds, in characters. The cut backs up to the last
// sentence or paragraph boundary inside the window, but only when that
// boundary is past the minimum. A too-early cut would drop most of the
// passage, so the full window plus an ellipsis is kept instead.
const (
	fallbackWindow = 800
	fallbackMinCut = 400
)

// synthesize asks the generative model for an answer grounded in the
// retrieved passages. Any failure here is recovered by fallbackAnswer.
func (u *UseCase) synthesize(ctx context.Context, query *model.Query, texts []string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Reference passages:\n\n")
	for i, text := range texts {
		fmt.Fprintf(&sb, "[%d] %s\n\n", i+1, text)
	}
	if query.Context != "" {
		sb.WriteString("Additional context from the user:\n")
		sb.WriteString(query.Context)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(query.Prompt)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, ""),
		MaxOutputTokens:   maxOutputTokens,
		Temperature:       genai.Ptr[float32](temperature),
		TopP:              genai.Ptr[float32](topP),
	}
	contents := []*genai.Content{
		genai.NewContentFromText(sb.String(), genai.RoleUser),
	}

	resp, err := u.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate answer")
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", goerr.New("model returned no text candidates")
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// fallbackAnswer deterministically truncates the best retrieved passage:
// take the first fallbackWindow characters, back up to the later of the last
// period or the last newline, and keep that cut (boundary included) only when
// it lies past fallbackMinCut; otherwise keep the whole window with an
// ellipsis appended.
func fallbackAnswer(texts []string) string {
	if len(texts) == 0 {
		return defaultAnswerText
	}

	text := texts[0]
	runes := []rune(text)
	if len(runes) <= fallbackWindow {
		return text
	}
	window := string(runes[:fallbackWindow])

	cut := strings.LastIndex(window, ".")
	if n := strings.LastIndex(window, "\n"); n > cut {
		cut = n
	}
	if cut >= 0 && utf8.RuneCountInString(window[:cut]) > fallbackMinCut {
		return window[:cut+1]
	}
	return window + "..."
}
