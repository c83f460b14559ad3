package ask

import "strings"

// The retrieveContexts payload has no stable schema: depending on the service
// version the context list is a bare array, nested one or two levels deep, or
// a single record. Each known shape is probed in order; the first structural
// match wins. Records stay loosely typed (any) because their field names vary
// just as much; see sources.go.

// maxDerivedScores caps per-record score derivation.
const maxDerivedScores = 5

// extractContexts flattens the payload into a list of context records plus an
// optional parallel list of similarity scores.
func extractContexts(payload map[string]any) ([]any, []float64) {
	return extractRecords(payload), extractScores(payload)
}

func extractRecords(payload map[string]any) []any {
	if contexts, ok := payload["contexts"]; ok && contexts != nil {
		if arr, ok := contexts.([]any); ok {
			return arr
		}
		if obj, ok := contexts.(map[string]any); ok {
			if inner, ok := obj["contexts"]; ok && inner != nil {
				if arr, ok := inner.([]any); ok {
					return arr
				}
				return []any{inner}
			}
		}
		return []any{contexts}
	}

	for _, key := range []string{"ragContexts", "contextChunks"} {
		if v, ok := payload[key]; ok && v != nil {
			if arr, ok := v.([]any); ok {
				return arr
			}
			return []any{v}
		}
	}

	return nil
}

func extractScores(payload map[string]any) []float64 {
	if scores := floatSlice(payload["scores"]); scores != nil {
		return scores
	}
	if obj, ok := payload["contexts"].(map[string]any); ok {
		if scores := floatSlice(obj["scores"]); scores != nil {
			return scores
		}
	}
	if scores := floatSlice(payload["similarityScores"]); scores != nil {
		return scores
	}

	// Last resort: some versions attach a score to each record instead.
	var derived []float64
	for _, rec := range extractRecords(payload) {
		if len(derived) == maxDerivedScores {
			break
		}
		score, ok := numberField(rec, "score")
		if !ok {
			score, ok = numberField(rec, "_score")
		}
		if ok {
			derived = append(derived, score)
		}
	}
	return derived
}

// floatSlice converts a decoded JSON array of numbers; nil if v is not an
// array. Non-numeric elements are dropped.
func floatSlice(v any) []float64 {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(arr))
	for _, e := range arr {
		if f, ok := e.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

// field walks a nested map path. Returns nil when any step is missing or the
// value is not an object.
func field(v any, path ...string) any {
	for _, key := range path {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = obj[key]
	}
	return v
}

func stringField(v any, path ...string) string {
	s, _ := field(v, path...).(string)
	return s
}

func numberField(v any, path ...string) (float64, bool) {
	f, ok := field(v, path...).(float64)
	return f, ok
}

// contextText pulls the passage text out of one record, probing the known
// field variants. A bare string record is its own text.
func contextText(rec any) string {
	if s, ok := rec.(string); ok {
		return s
	}
	for _, path := range [][]string{
		{"text"},
		{"content"},
		{"chunk", "text"},
		{"chunk", "content"},
		{"ragContext", "text"},
		{"ragContext", "content"},
	} {
		if s := stringField(rec, path...); s != "" {
			return s
		}
	}
	return ""
}

// contextTexts collects up to limit non-blank passage texts in order.
func contextTexts(records []any, limit int) []string {
	var texts []string
	for _, rec := range records {
		if len(texts) == limit {
			break
		}
		if t := contextText(rec); strings.TrimSpace(t) != "" {
			texts = append(texts, t)
		}
	}
	return texts
}

// flattenedAnswer returns a pre-rendered top-level answer if the payload
// carries one, with runs of whitespace collapsed to single spaces.
func flattenedAnswer(payload map[string]any) string {
	for _, key := range []string{"response", "text"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.Join(strings.Fields(s), " ")
		}
	}
	return ""
}
