package server

import (
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/istock-app/istock-rag/pkg/model"
)

// promptPaths lists where clients have historically put the prompt, in the
// order they are checked. The first key that exists wins, even if its value
// is not a string (that surfaces as a type error instead of falling through).
var promptPaths = [][]string{
	{"prompt"},
	{"query"},
	{"data", "prompt"},
	{"data", "query"},
}

var contextPaths = [][]string{
	{"context"},
	{"data", "context"},
}

// normalizeRequest turns any of the accepted body shapes into a validated
// Query. Double-encoded bodies (a JSON string holding a JSON object) are
// unwrapped once.
func normalizeRequest(raw []byte) (*model.Query, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, goerr.New("Request body is required", goerr.T(model.TagBadRequest))
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, goerr.New("Invalid JSON in request body",
			goerr.T(model.TagBadRequest), goerr.V("cause", err.Error()))
	}
	if s, ok := body.(string); ok {
		if err := json.Unmarshal([]byte(s), &body); err != nil {
			return nil, goerr.New("Invalid JSON in request body",
				goerr.T(model.TagBadRequest), goerr.V("cause", err.Error()))
		}
	}

	obj, ok := body.(map[string]any)
	if !ok {
		return nil, goerr.New("Request body is required", goerr.T(model.TagBadRequest))
	}

	prompt, found := lookupPath(obj, promptPaths)
	if !found {
		return nil, goerr.New("Prompt is required",
			goerr.T(model.TagBadRequest), goerr.V("received", obj))
	}
	text, ok := prompt.(string)
	if !ok {
		return nil, goerr.New("Prompt must be a string", goerr.T(model.TagBadRequest))
	}

	q := &model.Query{Prompt: text}
	if v, found := lookupPath(obj, contextPaths); found {
		if s, ok := v.(string); ok {
			q.Context = s
		}
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// lookupPath returns the first value present at any of the given key paths.
// Presence means the key exists in the object, not that the value is non-nil.
func lookupPath(obj map[string]any, paths [][]string) (any, bool) {
	for _, path := range paths {
		node := any(obj)
		found := true
		for _, key := range path {
			m, ok := node.(map[string]any)
			if !ok {
				found = false
				break
			}
			node, ok = m[key]
			if !ok {
				found = false
				break
			}
		}
		if found {
			return node, true
		}
	}
	return nil, false
}
