package model

import (
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
)

// Prompt length bounds, counted in characters. Part of the client contract.
const (
	MinPromptLength = 3
	MaxPromptLength = 2000
)

// Query is one normalized question for the assistant. Clients send several
// historical body shapes; by the time a Query exists the shape differences
// are gone. A Query lives for a single request and is never persisted here.
type Query struct {
	Prompt  string `json:"prompt"`
	Context string `json:"context,omitempty"`
}

// Validate checks the prompt length bounds. Error messages are user-facing
// and returned verbatim in the 400 body.
func (q *Query) Validate() error {
	n := utf8.RuneCountInString(q.Prompt)
	switch {
	case n < MinPromptLength:
		return goerr.New("Prompt must be at least 3 characters long", goerr.T(TagBadRequest))
	case n > MaxPromptLength:
		return goerr.New("Prompt must be at most 2000 characters long", goerr.T(TagBadRequest))
	}
	return nil
}
