package model

// Source is one cited reference behind an answer. Titles are unique within a
// response (case-insensitive) and never the bare "Reference" placeholder; the
// deduplicator guarantees both.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// DefaultConfidence is used when the retrieval payload carries no usable
// similarity score.
const DefaultConfidence = 0.8

// Answer is the successful response body of the ask endpoint.
type Answer struct {
	Text       string   `json:"text"`
	Sources    []Source `json:"sources"`
	Confidence float64  `json:"confidence"`
}
