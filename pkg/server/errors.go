package server

import (
	"fmt"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/istock-app/istock-rag/pkg/model"
)

// networkErrorText replaces upstream transport errors so transient details
// never leak to the client.
const networkErrorText = "The answer service is temporarily unreachable. Please try again."

type errorBody struct {
	Error    string `json:"error"`
	Received any    `json:"received,omitempty"`
	Stack    string `json:"stack,omitempty"`
}

// statusOf maps an error tag to its HTTP status. Untagged errors are treated
// as internal failures.
func statusOf(err error) int {
	switch {
	case goerr.HasTag(err, model.TagBadRequest):
		return http.StatusBadRequest
	case goerr.HasTag(err, model.TagUnauthorized):
		return http.StatusUnauthorized
	case goerr.HasTag(err, model.TagPermission):
		return http.StatusForbidden
	case goerr.HasTag(err, model.TagNotFound):
		return http.StatusNotFound
	case goerr.HasTag(err, model.TagNetwork):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure renders an error as the JSON body the client contract expects.
// Stack traces are attached only outside production.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status := statusOf(err)

	body := errorBody{Error: err.Error()}
	switch {
	case goerr.HasTag(err, model.TagConfig):
		body.Error = "Configuration error: " + err.Error()
	case goerr.HasTag(err, model.TagNetwork):
		body.Error = networkErrorText
	}

	if ge := goerr.Unwrap(err); ge != nil {
		if received, ok := ge.Values()["received"]; ok {
			body.Received = received
		}
	}
	if !s.production {
		body.Stack = fmt.Sprintf("%+v", err)
	}

	writeJSON(w, status, body)
}
