package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"github.com/istock-app/istock-rag/pkg/model"
)

// RAGEngine retrieves context chunks from the managed corpus. The payload is
// returned as loosely-typed JSON on purpose: the retrieveContexts response
// shape differs across service versions, and the usecase layer probes the
// known variants in order.
type RAGEngine interface {
	RetrieveContexts(ctx context.Context, query string) (map[string]any, error)
}

const (
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
	defaultTopK        = 10
)

type RAGEngineClient struct {
	httpClient *http.Client
	endpoint   string
	corpus     string
	topK       int
}

type RAGEngineOption func(*RAGEngineClient)

// WithRAGHTTPClient replaces the authenticated client, mainly for tests.
func WithRAGHTTPClient(c *http.Client) RAGEngineOption {
	return func(r *RAGEngineClient) {
		r.httpClient = c
	}
}

// WithRAGEndpoint overrides the retrieveContexts URL, mainly for tests.
func WithRAGEndpoint(endpoint string) RAGEngineOption {
	return func(r *RAGEngineClient) {
		r.endpoint = endpoint
	}
}

func WithTopK(k int) RAGEngineOption {
	return func(r *RAGEngineClient) {
		r.topK = k
	}
}

func NewRAGEngine(ctx context.Context, projectID, location, corpusID string, opts ...RAGEngineOption) (*RAGEngineClient, error) {
	r := &RAGEngineClient{
		endpoint: fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1beta1/projects/%s/locations/%s:retrieveContexts",
			location, projectID, location),
		corpus: fmt.Sprintf("projects/%s/locations/%s/ragCorpora/%s", projectID, location, corpusID),
		topK:   defaultTopK,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.httpClient == nil {
		client, _, err := htransport.NewClient(ctx, option.WithScopes(cloudPlatformScope))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create authenticated retrieval client", goerr.T(model.TagConfig))
		}
		r.httpClient = client
	}

	return r, nil
}

func (r *RAGEngineClient) RetrieveContexts(ctx context.Context, query string) (map[string]any, error) {
	body, err := json.Marshal(map[string]any{
		"vertex_rag_store": map[string]any{
			"rag_resources": []map[string]any{
				{"rag_corpus": r.corpus},
			},
		},
		"query": map[string]any{
			"text":             query,
			"similarity_top_k": r.topK,
		},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode retrieval request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build retrieval request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reach the retrieval service", goerr.T(model.TagNetwork))
	}
	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, classifyUpstream(err, r.corpus)
	}

	payload := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, goerr.Wrap(err, "failed to decode retrieval response", goerr.T(model.TagNetwork))
	}

	return payload, nil
}

// classifyUpstream tags the error at the point of failure so the HTTP layer
// never has to inspect upstream message text.
func classifyUpstream(err error, corpus string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusForbidden:
			return goerr.New("Permission denied by the retrieval service",
				goerr.T(model.TagPermission), goerr.V("corpus", corpus), goerr.V("cause", apiErr.Message))
		case http.StatusNotFound:
			return goerr.New("The configured corpus was not found",
				goerr.T(model.TagNotFound), goerr.V("corpus", corpus), goerr.V("cause", apiErr.Message))
		case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
			return goerr.Wrap(err, "the retrieval service is unavailable", goerr.T(model.TagNetwork))
		}
	}
	return goerr.Wrap(err, "retrieval request failed")
}
