package server

import (
	"context"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/m-mizutani/goerr/v2"

	"github.com/istock-app/istock-rag/pkg/model"
)

// TokenVerifier checks a bearer ID token and returns the authenticated user
// ID. The gateway runs open by default; verification is opt-in per deployment.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type firebaseVerifier struct {
	auth *auth.Client
}

// NewFirebaseVerifier builds a TokenVerifier backed by Firebase Auth. The
// default credential chain is used, so on the hosting platform no explicit
// key material is needed.
func NewFirebaseVerifier(ctx context.Context) (TokenVerifier, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize firebase app", goerr.T(model.TagConfig))
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize firebase auth", goerr.T(model.TagConfig))
	}
	return &firebaseVerifier{auth: client}, nil
}

func (v *firebaseVerifier) Verify(ctx context.Context, token string) (string, error) {
	decoded, err := v.auth.VerifyIDToken(ctx, token)
	if err != nil {
		return "", goerr.Wrap(err, "failed to verify ID token")
	}
	return decoded.UID, nil
}

// authenticate enforces the verifier when one is configured. Runs after the
// CORS gate so rejected origins never reach token verification.
func (s *Server) authenticate(r *http.Request) error {
	if s.verifier == nil {
		return nil
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return goerr.New("Authentication required", goerr.T(model.TagUnauthorized))
	}

	if _, err := s.verifier.Verify(r.Context(), strings.TrimSpace(token)); err != nil {
		return goerr.New("Invalid or expired token",
			goerr.T(model.TagUnauthorized), goerr.V("cause", err.Error()))
	}
	return nil
}
