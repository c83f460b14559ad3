package server

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestResolveOrigin(t *testing.T) {
	testCases := []struct {
		name    string
		origin  string
		want    string
		allowed bool
	}{
		{"exact production", "https://istock-app.web.app", "https://istock-app.web.app", true},
		{"exact dev server", "http://localhost:5173", "http://localhost:5173", true},
		{"localhost other port", "http://localhost:9000", "http://localhost:9000", true},
		{"loopback IP", "http://127.0.0.1:8081", "http://127.0.0.1:8081", true},
		{"hosting preview channel", "https://istock-app--pr42.web.app", "https://istock-app--pr42.web.app", true},
		{"firebaseapp suffix", "https://other-project.firebaseapp.com", "https://other-project.firebaseapp.com", true},
		{"no origin header", "", "*", true},
		{"unknown origin", "https://evil.example.com", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := resolveOrigin(tc.origin)
			gt.Equal(t, got, tc.want)
			gt.Equal(t, ok, tc.allowed)
		})
	}
}
