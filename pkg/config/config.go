// Package config resolves the RAG engine configuration the gateway needs to
// reach its corpus. Each field is read from an environment variable first,
// falling back to the legacy runtime-config document the old deployment
// tooling wrote. Resolution happens once per process; the result (or the
// failure) is cached for the life of the process.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/istock-app/istock-rag/pkg/model"
)

// Environment variable names are part of the deployed contract; do not rename.
const (
	EnvProjectID = "RAG_ENGINE_PROJECT_ID"
	EnvLocation  = "RAG_ENGINE_LOCATION"
	EnvCorpusID  = "RAG_ENGINE_ID"
	EnvNodeEnv   = "NODE_ENV"

	// EnvLegacyPath overrides where the legacy runtime-config document lives.
	EnvLegacyPath = "CLOUD_RUNTIME_CONFIG"

	// DefaultLegacyPath is where the legacy deployment tooling materialized
	// its config document next to the binary.
	DefaultLegacyPath = ".runtimeconfig.json"
)

// Config holds the resolved RAG engine settings. Immutable after Load.
type Config struct {
	ProjectID string
	Location  string
	CorpusID  string
	Env       string
}

// CorpusResource returns the fully qualified corpus resource name.
func (c *Config) CorpusResource() string {
	return fmt.Sprintf("projects/%s/locations/%s/ragCorpora/%s", c.ProjectID, c.Location, c.CorpusID)
}

// Production reports whether the gateway runs in the production environment.
// Controls stack-trace exposure in error bodies and the log format default.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// legacyDoc mirrors the runtime-config document of the legacy deployment
// (the `rag` namespace of the old functions config).
type legacyDoc struct {
	Rag struct {
		ProjectID string `json:"project_id"`
		Location  string `json:"location"`
		CorpusID  string `json:"corpus_id"`
	} `json:"rag"`
}

// Lookup resolves one environment variable. Swapped in tests.
type Lookup func(key string) string

var (
	loadOnce sync.Once
	loaded   *Config
	loadErr  error
)

// Load resolves the configuration once and caches the outcome. A cached
// failure is returned as-is on later calls so every request surfaces the same
// configuration error.
func Load() (*Config, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Resolve(os.Getenv, legacyPath())
	})
	return loaded, loadErr
}

func legacyPath() string {
	if p := os.Getenv(EnvLegacyPath); p != "" {
		return p
	}
	return DefaultLegacyPath
}

// Resolve reads each field from the environment, filling gaps from the legacy
// document at legacyFile. A field missing from both sources is a tagged
// configuration error naming the environment variable.
func Resolve(lookup Lookup, legacyFile string) (*Config, error) {
	cfg := &Config{
		ProjectID: lookup(EnvProjectID),
		Location:  lookup(EnvLocation),
		CorpusID:  lookup(EnvCorpusID),
		Env:       lookup(EnvNodeEnv),
	}

	if cfg.ProjectID == "" || cfg.Location == "" || cfg.CorpusID == "" {
		legacy := readLegacy(legacyFile)
		if cfg.ProjectID == "" {
			cfg.ProjectID = legacy.Rag.ProjectID
		}
		if cfg.Location == "" {
			cfg.Location = legacy.Rag.Location
		}
		if cfg.CorpusID == "" {
			cfg.CorpusID = legacy.Rag.CorpusID
		}
	}

	switch {
	case cfg.ProjectID == "":
		return nil, goerr.New("RAG_ENGINE_PROJECT_ID environment variable is not set", goerr.T(model.TagConfig))
	case cfg.Location == "":
		return nil, goerr.New("RAG_ENGINE_LOCATION environment variable is not set", goerr.T(model.TagConfig))
	case cfg.CorpusID == "":
		return nil, goerr.New("RAG_ENGINE_ID environment variable is not set", goerr.T(model.TagConfig))
	}

	return cfg, nil
}

// readLegacy never fails: an absent or unreadable document just yields empty
// fields, and the env-var error paths report what was actually missing.
func readLegacy(path string) *legacyDoc {
	doc := &legacyDoc{}
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc
	}
	_ = json.Unmarshal(raw, doc)
	return doc
}
