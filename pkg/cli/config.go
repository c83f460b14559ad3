package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/istock-app/istock-rag/pkg/adapter"
	appcfg "github.com/istock-app/istock-rag/pkg/config"
)

// config holds configuration values
type config struct {
	// Server
	addr        string
	requireAuth bool

	// Logging
	logLevel  string
	logFormat string

	// Adapters
	geminiModel string
}

// serverFlags returns flags for the HTTP server with destination config
func serverFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Aliases:     []string{"a"},
			Usage:       "Address to listen on",
			Value:       ":8080",
			Sources:     cli.EnvVars("ISTOCK_ADDR", "PORT"),
			Destination: &cfg.addr,
		},
		&cli.BoolFlag{
			Name:        "require-auth",
			Usage:       "Require a Firebase ID token on query requests",
			Sources:     cli.EnvVars("ISTOCK_REQUIRE_AUTH"),
			Destination: &cfg.requireAuth,
		},
	}
}

// loggingFlags returns flags for log output with destination config
func loggingFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("ISTOCK_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console or json)",
			Value:       "console",
			Sources:     cli.EnvVars("ISTOCK_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Generative model used for answer synthesis",
			Sources:     cli.EnvVars("ISTOCK_GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context, rag *appcfg.Config) (adapter.Gemini, error) {
	var opts []adapter.GeminiOption
	if cfg.geminiModel != "" {
		opts = append(opts, adapter.WithGenerativeModel(cfg.geminiModel))
	}

	gemini, err := adapter.NewGemini(ctx, rag.ProjectID, rag.Location, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini adapter")
	}
	return gemini, nil
}

// newRAGEngine creates a new retrieval adapter instance
func (cfg *config) newRAGEngine(ctx context.Context, rag *appcfg.Config) (adapter.RAGEngine, error) {
	engine, err := adapter.NewRAGEngine(ctx, rag.ProjectID, rag.Location, rag.CorpusID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create retrieval adapter")
	}
	return engine, nil
}
