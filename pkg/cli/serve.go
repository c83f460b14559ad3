package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	appcfg "github.com/istock-app/istock-rag/pkg/config"
	"github.com/istock-app/istock-rag/pkg/server"
	"github.com/istock-app/istock-rag/pkg/usecase/ask"
	"github.com/istock-app/istock-rag/pkg/utils/logging"
)

func serveCommand() *cli.Command {
	var cfg config
	flags := serverFlags(&cfg)
	flags = append(flags, loggingFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP gateway",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServe(ctx, &cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New(cfg.logLevel, cfg.logFormat, nil)
	logging.SetDefault(logger)
	ctx = logging.With(ctx, logger)

	// Fail fast on missing project, location, or corpus configuration
	// instead of surfacing it on the first query.
	rag, err := appcfg.Load()
	if err != nil {
		return err
	}

	gemini, err := cfg.newGemini(ctx, rag)
	if err != nil {
		return err
	}
	engine, err := cfg.newRAGEngine(ctx, rag)
	if err != nil {
		return err
	}

	options := []server.Option{
		server.WithLogger(logger),
		server.WithProduction(rag.Production()),
	}
	if cfg.requireAuth {
		verifier, err := server.NewFirebaseVerifier(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to set up token verification")
		}
		options = append(options, server.WithTokenVerifier(verifier))
	}

	srv := server.New(ask.New(engine, gemini), options...)

	logger.Info("iStock RAG gateway starting",
		"addr", cfg.addr,
		"corpus", rag.CorpusResource(),
		"production", rag.Production(),
		"auth", cfg.requireAuth)

	return srv.Run(ctx, cfg.addr)
}
