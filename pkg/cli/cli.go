package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "istock-rag",
		Usage: "RAG gateway for the iStock livestock assistant",
		Commands: []*cli.Command{
			serveCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
