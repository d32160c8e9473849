package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xs3fo/ddeponpm/internal/cli"
	deperrors "github.com/0xs3fo/ddeponpm/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		switch {
		case errors.Is(err, cli.ErrUnclaimed):
			// The report already says so.
		case errors.Is(err, context.Canceled):
			os.Exit(130) // Standard shell convention for SIGINT
		default:
			fmt.Fprintln(os.Stderr, "Error:", deperrors.UserMessage(err))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}
