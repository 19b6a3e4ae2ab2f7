package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/releasestats/internal/cli"
	apperrors "github.com/matzehuels/releasestats/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx))
}

func run(ctx context.Context) int {
	c := cli.New(os.Stderr, cli.LogInfo)
	err := c.RootCommand().ExecuteContext(ctx)
	if err == nil {
		return apperrors.ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.ExitInterrupted // Standard shell convention for SIGINT
	}
	fmt.Fprintln(os.Stderr, apperrors.UserMessage(err))
	return apperrors.ExitCode(err)
}
