package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/gridbuild/internal/app"
	"github.com/vk/gridbuild/internal/cli"
	"github.com/vk/gridbuild/internal/hcl"
)

// main is the entrypoint for the gridbuild application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signalContext(context.Background())
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		stop()
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// shutdownSignals cancel the run; steps see the cancelled context.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	gridbuild := app.NewApp(outW, opts.Config, hcl.NewLoader(), hcl.NewConverter())
	if opts.List {
		err = gridbuild.List(ctx)
	} else {
		_, err = gridbuild.Run(ctx)
	}

	var cfgErr *app.ConfigError
	if errors.As(err, &cfgErr) {
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}
	return err
}
