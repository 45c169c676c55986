//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/diapason"
	"github.com/farcloser/diapason/internal/capture/miniaudio"
	"github.com/farcloser/diapason/internal/capture/portaudio"
	"github.com/farcloser/diapason/internal/capture/recorder"
)

const banner = "play a string to tune, press Ctrl+C to stop"

var (
	errListenArgs     = errors.New("listen takes no arguments")
	errUnknownBackend = errors.New("unknown capture backend")
)

func listenCommand() *cli.Command {
	return &cli.Command{
		Name:  "listen",
		Usage: "Tune from a live input until interrupted",
		Flags: append(tunerFlags(),
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"S"},
				Usage:   "Capture backend: portaudio, miniaudio, ffmpeg",
				Value:   "portaudio",
				Sources: cli.EnvVars("DIAPASON_SOURCE"),
			},
			&cli.StringFlag{
				Name:    "device",
				Usage:   "Input device name (empty for the system default)",
				Sources: cli.EnvVars("DIAPASON_DEVICE"),
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 0 {
				return fmt.Errorf("%w: got %d", errListenArgs, cmd.NArg())
			}

			opts, err := parseOptions(cmd)
			if err != nil {
				return err
			}

			backend := cmd.String("source")

			source, err := openLiveSource(backend, cmd.String("device"))
			if err != nil {
				return err
			}
			defer closeSource(source)

			fmt.Fprintln(os.Stderr, banner)

			return tune(ctx, cmd, source, backend, opts)
		},
	}
}

func openLiveSource(backend, device string) (diapason.Source, error) {
	switch backend {
	case "portaudio", "":
		return portaudio.Open(device)
	case "miniaudio":
		return miniaudio.Open(device)
	case "ffmpeg":
		return recorder.Open(device)
	default:
		return nil, fmt.Errorf("%w %q (valid: portaudio, miniaudio, ffmpeg)", errUnknownBackend, backend)
	}
}

// tune runs the acquisition loop until the source is exhausted, the cycle budget is spent,
// or the process is interrupted.
func tune(ctx context.Context, cmd *cli.Command, source diapason.Source, label string, opts diapason.Options) error {
	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	reporter, err := newReporter(label, cmd.String("format"), cmd.Bool("debug"), os.Stdout)
	if err != nil {
		return err
	}

	stop, err := diapason.Listen(ctx, source, reporter, opts)

	switch stop {
	case diapason.StopFailed:
		return err
	case diapason.StopExhausted:
		slog.Info("end of input")
	case diapason.StopCancelled:
		slog.Info("stopped")
	}

	return nil
}

func closeSource(source diapason.Source) {
	if err := source.Close(); err != nil {
		slog.Warn("closing audio source", "error", err)
	}
}
