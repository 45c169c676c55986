//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/diapason"
	"github.com/farcloser/diapason/internal/capture/media"
	"github.com/farcloser/diapason/internal/capture/wavfile"
)

var errReplayArgs = errors.New("expected exactly one argument: file path")

func replayCommand() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "Tune from a recording, one window at a time",
		ArgsUsage: "<file>",
		Flags: append(tunerFlags(),
			&cli.IntFlag{
				Name:  "stream",
				Usage: "Audio stream index (0-based), for files decoded through ffmpeg",
				Value: 0,
			},
			&cli.BoolFlag{
				Name:  "ffmpeg",
				Usage: "Decode through ffmpeg even for WAV files",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errReplayArgs, cmd.NArg())
			}

			opts, err := parseOptions(cmd)
			if err != nil {
				return err
			}

			filePath := cmd.Args().First()

			source, err := openRecording(ctx, filePath, cmd.Int("stream"), cmd.Bool("ffmpeg"))
			if err != nil {
				return err
			}
			defer closeSource(source)

			return tune(ctx, cmd, source, filePath, opts)
		},
	}
}

// openRecording reads integer PCM WAV natively and hands everything else to ffmpeg,
// including WAV files the native reader does not support.
func openRecording(ctx context.Context, filePath string, streamIndex int, forceFFmpeg bool) (diapason.Source, error) {
	if !forceFFmpeg && strings.EqualFold(filepath.Ext(filePath), ".wav") {
		source, err := wavfile.Open(filePath)
		if err == nil {
			return source, nil
		}

		if !errors.Is(err, wavfile.ErrUnsupportedFormat) {
			return nil, err
		}

		slog.Debug("replay", "file path", filePath, "stage", "ffmpeg fallback", "reason", err)
	}

	return media.Open(ctx, filePath, streamIndex, 0)
}
