//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/diapason/internal/tone"
	"github.com/farcloser/diapason/internal/types"
)

var (
	errToneArgs        = errors.New("expected exactly one argument: output WAV path")
	errInvalidBitDepth = errors.New("must be 16, 24, or 32")
)

func toneCommand() *cli.Command {
	return &cli.Command{
		Name:      "tone",
		Usage:     "Write a sine wave to a WAV file, to check the tuner or tune by ear",
		ArgsUsage: "<file.wav>",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:    "frequency",
				Aliases: []string{"F"},
				Usage:   "Tone frequency in Hz",
				Value:   110,
			},
			&cli.FloatFlag{
				Name:    "amplitude",
				Aliases: []string{"a"},
				Usage:   "Peak amplitude, 1 is full scale",
				Value:   0.8,
			},
			&cli.FloatFlag{
				Name:  "offset",
				Usage: "Constant DC offset added to every sample",
			},
			&cli.DurationFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "Length of the recording",
				Value:   3 * time.Second,
			},
			&cli.IntFlag{
				Name:    "sample-rate",
				Aliases: []string{"s"},
				Usage:   "Sample rate in Hz",
				Value:   44100,
			},
			&cli.IntFlag{
				Name:    "bit-depth",
				Aliases: []string{"b"},
				Usage:   "Bit depth (16, 24, or 32)",
				Value:   16,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errToneArgs, cmd.NArg())
			}

			depth, err := toBitDepth(cmd.Int("bit-depth"))
			if err != nil {
				return fmt.Errorf("--bit-depth: %w", err)
			}

			if cmd.Duration("duration") <= 0 {
				return fmt.Errorf("--duration: %w: must be positive", errInvalidFlag)
			}

			sine := tone.Tone{
				Frequency: cmd.Float("frequency"),
				Amplitude: cmd.Float("amplitude"),
				Offset:    cmd.Float("offset"),
			}

			path := cmd.Args().First()

			if err = tone.WriteFile(path, sine, cmd.Int("sample-rate"), cmd.Duration("duration"), depth); err != nil {
				return err
			}

			slog.Debug("tone written", "path", path, "frequency", sine.Frequency, "bit depth", depth)

			return nil
		},
	}
}

func toBitDepth(v int) (types.BitDepth, error) {
	switch v {
	case 16:
		return types.Depth16, nil
	case 24:
		return types.Depth24, nil
	case 32:
		return types.Depth32, nil
	default:
		return 0, errInvalidBitDepth
	}
}
