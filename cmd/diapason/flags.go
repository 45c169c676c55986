//nolint:wrapcheck
package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/diapason"
	"github.com/farcloser/diapason/internal/analysis/reference"
)

var errInvalidFlag = errors.New("invalid flag value")

// tunerFlags are shared by every command that runs the acquisition loop.
func tunerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "sample-rate",
			Aliases: []string{"s"},
			Usage:   "Capture sample rate in Hz",
			Value:   diapason.DefaultSampleRate,
			Sources: cli.EnvVars("DIAPASON_SAMPLE_RATE"),
		},
		&cli.DurationFlag{
			Name:    "duration",
			Aliases: []string{"d"},
			Usage:   "Length of one analysis window (frequency resolution is its inverse)",
			Value:   diapason.DefaultDuration,
			Sources: cli.EnvVars("DIAPASON_DURATION"),
		},
		&cli.IntFlag{
			Name:    "channels",
			Aliases: []string{"c"},
			Usage:   "Number of channels to capture (only the first is analyzed)",
			Value:   diapason.DefaultChannels,
			Sources: cli.EnvVars("DIAPASON_CHANNELS"),
		},
		&cli.FloatFlag{
			Name:    "tolerance",
			Aliases: []string{"t"},
			Usage:   "Deviation in Hz under which a string is in tune",
			Value:   diapason.DefaultTolerance,
			Sources: cli.EnvVars("DIAPASON_TOLERANCE"),
		},
		&cli.StringFlag{
			Name:    "tuning",
			Aliases: []string{"T"},
			Usage:   fmt.Sprintf("Reference tuning: %v", reference.TuningNames()),
			Value:   "standard",
			Sources: cli.EnvVars("DIAPASON_TUNING"),
		},
		&cli.StringFlag{
			Name:    "transform",
			Usage:   "FFT implementation: gonum, godsp",
			Value:   "gonum",
			Sources: cli.EnvVars("DIAPASON_TRANSFORM"),
		},
		&cli.IntFlag{
			Name:    "cycles",
			Aliases: []string{"n"},
			Usage:   "Stop after this many readings (0 = until interrupted)",
			Sources: cli.EnvVars("DIAPASON_CYCLES"),
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: console, json, markdown",
			Value:   "console",
			Sources: cli.EnvVars("DIAPASON_FORMAT"),
		},
	}
}

// parseOptions builds validated tuner options from the shared flags.
func parseOptions(cmd *cli.Command) (diapason.Options, error) {
	opts := diapason.DefaultOptions()

	tuning, err := diapason.ParseTuning(cmd.String("tuning"))
	if err != nil {
		return opts, fmt.Errorf("--tuning: %w", err)
	}

	transform, err := diapason.ParseTransform(cmd.String("transform"))
	if err != nil {
		return opts, fmt.Errorf("--transform: %w", err)
	}

	if cmd.Duration("duration") <= 0 {
		return opts, fmt.Errorf("--duration: %w: must be positive", errInvalidFlag)
	}

	if cmd.Int("sample-rate") <= 0 {
		return opts, fmt.Errorf("--sample-rate: %w: must be positive", errInvalidFlag)
	}

	opts.SampleRate = float64(cmd.Int("sample-rate"))
	opts.Duration = cmd.Duration("duration")
	opts.Channels = cmd.Int("channels")
	opts.Tolerance = cmd.Float("tolerance")
	opts.Tuning = tuning
	opts.Transform = transform
	opts.Cycles = cmd.Int("cycles")

	if err = opts.Validate(); err != nil {
		return opts, err
	}

	return opts, nil
}

