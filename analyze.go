package diapason

import (
	"errors"
	"fmt"
	"math"

	"github.com/farcloser/diapason/internal/analysis/level"
	"github.com/farcloser/diapason/internal/analysis/nearest"
	"github.com/farcloser/diapason/internal/analysis/reference"
	"github.com/farcloser/diapason/internal/analysis/spectral"
	"github.com/farcloser/diapason/internal/analysis/verdict"
)

/*
Usage:

reading, err := diapason.Analyze(samples, 44100, diapason.DefaultOptions())
fmt.Printf("%s: %.2f Hz, %s\n", reading.Pitch, reading.Frequency, reading.Advice())

// Drop D, half a hertz of tolerance
opts := diapason.DefaultOptions()
opts.Tuning, _ = diapason.ParseTuning("drop-d")
opts.Tolerance = 0.5

// Continuous
stop, err := diapason.Listen(ctx, source, reporter, opts)

*/

var (
	ErrInvalidOptions   = errors.New("invalid options")
	ErrUnknownTransform = errors.New("unknown transform")
)

// Analyze runs one window through the pipeline: DC removal, transform, peak picking,
// nearest reference and verdict. Input level is measured alongside and does not affect the verdict.
// The input is not modified.
func Analyze(samples []float64, sampleRate float64, opts Options) (*Reading, error) {
	applyDefaults(&opts)

	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}

	if err := opts.validateAnalysis(); err != nil {
		return nil, err
	}

	detection, err := spectral.Estimate(samples, sampleRate, spectral.Options{Transform: opts.Transform})
	if err != nil {
		return nil, err
	}

	match, err := nearest.Find(detection.Frequency, opts.Tuning)
	if err != nil {
		return nil, err
	}

	return &Reading{
		Frequency: detection.Frequency,
		Pitch:     match.Pitch.Name,
		Target:    match.Pitch.Frequency,
		Deviation: match.Deviation,
		Cents:     Cents(detection.Frequency, match.Pitch.Frequency),
		Verdict:   verdict.Classify(detection.Frequency, *match, opts.Tolerance),
		Detection: detection,
		Level:     level.Measure(samples),
	}, nil
}

// Cents returns the signed distance from target in hundredths of a semitone.
// It is 0 when either frequency is not positive.
func Cents(frequency, target float64) float64 {
	if frequency <= 0 || target <= 0 {
		return 0
	}

	return 1200 * math.Log2(frequency/target)
}

func applyDefaults(opts *Options) {
	if opts.SampleRate == 0 {
		opts.SampleRate = DefaultSampleRate
	}

	if opts.Duration == 0 {
		opts.Duration = DefaultDuration
	}

	if opts.Channels == 0 {
		opts.Channels = DefaultChannels
	}

	if opts.Tolerance == 0 {
		opts.Tolerance = DefaultTolerance
	}

	if opts.Tuning == nil {
		opts.Tuning = reference.Standard()
	}
}

func describe(reading *Reading) string {
	return fmt.Sprintf("%.2f Hz, nearest %s (%.2f Hz), %s", reading.Frequency, reading.Pitch, reading.Target, reading.Verdict)
}
