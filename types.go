package diapason

import (
	"fmt"
	"math"
	"time"

	"github.com/farcloser/diapason/internal/analysis/reference"
	"github.com/farcloser/diapason/internal/analysis/spectral"
	"github.com/farcloser/diapason/internal/analysis/verdict"
	"github.com/farcloser/diapason/internal/capture"
	"github.com/farcloser/diapason/internal/types"
)

// Verdict is the tuning feedback for one reading.
type Verdict = types.Verdict

const (
	InTune  = types.InTune
	TooHigh = types.TooHigh
	TooLow  = types.TooLow
)

const (
	DefaultSampleRate = 44100
	DefaultDuration   = time.Second
	DefaultChannels   = 1
	DefaultTolerance  = verdict.DefaultTolerance
)

// Options configures the tuner. They are validated once and never change while listening.
type Options struct {
	// SampleRate requested from live sources, in Hz (default: 44100).
	// Replay sources report their own rate, which wins.
	SampleRate float64

	// Duration of one capture window (default: 1s). Bin width is 1/Duration Hz.
	Duration time.Duration

	// Channels requested from the device (default: 1). Only the first one is analyzed.
	Channels int

	// Tolerance in Hz under which a string is in tune (default: 1.0). The bound is strict.
	Tolerance float64

	// Tuning is the reference table (default: standard tuning).
	Tuning *reference.Table

	// Transform selects the FFT implementation.
	Transform spectral.Transform

	// Cycles bounds the number of windows analyzed; 0 means until cancelled.
	Cycles int
}

// DefaultOptions returns standard tuning at 44.1kHz with one second windows.
func DefaultOptions() Options {
	return Options{
		SampleRate: DefaultSampleRate,
		Duration:   DefaultDuration,
		Channels:   DefaultChannels,
		Tolerance:  DefaultTolerance,
		Tuning:     reference.Standard(),
		Transform:  spectral.TransformGonum,
	}
}

// Validate checks the options as a whole.
func (o Options) Validate() error {
	if err := o.validateAnalysis(); err != nil {
		return err
	}

	if o.Cycles < 0 {
		return fmt.Errorf("%w: cycles must not be negative, got %d", ErrInvalidOptions, o.Cycles)
	}

	if err := validateSampleRate(o.SampleRate); err != nil {
		return err
	}

	if err := o.request().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	return nil
}

// validateAnalysis checks what a single window analysis depends on.
func (o Options) validateAnalysis() error {
	if o.Tolerance <= 0 || math.IsNaN(o.Tolerance) || math.IsInf(o.Tolerance, 0) {
		return fmt.Errorf("%w: tolerance must be positive, got %v", ErrInvalidOptions, o.Tolerance)
	}

	if o.Tuning == nil || o.Tuning.Len() == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, reference.ErrEmptyTable)
	}

	return nil
}

func validateSampleRate(rate float64) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: sample rate must be positive and finite, got %v", ErrInvalidOptions, rate)
	}

	return nil
}

func (o Options) request() capture.Request {
	return capture.Request{
		SampleRate: o.SampleRate,
		Duration:   o.Duration,
		Channels:   o.Channels,
	}
}

// ParseTuning returns the reference table for a named tuning.
func ParseTuning(name string) (*reference.Table, error) {
	if name == "" {
		return reference.Standard(), nil
	}

	return reference.Tuning(name)
}

// ParseTransform converts a string to a Transform value.
func ParseTransform(s string) (spectral.Transform, error) {
	switch s {
	case "gonum", "":
		return spectral.TransformGonum, nil
	case "godsp":
		return spectral.TransformGoDSP, nil
	default:
		return 0, fmt.Errorf("%w %q (valid: gonum, godsp)", ErrUnknownTransform, s)
	}
}

// Reading is what one cycle reports.
type Reading struct {
	Frequency float64 `json:"frequency"` // detected, Hz
	Pitch     string  `json:"pitch"`     // matched reference name
	Target    float64 `json:"target"`    // matched reference frequency, Hz
	Deviation float64 `json:"deviation"` // |Frequency - Target|, Hz
	Cents     float64 `json:"cents"`     // signed offset from Target
	Verdict   Verdict `json:"verdict"`

	Detection *types.Detection `json:"-"`
	Level     *types.Level     `json:"-"`
}

// Advice returns what to do with the peg.
func (r *Reading) Advice() string {
	return r.Verdict.Advice()
}
