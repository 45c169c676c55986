// Package capture defines what the acquisition loop needs from an audio source.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrExhausted is returned by finite sources once they cannot fill another window.
	ErrExhausted = errors.New("audio source exhausted")
	// ErrNoDevice is returned when no capture device matches the requested name.
	ErrNoDevice       = errors.New("no matching capture device")
	ErrInvalidRequest = errors.New("invalid capture request")
)

// Request describes one fixed-length window.
type Request struct {
	SampleRate float64
	Duration   time.Duration
	Channels   int
}

// Frames returns the window length N = sampleRate x duration.
func (r Request) Frames() int {
	return int(r.SampleRate * r.Duration.Seconds())
}

// Validate rejects requests that cannot produce a window of at least two frames.
func (r Request) Validate() error {
	switch {
	case r.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %v", ErrInvalidRequest, r.SampleRate)
	case r.Channels <= 0:
		return fmt.Errorf("%w: %d channels", ErrInvalidRequest, r.Channels)
	case r.Frames() < 2:
		return fmt.Errorf("%w: %v at %v Hz is shorter than two samples", ErrInvalidRequest, r.Duration, r.SampleRate)
	}

	return nil
}

// Window is one captured block, reduced to its first channel.
type Window struct {
	Samples    []float64
	SampleRate float64
}

// Source yields windows. Capture blocks until the window is full.
type Source interface {
	Capture(ctx context.Context, req Request) (*Window, error)
	Close() error
}

// Device describes an input device for listing purposes.
type Device struct {
	Name              string
	Channels          int
	DefaultSampleRate float64
	Default           bool
}
