// Package recorder captures microphone windows by running ffmpeg against the platform capture device.
package recorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/diapason/internal/capture"
	"github.com/farcloser/diapason/internal/integration/ffmpeg"
	"github.com/farcloser/diapason/internal/pcm"
	"github.com/farcloser/diapason/internal/types"
)

var errShortCapture = errors.New("recording ended before the window was full")

// Source records one window per ffmpeg run.
type Source struct {
	device string
}

// Open checks that ffmpeg is installed. An empty device selects the platform default.
func Open(device string) (*Source, error) {
	if err := ffmpeg.Check(); err != nil {
		return nil, err
	}

	return &Source{device: device}, nil
}

// Capture records req.Duration of audio. Unlike the native backends, cancelling ctx aborts the recording;
// the returned error is then ctx.Err().
func (s *Source) Capture(ctx context.Context, req capture.Request) (*capture.Window, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	format := types.PCMFormat{
		SampleRate: int(req.SampleRate),
		BitDepth:   types.Depth32,
		Channels:   uint(req.Channels), //nolint:gosec // validated positive value
	}

	data, err := ffmpeg.Record(ctx, s.device, format, req.Duration)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	samples, err := pcm.DecodeFirstChannel(data, format)
	if err != nil {
		return nil, err
	}

	frames := req.Frames()
	if len(samples) < frames {
		return nil, fmt.Errorf("%w: %w: got %d of %d frames", fault.ErrReadFailure, errShortCapture, len(samples), frames)
	}

	return &capture.Window{Samples: samples[:frames], SampleRate: req.SampleRate}, nil
}

// Close is a no-op: each capture owns its own ffmpeg process.
func (s *Source) Close() error {
	return nil
}
