// Package media replays any recording ffmpeg can decode, one window per capture.
package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/farcloser/diapason/internal/capture"
	"github.com/farcloser/diapason/internal/integration/ffmpeg"
	"github.com/farcloser/diapason/internal/integration/ffprobe"
	"github.com/farcloser/diapason/internal/pcm"
	"github.com/farcloser/diapason/internal/types"
)

// Source holds the decoded first channel of a recording.
type Source struct {
	samples    []float64
	sampleRate float64
	pos        int
}

// Open probes filePath, then decodes the selected audio stream, resampled to sampleRate when it is positive.
func Open(ctx context.Context, filePath string, streamIndex, sampleRate int) (*Source, error) {
	probeResult, err := ffprobe.Probe(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("probing file: %w", err)
	}

	stream, err := probeResult.AudioStream(streamIndex)
	if err != nil {
		return nil, err
	}

	probedRate, channels, err := stream.Params()
	if err != nil {
		return nil, err
	}

	if sampleRate <= 0 {
		sampleRate = probedRate
	}

	file, err := os.Open(filePath) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	format := types.PCMFormat{
		SampleRate: sampleRate,
		BitDepth:   types.Depth32,
		Channels:   uint(channels), //nolint:gosec // validated positive value
	}

	var pcmBuf bytes.Buffer

	if err = ffmpeg.ExtractStream(ctx, file, &pcmBuf, streamIndex, &format); err != nil {
		return nil, fmt.Errorf("extracting PCM: %w", err)
	}

	samples, err := pcm.DecodeFirstChannel(pcmBuf.Bytes(), format)
	if err != nil {
		return nil, err
	}

	slog.Debug("media.Open", "file path", filePath, "codec", stream.CodecName, "frames", len(samples))

	return &Source{samples: samples, sampleRate: float64(sampleRate)}, nil
}

// Capture returns the next window. The file's decoded rate wins over req.SampleRate.
func (s *Source) Capture(_ context.Context, req capture.Request) (*capture.Window, error) {
	req.SampleRate = s.sampleRate
	if err := req.Validate(); err != nil {
		return nil, err
	}

	frames := req.Frames()
	if s.pos+frames > len(s.samples) {
		return nil, capture.ErrExhausted
	}

	window := make([]float64, frames)
	copy(window, s.samples[s.pos:s.pos+frames])
	s.pos += frames

	return &capture.Window{Samples: window, SampleRate: s.sampleRate}, nil
}

// Close releases the decoded samples.
func (s *Source) Close() error {
	s.samples = nil

	return nil
}
