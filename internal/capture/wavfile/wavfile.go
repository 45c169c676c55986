// Package wavfile replays a WAV recording one window at a time and writes synthetic ones.
package wavfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/farcloser/primordium/fault"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/farcloser/diapason/internal/capture"
	"github.com/farcloser/diapason/internal/pcm"
	"github.com/farcloser/diapason/internal/types"
)

const formatPCM = 1

var (
	errInvalidFile = errors.New("not a valid WAV file")
	// ErrUnsupportedFormat is returned for valid WAV files this reader cannot decode,
	// such as float or extensible-header files. Callers may hand those to ffmpeg.
	ErrUnsupportedFormat = errors.New("only integer PCM WAV files are supported")
)

// Source streams windows out of a WAV file.
type Source struct {
	file    *os.File
	decoder *wav.Decoder
	format  types.PCMFormat
}

// Open validates the WAV header. Only 16, 24 and 32-bit integer PCM is accepted.
func Open(filePath string) (*Source, error) {
	file, err := os.Open(filePath) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		_ = file.Close()

		return nil, fmt.Errorf("%w: %s", errInvalidFile, filePath)
	}

	if decoder.WavAudioFormat != formatPCM {
		_ = file.Close()

		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedFormat, decoder.WavAudioFormat)
	}

	format := types.PCMFormat{
		SampleRate: int(decoder.SampleRate),
		BitDepth:   types.BitDepth(decoder.BitDepth),
		Channels:   uint(decoder.NumChans),
	}

	if _, err = pcm.MaxValue(format.BitDepth); err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	slog.Debug("wavfile.Open", "file path", filePath, "sample rate", format.SampleRate,
		"bit depth", format.BitDepth, "channels", format.Channels)

	return &Source{file: file, decoder: decoder, format: format}, nil
}

// Format returns the file's PCM layout.
func (s *Source) Format() types.PCMFormat {
	return s.format
}

// Capture reads the next window. The file's own sample rate wins over req.SampleRate.
// A trailing partial window is not analyzed: capture.ErrExhausted is returned instead.
func (s *Source) Capture(_ context.Context, req capture.Request) (*capture.Window, error) {
	req.SampleRate = float64(s.format.SampleRate)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	channels := int(s.format.Channels) //nolint:gosec // channel count is small

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  s.format.SampleRate,
		},
		Data:           make([]int, req.Frames()*channels),
		SourceBitDepth: int(s.format.BitDepth), //nolint:gosec // bit depth is a small constant
	}

	n, err := s.decoder.PCMBuffer(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	if n < len(buf.Data) {
		return nil, capture.ErrExhausted
	}

	samples, err := pcm.FirstChannelInts(buf.Data, channels, s.format.BitDepth)
	if err != nil {
		return nil, err
	}

	return &capture.Window{Samples: samples, SampleRate: req.SampleRate}, nil
}

// Close closes the underlying file.
func (s *Source) Close() error {
	return s.file.Close()
}

// Write encodes mono samples in [-1, 1] as an integer PCM WAV. Values outside the range are clipped.
func Write(w io.WriteSeeker, samples []float64, sampleRate int, depth types.BitDepth) error {
	maxVal, err := pcm.MaxValue(depth)
	if err != nil {
		return err
	}

	data := make([]int, len(samples))
	for i, sample := range samples {
		scaled := math.Round(sample * maxVal)
		data[i] = int(math.Max(-maxVal, math.Min(maxVal-1, scaled)))
	}

	encoder := wav.NewEncoder(w, sampleRate, int(depth), 1, formatPCM) //nolint:gosec // bit depth is a small constant

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: int(depth), //nolint:gosec // bit depth is a small constant
	}

	if err = encoder.Write(buf); err != nil {
		return fmt.Errorf("encoding samples: %w", err)
	}

	if err = encoder.Close(); err != nil {
		return fmt.Errorf("finalizing WAV header: %w", err)
	}

	return nil
}
