// Package tone synthesizes reference signals.
package tone

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/farcloser/diapason/internal/capture/wavfile"
	"github.com/farcloser/diapason/internal/types"
)

var ErrInvalidTone = errors.New("invalid tone parameters")

// Tone describes a pure sine, optionally riding on a constant offset.
type Tone struct {
	Frequency float64 // Hz
	Amplitude float64 // peak, full scale is 1
	Offset    float64 // constant added to every sample
	Phase     float64 // radians
}

// Validate rejects tones that cannot be rendered.
func (t Tone) Validate(sampleRate int) error {
	switch {
	case sampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidTone, sampleRate)
	case t.Frequency < 0 || math.IsNaN(t.Frequency) || math.IsInf(t.Frequency, 0):
		return fmt.Errorf("%w: frequency %v", ErrInvalidTone, t.Frequency)
	case t.Frequency >= float64(sampleRate)/2:
		return fmt.Errorf("%w: %v Hz is above the Nyquist frequency of %d Hz", ErrInvalidTone, t.Frequency, sampleRate)
	case math.Abs(t.Amplitude)+math.Abs(t.Offset) > 1:
		return fmt.Errorf("%w: amplitude %v with offset %v exceeds full scale", ErrInvalidTone, t.Amplitude, t.Offset)
	}

	return nil
}

// Render returns sampleRate x duration samples of the tone.
func (t Tone) Render(sampleRate int, duration time.Duration) []float64 {
	frames := int(float64(sampleRate) * duration.Seconds())
	samples := make([]float64, max(frames, 0))

	step := 2 * math.Pi * t.Frequency / float64(sampleRate)
	for i := range samples {
		samples[i] = t.Offset + t.Amplitude*math.Sin(step*float64(i)+t.Phase)
	}

	return samples
}

// Sine is a convenience for a unit-amplitude tone with no offset.
func Sine(frequency float64, sampleRate int, duration time.Duration) []float64 {
	return Tone{Frequency: frequency, Amplitude: 1}.Render(sampleRate, duration)
}

// WriteFile renders the tone into a mono WAV file.
func WriteFile(path string, t Tone, sampleRate int, duration time.Duration, depth types.BitDepth) error {
	if err := t.Validate(sampleRate); err != nil {
		return err
	}

	file, err := os.Create(path) //nolint:gosec // CLI tool writes user-specified paths
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err = wavfile.Write(file, t.Render(sampleRate, duration), sampleRate, depth); err != nil {
		_ = file.Close()

		return err
	}

	return file.Close()
}
