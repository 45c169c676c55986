// Package pcm converts interleaved sample data into the mono float64 windows the analysis works on.
// Only the first channel is kept.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/farcloser/diapason/internal/types"
)

const (
	MaxValue16 = 32768.0      // 2^15, 16-bit signed normalization divisor
	MaxValue24 = 8388608.0    // 2^23, 24-bit signed normalization divisor
	MaxValue32 = 2147483648.0 // 2^31, 32-bit signed normalization divisor
)

var (
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
	ErrInvalidChannels     = errors.New("channel count must be positive")
)

// MaxValue returns the normalization divisor for a signed integer bit depth.
func MaxValue(depth types.BitDepth) (float64, error) {
	switch depth {
	case types.Depth16:
		return MaxValue16, nil
	case types.Depth24:
		return MaxValue24, nil
	case types.Depth32:
		return MaxValue32, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, depth)
	}
}

// DecodeFirstChannel decodes little-endian signed PCM and returns the first channel normalized to [-1, 1).
// Trailing bytes that do not form a complete frame are ignored.
func DecodeFirstChannel(data []byte, format types.PCMFormat) ([]float64, error) {
	if format.Channels == 0 {
		return nil, ErrInvalidChannels
	}

	maxVal, err := MaxValue(format.BitDepth)
	if err != nil {
		return nil, err
	}

	bytesPerSample := int(format.BitDepth / 8)         //nolint:gosec // bit depth is a small constant
	frameSize := bytesPerSample * int(format.Channels) //nolint:gosec // channel count is small
	frames := len(data) / frameSize
	out := make([]float64, frames)

	for frame := range frames {
		i := frame * frameSize

		switch format.BitDepth {
		case types.Depth16:
			out[frame] = float64(int16(binary.LittleEndian.Uint16(data[i:]))) / maxVal //nolint:gosec // two's complement conversion for signed PCM samples
		case types.Depth24:
			raw := int32(data[i]) | int32(data[i+1])<<8 | int32(data[i+2])<<16
			if raw&0x800000 != 0 {
				raw |= ^0xFFFFFF
			}

			out[frame] = float64(raw) / maxVal
		case types.Depth32:
			out[frame] = float64(int32(binary.LittleEndian.Uint32(data[i:]))) / maxVal //nolint:gosec // two's complement conversion for signed PCM samples
		default:
		}
	}

	return out, nil
}

// DecodeFloat32FirstChannel decodes little-endian IEEE float32 frames, as delivered by miniaudio.
func DecodeFloat32FirstChannel(data []byte, channels int) ([]float64, error) {
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	frameSize := 4 * channels
	frames := len(data) / frameSize
	out := make([]float64, frames)

	for frame := range frames {
		out[frame] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[frame*frameSize:])))
	}

	return out, nil
}

// FirstChannel extracts the first channel of interleaved float32 samples.
func FirstChannel(interleaved []float32, channels int) ([]float64, error) {
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	frames := len(interleaved) / channels
	out := make([]float64, frames)

	for frame := range frames {
		out[frame] = float64(interleaved[frame*channels])
	}

	return out, nil
}

// FirstChannelInts extracts and normalizes the first channel of interleaved integer samples,
// as decoded by go-audio.
func FirstChannelInts(interleaved []int, channels int, depth types.BitDepth) ([]float64, error) {
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	maxVal, err := MaxValue(depth)
	if err != nil {
		return nil, err
	}

	frames := len(interleaved) / channels
	out := make([]float64, frames)

	for frame := range frames {
		out[frame] = float64(interleaved[frame*channels]) / maxVal
	}

	return out, nil
}
