package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/diapason/internal/integration/binary"
	"github.com/farcloser/diapason/internal/types"
)

// Record captures duration worth of audio from an input device and returns it as interleaved PCM.
// An empty device selects the platform default. Cancelling ctx kills the recording and returns ctx.Err().
func Record(ctx context.Context, device string, format types.PCMFormat, duration time.Duration) ([]byte, error) {
	slog.Debug("ffmpeg.Record", "device", device, "stage", "start")

	ffmpegPath, err := binary.Require(name)
	if err != nil {
		return nil, err
	}

	demuxer, defaultDevice := inputFormat()
	if device == "" {
		device = defaultDevice
	}

	limit := duration + recordGrace

	recordCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	//nolint:gosec // device is intentionally user-provided
	cmd := exec.CommandContext(recordCtx, ffmpegPath,
		"-f", demuxer,
		"-i", device,
		"-t", strconv.FormatFloat(duration.Seconds(), 'f', -1, 64),
		"-ac", strconv.FormatUint(uint64(format.Channels), 10),
		"-ar", strconv.Itoa(format.SampleRate),
		"-f", bitDepthToSpec(format.BitDepth),
		"-acodec", codecFor(format.BitDepth),
		"-v", "quiet",
		"-",
	)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err = cmd.Run(); err != nil {
		if ctx.Err() != nil {
			slog.Debug("ffmpeg.Record", "device", device, "stage", "cancelled")

			return nil, ctx.Err()
		}

		if errors.Is(recordCtx.Err(), context.DeadlineExceeded) {
			slog.Debug("ffmpeg.Record", "device", device, "stage", "timeout")

			return nil, fmt.Errorf("%w: after %v", fault.ErrTimeout, limit)
		}

		slog.Debug("ffmpeg.Record", "device", device, "stage", "error")

		return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	return stdout.Bytes(), nil
}
