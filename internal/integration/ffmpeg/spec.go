package ffmpeg

import (
	"runtime"
	"strconv"
	"time"

	"github.com/farcloser/diapason/internal/integration/binary"
	"github.com/farcloser/diapason/internal/types"
)

const (
	name = "ffmpeg"
	// Decoding a long recording from a slow disk can take a while.
	timeout = 60 * time.Second
	// Added to the capture duration before a recording is considered hung.
	recordGrace = 10 * time.Second
)

func bitDepthToSpec(bitDepth types.BitDepth) string {
	// BitDepth 32 = s32le, 24 = s24le, 16 = s16le
	//nolint:gosec // we fine, gosec
	return "s" + strconv.Itoa(int(bitDepth)) + "le"
}

func codecFor(bitDepth types.BitDepth) string {
	return "pcm_" + bitDepthToSpec(bitDepth)
}

// inputFormat returns the ffmpeg capture demuxer and its default device for the running platform.
func inputFormat() (string, string) {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation", ":default"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "pulse", "default"
	}
}

// Check fails with fault.ErrMissingRequirements when ffmpeg is not installed.
func Check() error {
	_, err := binary.Require(name)

	return err
}
