package tests_test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// writeTone renders a sine with the tone command into the test temp dir and returns its path.
func writeTone(data test.Data, helpers test.Helpers, name string, frequency float64, extra ...string) string {
	return writeToneAt(helpers, data.Temp().Path(name), frequency, extra...)
}

func writeToneAt(helpers test.Helpers, path string, frequency float64, extra ...string) string {
	args := append([]string{"tone", "--frequency", fmt.Sprint(frequency)}, extra...)
	helpers.Ensure(append(args, path)...)

	return path
}

// writeFloatTone writes two seconds of a sine as a mono 32-bit float WAV at 8kHz.
// The tone command only renders integer PCM, so the file is assembled here.
func writeFloatTone(data test.Data, helpers test.Helpers, name string, frequency float64) string {
	const (
		sampleRate = 8000
		frames     = 2 * sampleRate
	)

	var out bytes.Buffer

	out.WriteString("RIFF")
	_ = binary.Write(&out, binary.LittleEndian, uint32(4+8+16+8+frames*4))
	out.WriteString("WAVE")
	out.WriteString("fmt ")

	for _, v := range []any{uint32(16), uint16(3), uint16(1), uint32(sampleRate), uint32(sampleRate * 4), uint16(4), uint16(32)} {
		_ = binary.Write(&out, binary.LittleEndian, v)
	}

	out.WriteString("data")
	_ = binary.Write(&out, binary.LittleEndian, uint32(frames*4))

	for i := range frames {
		_ = binary.Write(&out, binary.LittleEndian, float32(0.5*math.Sin(2*math.Pi*frequency*float64(i)/sampleRate)))
	}

	path := data.Temp().Path(name)
	if err := os.WriteFile(path, out.Bytes(), 0o600); err != nil {
		helpers.T().Log(err.Error())
		helpers.T().Fail()
	}

	return path
}

// expectReading returns a comparator verifying that a reading matched pitch with the given verdict.
// It looks for a reading block containing: nearest: <pitch> (..., verdict: <verdict>.
func expectReading(pitch, verdict string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		nearestLine := fmt.Sprintf("nearest: %s (", pitch)
		verdictLine := fmt.Sprintf("verdict: %s", verdict)

		if readingBlockContains(stdout, nearestLine, verdictLine) {
			return
		}

		testing.Log(fmt.Sprintf("expected %s %q not found in output:\n%s", pitch, verdict, stdout))
		testing.Fail()
	}
}

// readingBlockContains checks whether a block holding anchor also holds target in adjacent lines.
func readingBlockContains(stdout, anchor, target string) bool {
	lines := strings.Split(stdout, "\n")

	for i, line := range lines {
		if !strings.Contains(line, anchor) {
			continue
		}

		for j := max(0, i-5); j < min(len(lines), i+5); j++ {
			if strings.Contains(lines[j], target) {
				return true
			}
		}
	}

	return false
}

// expectReadingCount returns a comparator verifying how many readings were printed.
func expectReadingCount(count int) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if got := strings.Count(stdout, "verdict: "); got != count {
			testing.Log(fmt.Sprintf("expected %d readings, got %d in output:\n%s", count, got, stdout))
			testing.Fail()
		}
	}
}

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}
