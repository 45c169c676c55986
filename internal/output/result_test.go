package output

import (
	"testing"
	"time"

	"github.com/farcloser/diapason"
	"github.com/farcloser/diapason/internal/tone"
)

func TestReadingToMap(t *testing.T) {
	reading, err := diapason.Analyze(tone.Sine(115, 44100, time.Second), 44100, diapason.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meta := ReadingToMap(reading)

	if meta["pitch"] != "A2" || meta["verdict"] != "too high" || meta["advice"] != "loosen a little" {
		t.Fatalf("unexpected map %v", meta)
	}

	if meta["deviation"] != 5.0 || meta["frequency"] != 115.0 {
		t.Fatalf("unexpected numbers %v", meta)
	}

	detection, ok := meta["detection"].(map[string]any)
	if !ok {
		t.Fatalf("expected a detection block, got %T", meta["detection"])
	}

	if detection["bin_index"] != 115 || detection["samples"] != 44100 {
		t.Fatalf("unexpected detection %v", detection)
	}
}

func TestFriendlyReading(t *testing.T) {
	reading, err := diapason.Analyze(tone.Sine(80, 44100, time.Second), 44100, diapason.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meta := FriendlyReading(reading)

	if meta["nearest"] != "E2 (82.41 Hz)" || meta["detected"] != "80.00 Hz" || meta["verdict"] != "too low" {
		t.Fatalf("unexpected map %v", meta)
	}

	if meta["offset"] != "-2.41 Hz (-51 cents)" {
		t.Fatalf("unexpected offset %v", meta["offset"])
	}
}
