package diapason

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/diapason/internal/capture"
	"github.com/farcloser/diapason/internal/tone"
)

// scripted plays back a fixed list of frequencies, one per window, then reports exhaustion.
type scripted struct {
	frequencies []float64
	captures    int
	requests    []capture.Request
	err         error
	onCapture   func(n int)
}

func (s *scripted) Capture(_ context.Context, req capture.Request) (*capture.Window, error) {
	s.requests = append(s.requests, req)
	s.captures++

	if s.onCapture != nil {
		s.onCapture(s.captures)
	}

	if s.captures > len(s.frequencies) {
		if s.err != nil {
			return nil, s.err
		}

		return nil, capture.ErrExhausted
	}

	freq := s.frequencies[s.captures-1]

	return &capture.Window{
		Samples:    tone.Sine(freq, int(req.SampleRate), req.Duration),
		SampleRate: req.SampleRate,
	}, nil
}

func (s *scripted) Close() error {
	return nil
}

// blocking waits for cancellation on every capture, like a live device interrupted mid-window.
type blocking struct {
	started chan struct{}
}

func (b *blocking) Capture(ctx context.Context, _ capture.Request) (*capture.Window, error) {
	close(b.started)
	<-ctx.Done()

	return nil, ctx.Err()
}

func (b *blocking) Close() error {
	return nil
}

type collector struct {
	readings []*Reading
	err      error
}

func (c *collector) Report(_ context.Context, reading *Reading) error {
	c.readings = append(c.readings, reading)

	return c.err
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.SampleRate = 8000

	return opts
}

func TestListenExhausted(t *testing.T) {
	source := &scripted{frequencies: []float64{110, 115, 80}}
	reporter := &collector{}

	stop, err := Listen(context.Background(), source, reporter, testOptions())
	if err != nil || stop != StopExhausted {
		t.Fatalf("expected exhausted without error, got %s (%v)", stop, err)
	}

	expected := []struct {
		pitch   string
		verdict Verdict
	}{
		{"A2", InTune},
		{"A2", TooHigh},
		{"E2", TooLow},
	}

	if len(reporter.readings) != len(expected) {
		t.Fatalf("expected %d readings, got %d", len(expected), len(reporter.readings))
	}

	for i, want := range expected {
		got := reporter.readings[i]
		if got.Pitch != want.pitch || got.Verdict != want.verdict {
			t.Fatalf("reading %d: expected %s %s, got %s %s", i, want.pitch, want.verdict, got.Pitch, got.Verdict)
		}
	}

	for _, req := range source.requests {
		if req.SampleRate != 8000 || req.Duration != time.Second || req.Channels != 1 {
			t.Fatalf("unexpected request %+v", req)
		}
	}
}

func TestListenCycles(t *testing.T) {
	source := &scripted{frequencies: []float64{110, 110, 110, 110}}
	reporter := &collector{}

	opts := testOptions()
	opts.Cycles = 2

	stop, err := Listen(context.Background(), source, reporter, opts)
	if err != nil || stop != StopCancelled {
		t.Fatalf("expected cancelled without error, got %s (%v)", stop, err)
	}

	if len(reporter.readings) != 2 || source.captures != 2 {
		t.Fatalf("expected 2 captures and readings, got %d and %d", source.captures, len(reporter.readings))
	}
}

func TestListenCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &scripted{frequencies: []float64{110}}

	stop, err := Listen(ctx, source, &collector{}, testOptions())
	if err != nil || stop != StopCancelled {
		t.Fatalf("expected cancelled without error, got %s (%v)", stop, err)
	}

	if source.captures != 0 {
		t.Fatalf("expected no capture, got %d", source.captures)
	}
}

func TestListenFinishesCurrentCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancelled while the second window is being captured, after it completes.
	source := &scripted{
		frequencies: []float64{110, 115, 80},
		onCapture: func(n int) {
			if n == 2 {
				cancel()
			}
		},
	}
	reporter := &collector{}

	stop, err := Listen(ctx, source, reporter, testOptions())
	if err != nil || stop != StopCancelled {
		t.Fatalf("expected cancelled without error, got %s (%v)", stop, err)
	}

	if len(reporter.readings) != 2 {
		t.Fatalf("expected the in-flight window to be reported, got %d readings", len(reporter.readings))
	}

	if source.captures != 2 {
		t.Fatalf("expected no capture after cancellation, got %d", source.captures)
	}
}

func TestListenInterruptedCaptureIsNotReported(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &blocking{started: make(chan struct{})}
	reporter := &collector{}

	go func() {
		<-source.started
		cancel()
	}()

	stop, err := Listen(ctx, source, reporter, testOptions())
	if err != nil || stop != StopCancelled {
		t.Fatalf("expected cancelled without error, got %s (%v)", stop, err)
	}

	if len(reporter.readings) != 0 {
		t.Fatalf("expected no reading, got %d", len(reporter.readings))
	}
}

func TestListenCaptureFailure(t *testing.T) {
	source := &scripted{frequencies: []float64{110}, err: fault.ErrReadFailure}
	reporter := &collector{}

	stop, err := Listen(context.Background(), source, reporter, testOptions())
	if stop != StopFailed || !errors.Is(err, fault.ErrReadFailure) {
		t.Fatalf("expected failure wrapping ErrReadFailure, got %s (%v)", stop, err)
	}

	if len(reporter.readings) != 1 {
		t.Fatalf("expected the reading before the failure, got %d", len(reporter.readings))
	}

	if source.captures != 2 {
		t.Fatalf("expected no retry, got %d captures", source.captures)
	}
}

func TestListenReportFailure(t *testing.T) {
	errBroken := errors.New("broken pipe")
	source := &scripted{frequencies: []float64{110, 110}}

	stop, err := Listen(context.Background(), source, &collector{err: errBroken}, testOptions())
	if stop != StopFailed || !errors.Is(err, errBroken) {
		t.Fatalf("expected failure wrapping the reporter error, got %s (%v)", stop, err)
	}

	if source.captures != 1 {
		t.Fatalf("expected to stop after the first report, got %d captures", source.captures)
	}
}

func TestListenShortWindowFails(t *testing.T) {
	stop, err := Listen(context.Background(), shortSource{}, &collector{}, testOptions())
	if stop != StopFailed || err == nil {
		t.Fatalf("expected failure, got %s (%v)", stop, err)
	}
}

type shortSource struct{}

func (shortSource) Capture(_ context.Context, req capture.Request) (*capture.Window, error) {
	return &capture.Window{Samples: []float64{0.5}, SampleRate: req.SampleRate}, nil
}

func (shortSource) Close() error {
	return nil
}

func TestListenInvalidOptions(t *testing.T) {
	opts := testOptions()
	opts.Tolerance = -1

	source := &scripted{frequencies: []float64{110}}

	stop, err := Listen(context.Background(), source, &collector{}, opts)
	if stop != StopFailed || !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected invalid options, got %s (%v)", stop, err)
	}

	if source.captures != 0 {
		t.Fatalf("expected no capture, got %d", source.captures)
	}
}

func TestReporterFunc(t *testing.T) {
	var got []string

	reporter := ReporterFunc(func(_ context.Context, reading *Reading) error {
		got = append(got, reading.Pitch)

		return nil
	})

	stop, err := Listen(context.Background(), &scripted{frequencies: []float64{82, 147}}, reporter, testOptions())
	if err != nil || stop != StopExhausted {
		t.Fatalf("expected exhausted without error, got %s (%v)", stop, err)
	}

	if len(got) != 2 || got[0] != "E2" || got[1] != "D3" {
		t.Fatalf("unexpected pitches %v", got)
	}
}

// captureWarnings routes the default logger to a buffer for the duration of the test.
func captureWarnings(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	return &buf
}

func TestListenWarnsWhenInputShorterThanWindow(t *testing.T) {
	logs := captureWarnings(t)
	reporter := &collector{}

	stop, err := Listen(context.Background(), &scripted{}, reporter, testOptions())
	if err != nil || stop != StopExhausted {
		t.Fatalf("expected exhausted without error, got %s (%v)", stop, err)
	}

	if len(reporter.readings) != 0 {
		t.Fatalf("expected no reading, got %d", len(reporter.readings))
	}

	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "before the first full window") {
		t.Fatalf("expected a warning, got %q", logs.String())
	}
}

func TestListenExhaustedAfterReadingsDoesNotWarn(t *testing.T) {
	logs := captureWarnings(t)

	stop, err := Listen(context.Background(), &scripted{frequencies: []float64{110}}, &collector{}, testOptions())
	if err != nil || stop != StopExhausted {
		t.Fatalf("expected exhausted without error, got %s (%v)", stop, err)
	}

	if logs.Len() != 0 {
		t.Fatalf("expected no warning, got %q", logs.String())
	}
}
