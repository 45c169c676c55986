package diapason

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/farcloser/diapason/internal/capture"
)

// Reporter receives every completed reading, in order. It owns presentation.
type Reporter interface {
	Report(ctx context.Context, reading *Reading) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, reading *Reading) error

func (f ReporterFunc) Report(ctx context.Context, reading *Reading) error {
	return f(ctx, reading)
}

// Source is anything that can fill a capture window.
type Source = capture.Source

// Stop tells why Listen returned.
type Stop int

const (
	// StopCancelled means the context was cancelled or the cycle budget was spent.
	StopCancelled Stop = iota
	// StopExhausted means a finite source could not fill another window.
	StopExhausted
	// StopFailed means capture, analysis or reporting failed. The error is returned alongside.
	StopFailed
)

func (s Stop) String() string {
	switch s {
	case StopCancelled:
		return "cancelled"
	case StopExhausted:
		return "exhausted"
	case StopFailed:
		return "failed"
	}

	return "unknown"
}

type state int

const (
	stateIdle state = iota
	stateCapturing
	stateAnalyzing
	stateReporting
	stateCancelled
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateCapturing:
		return "capturing"
	case stateAnalyzing:
		return "analyzing"
	case stateReporting:
		return "reporting"
	case stateCancelled:
		return "cancelled"
	}

	return "unknown"
}

type loop struct {
	source   Source
	reporter Reporter
	opts     Options
	state    state
	cycle    int
}

func (l *loop) enter(next state) {
	slog.Debug("diapason.Listen", "cycle", l.cycle, "from", l.state, "to", next)
	l.state = next
}

// Listen captures, analyzes and reports one window at a time until ctx is cancelled,
// opts.Cycles windows were reported, or the source is exhausted.
// Cancellation is observed between cycles: a window that was fully captured is still
// reported, a window interrupted by cancellation never is.
// Only StopFailed comes with a non-nil error.
func Listen(ctx context.Context, source Source, reporter Reporter, opts Options) (Stop, error) {
	applyDefaults(&opts)

	if err := opts.Validate(); err != nil {
		return StopFailed, err
	}

	l := &loop{source: source, reporter: reporter, opts: opts}

	return l.run(ctx)
}

func (l *loop) run(ctx context.Context) (Stop, error) {
	req := l.opts.request()

	for ; ; l.cycle++ {
		if ctx.Err() != nil || (l.opts.Cycles > 0 && l.cycle >= l.opts.Cycles) {
			l.enter(stateCancelled)

			return StopCancelled, nil
		}

		l.enter(stateCapturing)
		slog.Debug("capturing", "cycle", l.cycle, "frames", req.Frames())

		window, err := l.source.Capture(ctx, req)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				l.enter(stateCancelled)

				return StopCancelled, nil
			case errors.Is(err, capture.ErrExhausted):
				if l.cycle == 0 {
					slog.Warn("input ended before the first full window, nothing analyzed",
						"window", req.Duration, "frames", req.Frames())
				}

				l.enter(stateIdle)

				return StopExhausted, nil
			default:
				return StopFailed, fmt.Errorf("capture failed: %w", err)
			}
		}

		l.enter(stateAnalyzing)

		reading, err := Analyze(window.Samples, window.SampleRate, l.opts)
		if err != nil {
			return StopFailed, fmt.Errorf("analysis failed: %w", err)
		}

		slog.Debug("diapason.Listen", "cycle", l.cycle, "reading", describe(reading))

		l.enter(stateReporting)

		if err = l.reporter.Report(ctx, reading); err != nil {
			return StopFailed, fmt.Errorf("report failed: %w", err)
		}

		l.enter(stateIdle)
	}
}
