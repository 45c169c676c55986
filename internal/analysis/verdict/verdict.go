// Package verdict turns a match into directional tuning feedback.
package verdict

import "github.com/farcloser/diapason/internal/types"

// DefaultTolerance is the deviation, in Hz, under which a string counts as in tune.
const DefaultTolerance = 1.0

// Classify compares the match deviation with tolerance.
// The bound is strict: a deviation equal to tolerance is out of tune.
func Classify(detected float64, match types.Match, tolerance float64) types.Verdict {
	if match.Deviation < tolerance {
		return types.InTune
	}

	if detected > match.Pitch.Frequency {
		return types.TooHigh
	}

	return types.TooLow
}
