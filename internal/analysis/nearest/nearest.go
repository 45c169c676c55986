// Package nearest matches a frequency to the closest pitch of a reference table.
package nearest

import (
	"errors"
	"math"

	"github.com/farcloser/diapason/internal/analysis/reference"
	"github.com/farcloser/diapason/internal/types"
)

var ErrEmptyTable = errors.New("cannot match against an empty reference table")

// Find scans the table in order and returns the pitch with the smallest absolute deviation.
// When several pitches are equally close, the first one in table order wins.
func Find(frequency float64, table *reference.Table) (*types.Match, error) {
	if table == nil || table.Len() == 0 {
		return nil, ErrEmptyTable
	}

	best := table.At(0)
	bestDeviation := math.Abs(frequency - best.Frequency)

	for i := 1; i < table.Len(); i++ {
		pitch := table.At(i)

		deviation := math.Abs(frequency - pitch.Frequency)
		if deviation < bestDeviation {
			best = pitch
			bestDeviation = deviation
		}
	}

	return &types.Match{
		Pitch:     best,
		Deviation: bestDeviation,
	}, nil
}
