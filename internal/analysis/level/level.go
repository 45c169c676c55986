// Package level measures how hot a capture window is.
package level

import (
	"math"

	"github.com/farcloser/diapason/internal/analysis/dcoffset"
	"github.com/farcloser/diapason/internal/pcm"
	"github.com/farcloser/diapason/internal/types"
)

// FullScale is the largest positive normalized value a 16-bit converter can produce.
// Samples at or beyond it, in either direction, count as clipped.
const FullScale = (pcm.MaxValue16 - 1) / pcm.MaxValue16

// minRun is the number of consecutive full-scale samples that make a clip event.
const minRun = 2

// Measure returns peak and RMS levels plus clipping runs for a window of normalized samples.
func Measure(samples []float64) *types.Level {
	result := &types.Level{
		Samples: len(samples),
	}

	var (
		peak        float64
		sumSquares  float64
		consecutive uint64
	)

	flush := func() {
		if consecutive >= minRun {
			result.ClipEvents++

			result.ClippedSamples += consecutive
			if consecutive > result.LongestRun {
				result.LongestRun = consecutive
			}
		}

		consecutive = 0
	}

	for _, sample := range samples {
		abs := math.Abs(sample)
		peak = math.Max(peak, abs)
		sumSquares += sample * sample

		if abs >= FullScale {
			consecutive++
		} else {
			flush()
		}
	}

	flush()

	result.PeakDb = dcoffset.Db(peak)
	if len(samples) > 0 {
		result.RmsDb = dcoffset.Db(math.Sqrt(sumSquares / float64(len(samples))))
	} else {
		result.RmsDb = dcoffset.FloorDb
	}

	return result
}
