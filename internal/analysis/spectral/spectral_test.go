package spectral

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

const testRate = 44100.0

func sine(freq, sampleRate float64, n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}

	return samples
}

func TestEstimateSine(t *testing.T) {
	for _, transform := range []Transform{TransformGonum, TransformGoDSP} {
		for _, freq := range []float64{80, 110, 115, 196, 329} {
			det, err := Estimate(sine(freq, testRate, int(testRate)), testRate, Options{Transform: transform})
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", transform, err)
			}

			if math.Abs(det.Frequency-freq) > 0.5 {
				t.Fatalf("%s: expected %.1f Hz, got %.3f", transform, freq, det.Frequency)
			}

			if det.BinWidth != 1 {
				t.Fatalf("%s: expected 1 Hz bins, got %v", transform, det.BinWidth)
			}
		}
	}
}

func TestEstimateIgnoresDCOffset(t *testing.T) {
	samples := sine(146.83, testRate, int(testRate))
	for i := range samples {
		samples[i] += 0.6
	}

	det, err := Estimate(samples, testRate, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(det.Frequency-147) > 1 {
		t.Fatalf("expected ~147 Hz, got %.3f", det.Frequency)
	}

	if math.Abs(det.Mean-0.6) > 1e-3 {
		t.Fatalf("expected mean ~0.6, got %v", det.Mean)
	}
}

func TestEstimateConstantSignal(t *testing.T) {
	for _, value := range []float64{0, 0.5, 0.3, -1} {
		samples := make([]float64, 4096)
		for i := range samples {
			samples[i] = value
		}

		det, err := Estimate(samples, testRate, DefaultOptions())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if det.Frequency != 0 || det.BinIndex != 0 {
			t.Fatalf("constant %v: expected bin 0 / 0 Hz, got bin %d / %v Hz", value, det.BinIndex, det.Frequency)
		}
	}
}

func TestEstimateRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for _, n := range []int{2, 3, 5, 16, 1000, 4096} {
		for range 20 {
			samples := make([]float64, n)
			for i := range samples {
				samples[i] = rng.Float64()*2 - 1
			}

			for _, transform := range []Transform{TransformGonum, TransformGoDSP} {
				det, err := Estimate(samples, testRate, Options{Transform: transform})
				if err != nil {
					t.Fatalf("n=%d: unexpected error: %v", n, err)
				}

				if det.Frequency < 0 || det.Frequency >= testRate/2 {
					t.Fatalf("n=%d %s: frequency %v out of [0, %v)", n, transform, det.Frequency, testRate/2)
				}
			}
		}
	}
}

func TestEstimateIdempotent(t *testing.T) {
	samples := sine(246.94, testRate, 8192)

	first, err := Estimate(samples, testRate, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := Estimate(samples, testRate, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *first != *second {
		t.Fatalf("expected identical detections, got %+v and %+v", first, second)
	}
}

func TestEstimateShortWindow(t *testing.T) {
	for _, samples := range [][]float64{nil, {0.1}} {
		if _, err := Estimate(samples, testRate, DefaultOptions()); !errors.Is(err, ErrWindowTooShort) {
			t.Fatalf("expected ErrWindowTooShort for %d samples, got %v", len(samples), err)
		}
	}
}

func TestBinFrequencies(t *testing.T) {
	cases := []struct {
		n        int
		rate     float64
		expected []float64
	}{
		{n: 4, rate: 4, expected: []float64{0, 1, -2, -1}},
		{n: 5, rate: 5, expected: []float64{0, 1, 2, -2, -1}},
		{n: 8, rate: 16, expected: []float64{0, 2, 4, 6, -8, -6, -4, -2}},
	}

	for _, tc := range cases {
		got := BinFrequencies(tc.n, tc.rate)
		for i := range tc.expected {
			if got[i] != tc.expected[i] {
				t.Fatalf("n=%d: bin %d expected %v, got %v", tc.n, i, tc.expected[i], got[i])
			}
		}
	}
}

func TestFindMaximumFirstWins(t *testing.T) {
	peak, idx := findMaximum([]float64{1, 3, 3, 2})
	if peak != 3 || idx != 1 {
		t.Fatalf("expected (3, 1), got (%v, %d)", peak, idx)
	}

	peak, idx = findMaximum([]float64{0, 0, 0})
	if peak != 0 || idx != 0 {
		t.Fatalf("expected (0, 0) for silence, got (%v, %d)", peak, idx)
	}

	_, idx = findMaximum([]float64{math.NaN(), math.NaN()})
	if idx != 0 {
		t.Fatalf("expected index 0 for NaN buffer, got %d", idx)
	}
}
