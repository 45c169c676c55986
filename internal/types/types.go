package types

type BitDepth uint

const (
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
)

// PCMFormat describes interleaved integer PCM as produced by ffmpeg or read from a WAV container.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}

// ReferencePitch is a named target frequency, one per guitar string.
type ReferencePitch struct {
	Name      string
	Frequency float64 // Hz, strictly positive
}

// Detection contains results returned by the spectral estimator.
type Detection struct {
	Frequency     float64 // dominant frequency, Hz
	BinIndex      int     // index of the winning bin in the non-negative half
	BinWidth      float64 // sampleRate / N
	PeakMagnitude float64 // magnitude at BinIndex
	Mean          float64 // DC offset removed before the transform
	Samples       int     // N
}

// Match pairs a detected frequency with its closest reference pitch.
type Match struct {
	Pitch     ReferencePitch
	Deviation float64 // |detected - Pitch.Frequency|, Hz
}

// Verdict is the outcome of comparing a match deviation against the tolerance.
type Verdict int

const (
	InTune Verdict = iota
	TooHigh
	TooLow
)

func (v Verdict) String() string {
	switch v {
	case InTune:
		return "in tune"
	case TooHigh:
		return "too high"
	case TooLow:
		return "too low"
	}

	return "unknown"
}

// Advice returns what to do with the tuning peg.
func (v Verdict) Advice() string {
	switch v {
	case InTune:
		return "string is in tune"
	case TooHigh:
		return "loosen a little"
	case TooLow:
		return "tighten a little"
	}

	return ""
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Level contains results returned by the level meter.
type Level struct {
	PeakDb         float64 // dBFS
	RmsDb          float64 // dBFS
	ClipEvents     int     // runs of at least 2 full-scale samples
	ClippedSamples uint64
	LongestRun     uint64
	Samples        int
}
