// Package reference holds the tables of target pitches a string is matched against.
package reference

import (
	"errors"
	"fmt"
	"math"

	"github.com/farcloser/diapason/internal/types"
)

var (
	ErrEmptyTable       = errors.New("reference table is empty")
	ErrDuplicatePitch   = errors.New("duplicate reference pitch")
	ErrInvalidFrequency = errors.New("reference frequency must be positive and finite")
	ErrUnknownTuning    = errors.New("unknown tuning")
)

// Table is an ordered, read-only set of reference pitches.
// Order matters: it is the tie-break order used by the matcher.
type Table struct {
	pitches []types.ReferencePitch
}

// New validates pitches and returns a table holding a private copy of them.
func New(pitches ...types.ReferencePitch) (*Table, error) {
	if len(pitches) == 0 {
		return nil, ErrEmptyTable
	}

	seen := make(map[string]struct{}, len(pitches))

	for _, pitch := range pitches {
		if pitch.Frequency <= 0 || math.IsInf(pitch.Frequency, 0) || math.IsNaN(pitch.Frequency) {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidFrequency, pitch.Name, pitch.Frequency)
		}

		if _, ok := seen[pitch.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePitch, pitch.Name)
		}

		seen[pitch.Name] = struct{}{}
	}

	return &Table{pitches: append([]types.ReferencePitch(nil), pitches...)}, nil
}

// Pitches returns a copy of the table in iteration order.
func (t *Table) Pitches() []types.ReferencePitch {
	return append([]types.ReferencePitch(nil), t.pitches...)
}

// Len returns the number of pitches.
func (t *Table) Len() int {
	return len(t.pitches)
}

// At returns the pitch at position i.
func (t *Table) At(i int) types.ReferencePitch {
	return t.pitches[i]
}

// Tunings are listed from the highest string (1st) down to the lowest (6th).
//
//nolint:gochecknoglobals // configuration data, effectively const
var tunings = map[string][]types.ReferencePitch{
	"standard": {
		{Name: "E4", Frequency: 329.63},
		{Name: "B3", Frequency: 246.94},
		{Name: "G3", Frequency: 196.00},
		{Name: "D3", Frequency: 146.83},
		{Name: "A2", Frequency: 110.00},
		{Name: "E2", Frequency: 82.41},
	},
	"drop-d": {
		{Name: "E4", Frequency: 329.63},
		{Name: "B3", Frequency: 246.94},
		{Name: "G3", Frequency: 196.00},
		{Name: "D3", Frequency: 146.83},
		{Name: "A2", Frequency: 110.00},
		{Name: "D2", Frequency: 73.42},
	},
	"eb-standard": {
		{Name: "Eb4", Frequency: 311.13},
		{Name: "Bb3", Frequency: 233.08},
		{Name: "Gb3", Frequency: 185.00},
		{Name: "Db3", Frequency: 138.59},
		{Name: "Ab2", Frequency: 103.83},
		{Name: "Eb2", Frequency: 77.78},
	},
}

// TuningNames lists the known tunings, standard first.
func TuningNames() []string {
	return []string{"standard", "drop-d", "eb-standard"}
}

// Tuning builds the table for a named tuning.
func Tuning(name string) (*Table, error) {
	pitches, ok := tunings[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (valid: %v)", ErrUnknownTuning, name, TuningNames())
	}

	return New(pitches...)
}

// Standard returns the six-string standard tuning table.
func Standard() *Table {
	table, err := Tuning("standard")
	if err != nil {
		panic(err)
	}

	return table
}
