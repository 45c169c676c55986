// Package output provides shared reading serialization for diapason formatters.
package output

import (
	"fmt"

	"github.com/farcloser/diapason"
	"github.com/farcloser/diapason/internal/analysis/dcoffset"
	"github.com/farcloser/diapason/internal/capture"
	"github.com/farcloser/diapason/internal/types"
)

// ReadingToMap converts a reading into the canonical map structure
// used for JSON and markdown serialization.
func ReadingToMap(reading *diapason.Reading) map[string]any {
	meta := map[string]any{
		"frequency": reading.Frequency,
		"pitch":     reading.Pitch,
		"target":    reading.Target,
		"deviation": reading.Deviation,
		"cents":     reading.Cents,
		"verdict":   reading.Verdict.String(),
		"advice":    reading.Advice(),
	}

	if d := reading.Detection; d != nil {
		meta["detection"] = DetectionToMap(d)
	}

	if l := reading.Level; l != nil {
		meta["level"] = LevelToMap(l)
	}

	return meta
}

// DetectionToMap converts raw estimator output to a map.
func DetectionToMap(detection *types.Detection) map[string]any {
	return map[string]any{
		"bin_index":      detection.BinIndex,
		"bin_width":      detection.BinWidth,
		"peak_magnitude": detection.PeakMagnitude,
		"dc_offset":      detection.Mean,
		"dc_offset_db":   dcoffset.Db(detection.Mean),
		"samples":        detection.Samples,
	}
}

// LevelToMap converts level meter results to a map.
func LevelToMap(level *types.Level) map[string]any {
	return map[string]any{
		"peak_db":         level.PeakDb,
		"rms_db":          level.RmsDb,
		"clip_events":     level.ClipEvents,
		"clipped_samples": level.ClippedSamples,
		"longest_run":     level.LongestRun,
		"samples":         level.Samples,
	}
}

// FriendlyReading is the short form shown on a console while tuning.
func FriendlyReading(reading *diapason.Reading) map[string]any {
	meta := map[string]any{
		"detected": fmt.Sprintf("%.2f Hz", reading.Frequency),
		"nearest":  fmt.Sprintf("%s (%.2f Hz)", reading.Pitch, reading.Target),
		"offset":   fmt.Sprintf("%+.2f Hz (%+.0f cents)", reading.Frequency-reading.Target, reading.Cents),
		"verdict":  reading.Verdict.String(),
		"advice":   reading.Advice(),
	}

	if l := reading.Level; l != nil && l.ClipEvents > 0 {
		meta["warning"] = fmt.Sprintf("input is clipping (%d events), lower the gain", l.ClipEvents)
	}

	return meta
}

// DeviceToMap converts a capture device description to a map.
func DeviceToMap(device capture.Device) map[string]any {
	return map[string]any{
		"channels":            device.Channels,
		"default_sample_rate": device.DefaultSampleRate,
		"default":             device.Default,
	}
}
