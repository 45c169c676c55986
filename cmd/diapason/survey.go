//nolint:wrapcheck
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/diapason"
	"github.com/farcloser/diapason/internal/output"
)

var (
	errSurveyArgs   = errors.New("expected exactly one argument: folder path")
	errNotDirectory = errors.New("not a directory")
	errNoRecordings = errors.New("no recordings found")
)

//nolint:gochecknoglobals // configuration data, effectively const
var recordingExtensions = []string{".wav", ".flac", ".m4a", ".mp3", ".ogg"}

// Record is a single line in the JSONL survey.
//
//nolint:tagliatelle
type Record struct {
	File      string         `json:"file,omitempty"`
	Windows   int            `json:"windows"`
	Verdicts  map[string]int `json:"verdicts,omitempty"`
	Strongest map[string]any `json:"strongest,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timing    *RecordTiming  `json:"timing,omitempty"`
}

// RecordTiming captures per-file processing durations in milliseconds.
type RecordTiming struct {
	DecodeMs  float64 `json:"decode_ms"`
	AnalyzeMs float64 `json:"analyze_ms"`
	TotalMs   float64 `json:"total_ms"`
}

func surveyCommand() *cli.Command {
	return &cli.Command{
		Name:      "survey",
		Usage:     "Replay every recording in a folder and write one JSONL record per file",
		ArgsUsage: "<folder>",
		Flags: append(tunerFlags(),
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report path, - for stdout",
				Value:   "-",
			},
			&cli.BoolFlag{
				Name:  "compress",
				Usage: "Also write a gzipped copy of the report (ignored for stdout)",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errSurveyArgs, cmd.NArg())
			}

			opts, err := parseOptions(cmd)
			if err != nil {
				return err
			}

			ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stopSignals()

			return runSurvey(ctx, cmd.Args().First(), cmd.String("output"), cmd.Bool("compress"),
				max(cmd.Int("workers"), 1), opts)
		},
	}
}

func runSurvey(ctx context.Context, folder, outputPath string, compress bool, workers int, opts diapason.Options) error {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", folder, errNotDirectory)
	}

	files, err := collectRecordings(folder)
	if err != nil {
		return fmt.Errorf("scanning folder: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("%q: %w", folder, errNoRecordings)
	}

	fmt.Fprintf(os.Stderr, "Found %d recordings to analyze (%d workers)\n", len(files), workers)

	startTime := time.Now()
	results := make([]Record, len(files))

	var progress atomic.Int64

	sem := make(chan struct{}, workers)

	var waitGroup sync.WaitGroup

	for idx, filePath := range files {
		waitGroup.Add(1)

		go func(idx int, filePath string) {
			defer waitGroup.Done()

			sem <- struct{}{}

			defer func() { <-sem }()

			results[idx] = surveyFile(ctx, filePath, opts)

			done := progress.Add(1)
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, len(files), filePath)
		}(idx, filePath)
	}

	waitGroup.Wait()

	if err = writeRecords(results, outputPath); err != nil {
		return err
	}

	if compress && outputPath != "-" {
		if err := compressFile(outputPath); err != nil {
			slog.Error("compressing report", "error", err)
		}
	}

	printDigest(results, time.Since(startTime))

	return nil
}

// surveyFile replays one recording to the end and keeps the reading with the strongest spectral peak.
func surveyFile(ctx context.Context, filePath string, opts diapason.Options) Record {
	fileStart := time.Now()
	timing := &RecordTiming{}

	source, err := openRecording(ctx, filePath, 0, false)

	timing.DecodeMs = durationMs(time.Since(fileStart))

	if err != nil {
		return Record{File: filePath, Error: fmt.Sprintf("open failed: %v", err), Timing: timing}
	}
	defer closeSource(source)

	record := Record{File: filePath, Verdicts: map[string]int{}, Timing: timing}

	var strongest *diapason.Reading

	reporter := diapason.ReporterFunc(func(_ context.Context, reading *diapason.Reading) error {
		record.Windows++
		record.Verdicts[reading.Verdict.String()]++

		if strongest == nil || reading.Detection.PeakMagnitude > strongest.Detection.PeakMagnitude {
			strongest = reading
		}

		return nil
	})

	analyzeStart := time.Now()

	stop, err := diapason.Listen(ctx, source, reporter, opts)

	timing.AnalyzeMs = durationMs(time.Since(analyzeStart))
	timing.TotalMs = durationMs(time.Since(fileStart))

	switch stop {
	case diapason.StopFailed:
		record.Error = fmt.Sprintf("analysis failed: %v", err)
	case diapason.StopCancelled:
		if ctx.Err() != nil {
			record.Error = "interrupted"
		}
	case diapason.StopExhausted:
	}

	if strongest != nil {
		record.Strongest = output.ReadingToMap(strongest)
	}

	return record
}

func writeRecords(results []Record, outputPath string) error {
	var out io.Writer = os.Stdout

	if outputPath != "-" {
		file, err := os.Create(outputPath) //nolint:gosec // CLI tool writes user-specified paths
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()

		out = file
	}

	enc := json.NewEncoder(out)

	for idx := range results {
		if err := enc.Encode(&results[idx]); err != nil {
			slog.Error("writing record", "file", results[idx].File, "error", err)
		}
	}

	return nil
}

func printDigest(results []Record, elapsed time.Duration) {
	failed := 0
	tally := map[string]int{}

	for idx := range results {
		record := &results[idx]

		if record.Error != "" {
			failed++
		}

		if verdict, ok := record.Strongest["verdict"].(string); ok {
			tally[verdict]++
		}
	}

	fmt.Fprintf(os.Stderr, "\nDone: %d recordings in %s (%d failed)\n",
		len(results), elapsed.Truncate(time.Millisecond), failed)

	for _, verdict := range []diapason.Verdict{diapason.InTune, diapason.TooHigh, diapason.TooLow} {
		fmt.Fprintf(os.Stderr, "  %-9s %d\n", verdict.String()+":", tally[verdict.String()])
	}
}

func collectRecordings(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if slices.Contains(recordingExtensions, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}

func compressFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}

	gzFile, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer gzFile.Close()

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := gzWriter.Write(data); err != nil {
		return err
	}

	return gzWriter.Close()
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
