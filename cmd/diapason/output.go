//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/diapason"
	"github.com/farcloser/diapason/internal/output"
)

// newReporter prints every reading with the chosen formatter, labelled with its origin and cycle number.
func newReporter(label, formatName string, debug bool, writer io.Writer) (diapason.Reporter, error) {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return nil, err
	}

	cycle := 0

	return diapason.ReporterFunc(func(_ context.Context, reading *diapason.Reading) error {
		cycle++

		var meta map[string]any
		if debug {
			meta = output.ReadingToMap(reading)
		} else {
			meta = output.FriendlyReading(reading)
		}

		data := &format.Data{
			Object: fmt.Sprintf("%s #%d", label, cycle),
			Meta:   meta,
		}

		return formatter.PrintAll([]*format.Data{data}, writer)
	}), nil
}

func outputMaps(objects []string, metas []map[string]any, formatName string) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	data := make([]*format.Data, 0, len(objects))
	for i, object := range objects {
		data = append(data, &format.Data{Object: object, Meta: metas[i]})
	}

	return formatter.PrintAll(data, os.Stdout)
}
