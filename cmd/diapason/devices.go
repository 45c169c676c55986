//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/diapason/internal/capture"
	"github.com/farcloser/diapason/internal/capture/miniaudio"
	"github.com/farcloser/diapason/internal/capture/portaudio"
	"github.com/farcloser/diapason/internal/output"
)

var errNoListing = errors.New("device listing is not available for this backend")

func devicesCommand() *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "List capture devices",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"S"},
				Usage:   "Capture backend: portaudio, miniaudio",
				Value:   "portaudio",
				Sources: cli.EnvVars("DIAPASON_SOURCE"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			var (
				devices []capture.Device
				err     error
			)

			switch backend := cmd.String("source"); backend {
			case "portaudio", "":
				devices, err = portaudio.Devices()
			case "miniaudio":
				devices, err = miniaudio.Devices()
			case "ffmpeg":
				return fmt.Errorf("%w: %s", errNoListing, backend)
			default:
				return fmt.Errorf("%w %q (valid: portaudio, miniaudio)", errUnknownBackend, backend)
			}

			if err != nil {
				return err
			}

			if len(devices) == 0 {
				return capture.ErrNoDevice
			}

			names := make([]string, 0, len(devices))
			metas := make([]map[string]any, 0, len(devices))

			for _, device := range devices {
				names = append(names, device.Name)
				metas = append(metas, output.DeviceToMap(device))
			}

			return outputMaps(names, metas, cmd.String("format"))
		},
	}
}
