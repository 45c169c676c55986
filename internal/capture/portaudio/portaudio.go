// Package portaudio captures microphone windows through a blocking PortAudio input stream.
package portaudio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/farcloser/primordium/fault"
	pa "github.com/gordonklaus/portaudio"

	"github.com/farcloser/diapason/internal/capture"
	"github.com/farcloser/diapason/internal/pcm"
)

const framesPerBuffer = 1024

// Source reads from one input device. PortAudio stays initialized until Close.
type Source struct {
	device *pa.DeviceInfo
}

// Open initializes PortAudio and resolves the input device. An empty name selects the default input.
func Open(deviceName string) (*Source, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: portaudio: %w", fault.ErrMissingRequirements, err)
	}

	device, err := findDevice(deviceName)
	if err != nil {
		_ = pa.Terminate()

		return nil, err
	}

	slog.Debug("portaudio.Open", "device", device.Name, "default sample rate", device.DefaultSampleRate)

	return &Source{device: device}, nil
}

// Capture opens a stream for the duration of one window, so no stale audio leaks into the next cycle.
// The read is not interruptible: ctx is only honored between windows.
func (s *Source) Capture(_ context.Context, req capture.Request) (*capture.Window, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := pa.HighLatencyParameters(s.device, nil)
	params.Input.Channels = req.Channels
	params.SampleRate = req.SampleRate
	params.FramesPerBuffer = framesPerBuffer

	buf := make([]float32, framesPerBuffer*req.Channels)

	stream, err := pa.OpenStream(params, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: opening stream on %s: %w", fault.ErrReadFailure, s.device.Name, err)
	}
	defer stream.Close()

	if err = stream.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting stream: %w", fault.ErrReadFailure, err)
	}

	want := req.Frames() * req.Channels
	interleaved := make([]float32, 0, want+len(buf))

	for len(interleaved) < want {
		if err = stream.Read(); err != nil {
			if !errors.Is(err, pa.InputOverflowed) {
				_ = stream.Stop()

				return nil, fmt.Errorf("%w: reading stream: %w", fault.ErrReadFailure, err)
			}

			slog.Debug("portaudio.Capture", "stage", "overflow")
		}

		interleaved = append(interleaved, buf...)
	}

	if err = stream.Stop(); err != nil {
		return nil, fmt.Errorf("%w: stopping stream: %w", fault.ErrReadFailure, err)
	}

	samples, err := pcm.FirstChannel(interleaved[:want], req.Channels)
	if err != nil {
		return nil, err
	}

	return &capture.Window{Samples: samples, SampleRate: req.SampleRate}, nil
}

// Close releases PortAudio.
func (s *Source) Close() error {
	return pa.Terminate()
}

// Devices lists the devices that can record.
func Devices() ([]capture.Device, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: portaudio: %w", fault.ErrMissingRequirements, err)
	}
	defer pa.Terminate() //nolint:errcheck

	infos, err := pa.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	var defaultName string
	if def, defErr := pa.DefaultInputDevice(); defErr == nil {
		defaultName = def.Name
	}

	devices := make([]capture.Device, 0, len(infos))

	for _, info := range infos {
		if info.MaxInputChannels <= 0 {
			continue
		}

		devices = append(devices, capture.Device{
			Name:              info.Name,
			Channels:          info.MaxInputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			Default:           info.Name == defaultName,
		})
	}

	return devices, nil
}

func findDevice(name string) (*pa.DeviceInfo, error) {
	if name == "" {
		device, err := pa.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", capture.ErrNoDevice, err)
		}

		return device, nil
	}

	infos, err := pa.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	for _, info := range infos {
		if info.Name == name && info.MaxInputChannels > 0 {
			return info, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", capture.ErrNoDevice, name)
}
