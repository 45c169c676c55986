// Package miniaudio captures microphone windows through miniaudio (malgo).
package miniaudio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/farcloser/primordium/fault"
	"github.com/gen2brain/malgo"

	"github.com/farcloser/diapason/internal/capture"
	"github.com/farcloser/diapason/internal/pcm"
)

var errDeviceStopped = errors.New("capture device stopped")

// Source owns a miniaudio context for its lifetime.
type Source struct {
	ctx    *malgo.AllocatedContext
	device *malgo.DeviceInfo
}

// Open initializes miniaudio and resolves the input device. An empty name selects the backend default.
func Open(deviceName string) (*Source, error) {
	ctx, err := initContext()
	if err != nil {
		return nil, err
	}

	source := &Source{ctx: ctx}

	if deviceName != "" {
		infos, err := ctx.Devices(malgo.Capture)
		if err != nil {
			_ = source.Close()

			return nil, fmt.Errorf("listing devices: %w", err)
		}

		for i := range infos {
			if infos[i].Name() == deviceName {
				info := infos[i]
				source.device = &info

				break
			}
		}

		if source.device == nil {
			_ = source.Close()

			return nil, fmt.Errorf("%w: %q", capture.ErrNoDevice, deviceName)
		}
	}

	return source, nil
}

// Capture starts the device, waits for exactly one window worth of frames, and stops it.
// The wait is not interruptible by ctx; it ends when the window is full or the device stops.
func (s *Source) Capture(_ context.Context, req capture.Request) (*capture.Window, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.Capture.Format = malgo.FormatF32
	config.Capture.Channels = uint32(req.Channels) //nolint:gosec // validated positive value
	config.SampleRate = uint32(req.SampleRate)     //nolint:gosec // validated positive value
	config.Alsa.NoMMap = 1

	if s.device != nil {
		config.Capture.DeviceID = s.device.ID.Pointer()
	}

	want := req.Frames() * req.Channels * 4

	var (
		mu       sync.Mutex
		raw      = make([]byte, 0, want)
		done     = make(chan struct{})
		failed   = make(chan struct{})
		doneOnce sync.Once
		failOnce sync.Once
	)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			mu.Lock()
			defer mu.Unlock()

			if len(raw) >= want {
				return
			}

			raw = append(raw, input[:min(len(input), want-len(raw))]...)
			if len(raw) >= want {
				doneOnce.Do(func() { close(done) })
			}
		},
		Stop: func() {
			select {
			case <-done:
			default:
				failOnce.Do(func() { close(failed) })
			}
		},
	}

	device, err := malgo.InitDevice(s.ctx.Context, config, callbacks)
	if err != nil {
		return nil, fmt.Errorf("%w: init device: %w", fault.ErrReadFailure, err)
	}
	defer device.Uninit()

	if err = device.Start(); err != nil {
		return nil, fmt.Errorf("%w: start device: %w", fault.ErrReadFailure, err)
	}

	select {
	case <-done:
	case <-failed:
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, errDeviceStopped)
	}

	// Stop triggers the stop callback; done is already closed so it is a no-op.
	if err = device.Stop(); err != nil {
		slog.Debug("miniaudio.Capture", "stage", "stop", "error", err)
	}

	mu.Lock()
	defer mu.Unlock()

	samples, err := pcm.DecodeFloat32FirstChannel(raw, req.Channels)
	if err != nil {
		return nil, err
	}

	return &capture.Window{Samples: samples, SampleRate: req.SampleRate}, nil
}

// Close frees the miniaudio context.
func (s *Source) Close() error {
	err := s.ctx.Uninit()
	s.ctx.Free()

	return err
}

// Devices lists capture devices known to miniaudio.
func Devices() ([]capture.Device, error) {
	ctx, err := initContext()
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	devices := make([]capture.Device, 0, len(infos))

	for i := range infos {
		name := infos[i].Name()
		if name == "" {
			name = "Unknown input"
		}

		devices = append(devices, capture.Device{
			Name:    name,
			Default: infos[i].IsDefault != 0,
		})
	}

	return devices, nil
}

func initContext() (*malgo.AllocatedContext, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("malgo", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: miniaudio: %w", fault.ErrMissingRequirements, err)
	}

	return ctx, nil
}
