package capture

import (
	"fmt"
	"strings"

	"github.com/gen2brain/malgo"
)

// miniaudioDevice captures from the default input device via malgo
type miniaudioDevice struct {
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
	sampleRate uint32
	channels   uint32
}

// OpenMiniaudio is the production DeviceOpener. It initializes a miniaudio
// context and a capture device delivering interleaved S16LE PCM at the
// requested format.
func OpenMiniaudio(sampleRate, channels int) (Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, classifyInitError(err)
	}

	return &miniaudioDevice{
		ctx:        ctx,
		sampleRate: uint32(sampleRate),
		channels:   uint32(channels),
	}, nil
}

func (d *miniaudioDevice) Start(onData func(pcm []byte)) error {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = d.channels
	deviceConfig.SampleRate = d.sampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: func(outputSamples, inputSamples []byte, frameCount uint32) {
			onData(inputSamples)
		},
	}

	device, err := malgo.InitDevice(d.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return classifyInitError(err)
	}

	d.device = device
	if err := device.Start(); err != nil {
		device.Uninit()
		d.device = nil
		return classifyInitError(err)
	}
	return nil
}

// Stop halts capture and frees the miniaudio context. The hardware input
// indicator turns off here.
func (d *miniaudioDevice) Stop() error {
	if d.device != nil {
		if err := d.device.Stop(); err != nil {
			d.device.Uninit()
			d.ctx.Free()
			return fmt.Errorf("failed to stop capture device: %w", err)
		}
		d.device.Uninit()
		d.device = nil
	}
	if d.ctx != nil {
		d.ctx.Free()
		d.ctx = nil
	}
	return nil
}

// classifyInitError maps platform errors onto the capture error taxonomy.
func classifyInitError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "access denied") || strings.Contains(msg, "permission") {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	if strings.Contains(msg, "no device") || strings.Contains(msg, "device type") ||
		strings.Contains(msg, "no backend") {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return err
}
