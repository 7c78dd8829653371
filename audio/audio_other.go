//go:build !linux

package audio

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:      hex.EncodeToString(d.ID.Pointer()[:]),
			Name:    d.Name(),
			Default: d.IsDefault != 0,
		})
	}
	return result, nil
}

func (m *malgoContext) NewPlayback(device *DeviceInfo, config PlaybackConfig) (Output, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	if device != nil {
		idBytes, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device ID: %w", err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		deviceConfig.Playback.DeviceID = devID.Pointer()
	}

	out := &malgoOutput{queue: newBufferQueue()}

	callbacks := malgo.DeviceCallbacks{
		Data: func(dst, _ []byte, frameCount uint32) {
			out.fill(dst, frameCount*config.Channels)
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		out.queue.close()
		return nil, err
	}
	out.device = dev
	return out, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoOutput struct {
	device  *malgo.Device
	queue   *bufferQueue
	scratch []int16 // reused across data callbacks, single-threaded
}

func (o *malgoOutput) fill(dst []byte, samples uint32) {
	n := int(samples)
	if cap(o.scratch) < n {
		o.scratch = make([]int16, n)
	}
	buf := o.scratch[:n]
	o.queue.fill(buf)
	for i, s := range buf {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(s))
	}
}

func (o *malgoOutput) Start() error {
	return o.device.Start()
}

func (o *malgoOutput) Stop() {
	o.device.Stop()
}

func (o *malgoOutput) Close() {
	o.device.Uninit()
	o.queue.close()
}

func (o *malgoOutput) SetGain(gain float64) {
	o.queue.setGain(gain)
}

func (o *malgoOutput) Enqueue(pcm []int16, done func()) error {
	return o.queue.enqueue(pcm, done)
}
