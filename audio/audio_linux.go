//go:build linux

package audio

import (
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
)

type pulseContext struct {
	client *pulse.Client
}

func NewContext() (Context, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseContext{client: c}, nil
}

func (p *pulseContext) Devices() ([]DeviceInfo, error) {
	sinks, err := p.client.ListSinks()
	if err != nil {
		return nil, fmt.Errorf("pulse list sinks: %w", err)
	}
	defaultID := ""
	if def, err := p.client.DefaultSink(); err == nil && def != nil {
		defaultID = def.ID()
	}
	var devices []DeviceInfo
	for _, s := range sinks {
		devices = append(devices, DeviceInfo{
			ID:      s.ID(),
			Name:    s.Name(),
			Default: s.ID() == defaultID && defaultID != "",
		})
	}
	return devices, nil
}

func (p *pulseContext) NewPlayback(device *DeviceInfo, config PlaybackConfig) (Output, error) {
	return &pulseOutput{
		client: p.client,
		device: device,
		config: config,
		queue:  newBufferQueue(),
	}, nil
}

func (p *pulseContext) Close() {
	p.client.Close()
}

type pulseOutput struct {
	client *pulse.Client
	device *DeviceInfo
	config PlaybackConfig
	queue  *bufferQueue

	mu     sync.Mutex
	stream *pulse.PlaybackStream
}

func (o *pulseOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		o.queue.fill(buf)
		return len(buf), nil
	})

	opts := []pulse.PlaybackOption{
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(int(o.config.SampleRate)),
		pulse.PlaybackLatency(0.05),
	}
	if o.device != nil {
		sink, err := o.client.SinkByID(o.device.ID)
		if err == nil && sink != nil {
			opts = append(opts, pulse.PlaybackSink(sink))
		}
	}

	stream, err := o.client.NewPlayback(reader, opts...)
	if err != nil {
		return fmt.Errorf("pulse playback: %w", err)
	}
	o.stream = stream
	stream.Start()
	return nil
}

func (o *pulseOutput) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stream != nil {
		o.stream.Stop()
	}
}

func (o *pulseOutput) Close() {
	o.mu.Lock()
	if o.stream != nil {
		o.stream.Close()
		o.stream = nil
	}
	o.mu.Unlock()
	o.queue.close()
}

func (o *pulseOutput) SetGain(gain float64) {
	o.queue.setGain(gain)
}

func (o *pulseOutput) Enqueue(pcm []int16, done func()) error {
	return o.queue.enqueue(pcm, done)
}
