package haptic

import "sync"

type PulseRecord struct {
	Intensity float64
	Sharpness float64
}

// FakeBackend records pulses and can inject failures.
type FakeBackend struct {
	mu       sync.Mutex
	startErr error
	pulseErr error
	starts   int
	closed   bool
	pulses   []PulseRecord
}

func NewFake() *FakeBackend {
	return &FakeBackend{}
}

func (f *FakeBackend) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.starts++
	return nil
}

func (f *FakeBackend) Pulse(intensity, sharpness float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pulseErr != nil {
		return f.pulseErr
	}
	f.pulses = append(f.pulses, PulseRecord{Intensity: intensity, Sharpness: sharpness})
	return nil
}

func (f *FakeBackend) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *FakeBackend) FailStarts(err error) {
	f.mu.Lock()
	f.startErr = err
	f.mu.Unlock()
}

func (f *FakeBackend) FailPulses(err error) {
	f.mu.Lock()
	f.pulseErr = err
	f.mu.Unlock()
}

func (f *FakeBackend) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func (f *FakeBackend) Pulses() []PulseRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]PulseRecord, len(f.pulses))
	copy(out, f.pulses)
	return out
}
