package audio

import (
	"sync"
	"time"
)

const fakeChunkFrames = 512

// FakeContext is an in-memory playback backend for tests. Its outputs
// drain chained buffers from their own goroutine, either paced in real
// time or as fast as possible, so tests exercise the same two-thread
// model as the real backends.
type FakeContext struct {
	realtime    bool
	playbackErr error

	mu         sync.Mutex
	lastDevice *DeviceInfo
}

func NewFakeContext(realtime bool) *FakeContext {
	return &FakeContext{realtime: realtime}
}

// FailPlayback makes subsequent NewPlayback calls return err.
func (f *FakeContext) FailPlayback(err error) {
	f.playbackErr = err
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake output", Default: true}}, nil
}

// LastDevice reports the device passed to the most recent NewPlayback call.
func (f *FakeContext) LastDevice() *DeviceInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastDevice
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewPlayback(device *DeviceInfo, config PlaybackConfig) (Output, error) {
	f.mu.Lock()
	f.lastDevice = device
	f.mu.Unlock()
	if f.playbackErr != nil {
		return nil, f.playbackErr
	}
	if config.SampleRate == 0 {
		config.SampleRate = 44100
	}
	return &FakeOutput{
		queue:      newBufferQueue(),
		sampleRate: config.SampleRate,
		realtime:   f.realtime,
	}, nil
}

type FakeOutput struct {
	queue      *bufferQueue
	sampleRate uint32
	realtime   bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func (f *FakeOutput) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stop != nil {
		return nil
	}
	f.stop = make(chan struct{})
	f.done = make(chan struct{})
	go f.feed(f.stop, f.done)
	return nil
}

func (f *FakeOutput) feed(stop, done chan struct{}) {
	defer close(done)
	chunk := make([]int16, fakeChunkFrames)
	// Fast mode still paces at 1ms per chunk so playback stays ordered and
	// observable without consuming whole chains in a single scheduler slice.
	interval := time.Millisecond
	if f.realtime {
		interval = time.Duration(fakeChunkFrames) * time.Second / time.Duration(f.sampleRate)
	}
	for {
		select {
		case <-stop:
			return
		default:
		}
		f.queue.fill(chunk)
		select {
		case <-stop:
			return
		case <-time.After(interval):
		}
	}
}

func (f *FakeOutput) Stop() {
	f.mu.Lock()
	if f.stop != nil {
		select {
		case <-f.stop:
		default:
			close(f.stop)
		}
	}
	done := f.done
	f.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (f *FakeOutput) Close() {
	f.Stop()
	f.queue.close()
}

func (f *FakeOutput) SetGain(gain float64) {
	f.queue.setGain(gain)
}

func (f *FakeOutput) Enqueue(pcm []int16, done func()) error {
	return f.queue.enqueue(pcm, done)
}
