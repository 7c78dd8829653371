// Package metronome implements the beat scheduling engine. Inter-beat
// timing is governed by the audio device, not application timers: each
// buffer is exactly one beat long (click attack plus silence), and a fixed
// number of buffers is kept queued in the output at all times. When the
// device finishes a buffer, the completion callback advances the beat
// position, fires haptics and the observer, and tops the chain back up, so
// long-run drift is bounded by the device clock rather than scheduler
// jitter.
package metronome

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tylorschafer/Pulse/audio"
	"github.com/tylorschafer/Pulse/click"
	"github.com/tylorschafer/Pulse/haptic"
	"github.com/tylorschafer/Pulse/log"
)

const (
	MinTempo = 40
	MaxTempo = 150

	// buffers kept queued in the output while playing
	bufferAhead = 3
)

var (
	ErrTempoRange     = errors.New("tempo outside supported range")
	ErrInvalidMeasure = errors.New("beats per measure must be positive")
)

// Observer receives one call per beat on the completion context. It must
// not block; dispatching to a UI thread is the registrant's job.
type Observer func(beatInMeasure int, accented bool)

type Settings struct {
	Tempo           int // BPM, [MinTempo, MaxTempo]
	BeatsPerMeasure int
	AccentFirstBeat bool
	Volume          float64 // [0, 1], clamped
}

type Engine struct {
	ctx     audio.Context
	haptics *haptic.Dispatcher

	mu              sync.Mutex
	device          *audio.DeviceInfo
	playing         bool
	gen             uint64 // incremented per Start; stale completions check it
	currentBeat     uint64 // beats completed since Start
	beatsScheduled  int    // buffers queued but not yet finished
	tempo           int
	beatsPerMeasure int
	accentFirstBeat bool
	volume          float64
	out             audio.Output
	observer        Observer
}

func New(ctx audio.Context, haptics *haptic.Dispatcher) *Engine {
	return &Engine{ctx: ctx, haptics: haptics, tempo: MinTempo, beatsPerMeasure: 4}
}

// SetDevice selects the output device used by subsequent Starts. Nil means
// the system default. A running session keeps its current output until the
// next Start.
func (e *Engine) SetDevice(device *audio.DeviceInfo) {
	e.mu.Lock()
	e.device = device
	e.mu.Unlock()
}

// SetObserver replaces the registered beat observer. A nil observer is
// allowed and disables delivery.
func (e *Engine) SetObserver(fn Observer) {
	e.mu.Lock()
	e.observer = fn
	e.mu.Unlock()
}

// Start begins playback with the given settings. If already playing it
// performs a full stop first, so every Start is a restart from beat zero.
// On failure the engine remains stopped with no partial state retained.
func (e *Engine) Start(s Settings) error {
	if s.Tempo < MinTempo || s.Tempo > MaxTempo {
		return fmt.Errorf("%w: %d BPM", ErrTempoRange, s.Tempo)
	}
	if s.BeatsPerMeasure <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMeasure, s.BeatsPerMeasure)
	}
	e.Stop()

	e.mu.Lock()
	device := e.device
	e.mu.Unlock()

	out, err := e.ctx.NewPlayback(device, audio.PlaybackConfig{
		SampleRate: click.SampleRate,
		Channels:   1,
	})
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	out.SetGain(clampVolume(s.Volume))
	if err := out.Start(); err != nil {
		out.Close()
		return fmt.Errorf("starting output: %w", err)
	}

	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.playing = true
	e.currentBeat = 0
	e.beatsScheduled = 0
	e.tempo = s.Tempo
	e.beatsPerMeasure = s.BeatsPerMeasure
	e.accentFirstBeat = s.AccentFirstBeat
	e.volume = clampVolume(s.Volume)
	e.out = out
	observer := e.observer
	e.mu.Unlock()

	log.SessionStart(s.Tempo, s.BeatsPerMeasure, s.AccentFirstBeat)

	// Beat zero fires before any chaining so the first downbeat is never
	// swallowed by pipeline warm-up.
	e.haptics.Fire(s.AccentFirstBeat)
	if observer != nil {
		observer(0, s.AccentFirstBeat)
	}

	e.scheduleAhead(gen)
	return nil
}

// scheduleAhead tops the output back up to bufferAhead queued buffers.
// Buffers are built outside the lock; each bakes in the tempo at build
// time, which is why tempo changes apply only to later beats.
func (e *Engine) scheduleAhead(gen uint64) {
	for {
		e.mu.Lock()
		if !e.playing || gen != e.gen || e.beatsScheduled >= bufferAhead {
			e.mu.Unlock()
			return
		}
		beat := e.currentBeat + uint64(e.beatsScheduled)
		accented := e.accentFirstBeat && beat%uint64(e.beatsPerMeasure) == 0
		interval := click.Interval(e.tempo)
		e.beatsScheduled++
		out := e.out
		e.mu.Unlock()

		buf := click.BeatBuffer(accented, interval)
		if err := out.Enqueue(buf, func() { e.beatDone(gen) }); err != nil {
			// Losing to a concurrent Stop is expected; anything else is not.
			e.mu.Lock()
			if e.playing && gen == e.gen {
				e.beatsScheduled--
				log.Errorf("scheduling beat %d: %v", beat, err)
			}
			e.mu.Unlock()
			return
		}
	}
}

// beatDone is the completion continuation, invoked on the output's
// completion goroutine once per finished buffer. The haptic fire and
// observer call happen after the lock is released so a slow observer can
// never stall the chain.
func (e *Engine) beatDone(gen uint64) {
	e.mu.Lock()
	if !e.playing || gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.currentBeat++
	e.beatsScheduled--
	beatInMeasure := int(e.currentBeat % uint64(e.beatsPerMeasure))
	accented := e.accentFirstBeat && beatInMeasure == 0
	observer := e.observer
	e.mu.Unlock()

	e.haptics.Fire(accented)
	if observer != nil {
		observer(beatInMeasure, accented)
	}
	e.scheduleAhead(gen)
}

// Stop halts playback and releases the output device. Idempotent, and safe
// to call from any goroutine, including the completion context. A single
// completion already in flight may still deliver its beat event after Stop
// returns; no further buffers are scheduled.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return
	}
	e.playing = false
	out := e.out
	e.out = nil
	e.beatsScheduled = 0
	beats := e.currentBeat
	e.mu.Unlock()

	out.Stop()
	out.Close()
	log.SessionEnd(beats)
}

// SetTempo updates the tempo. Out-of-range values are rejected and leave
// the stored tempo unchanged. In-range values take effect on the next
// buffer built, never retroactively.
func (e *Engine) SetTempo(bpm int) error {
	if bpm < MinTempo || bpm > MaxTempo {
		return fmt.Errorf("%w: %d BPM", ErrTempoRange, bpm)
	}
	e.mu.Lock()
	e.tempo = bpm
	e.mu.Unlock()
	return nil
}

// SetVolume clamps to [0, 1] and applies immediately as output gain; unlike
// tempo it is not baked into buffers.
func (e *Engine) SetVolume(v float64) {
	v = clampVolume(v)
	e.mu.Lock()
	e.volume = v
	out := e.out
	e.mu.Unlock()
	if out != nil {
		out.SetGain(v)
	}
}

func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *Engine) Tempo() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tempo
}

func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// CurrentBeat returns the count of beats completed since the last Start.
func (e *Engine) CurrentBeat() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentBeat
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
