// Package haptic fans metronome beats out to a platform haptic backend.
// Haptics are best-effort: a failing backend is restarted, and when restarts
// keep failing the dispatcher silently drops fires so beat delivery is never
// blocked or crashed by the vibration hardware.
package haptic

import (
	"errors"
	"sync"
)

var ErrUnsupported = errors.New("haptic: no supported backend")

// Backend is a platform haptic engine. Pulse must return quickly; it is
// called from the audio completion context.
type Backend interface {
	Start() error
	Pulse(intensity, sharpness float64) error
	Close()
}

// Policy selects how beat types map to pulses.
type Policy int

const (
	// Continuous varies intensity and sharpness by beat type.
	Continuous Policy = iota
	// Discrete offers exactly two pulse kinds: strong and weak.
	Discrete
)

type Config struct {
	Policy       Policy
	DownbeatOnly bool // suppress fires for non-downbeats
}

// consecutive restart failures before giving up on the backend
const maxRestarts = 3

type Dispatcher struct {
	mu       sync.Mutex
	backend  Backend
	policy   Policy
	downOnly bool
	enabled  bool
	started  bool
	restarts int
	dead     bool
}

func NewDispatcher(backend Backend, cfg Config) *Dispatcher {
	return &Dispatcher{
		backend:  backend,
		policy:   cfg.Policy,
		downOnly: cfg.DownbeatOnly,
		enabled:  true,
		dead:     backend == nil,
	}
}

func (d *Dispatcher) SetEnabled(v bool) {
	d.mu.Lock()
	d.enabled = v
	d.mu.Unlock()
}

func (d *Dispatcher) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

func (d *Dispatcher) pulseParams(downbeat bool) (intensity, sharpness float64) {
	switch d.policy {
	case Discrete:
		if downbeat {
			return 1.0, 1.0
		}
		return 0.5, 0.5
	default:
		if downbeat {
			return 1.0, 0.8
		}
		return 0.55, 0.3
	}
}

// Fire delivers one beat pulse. Safe to call from the completion context;
// never blocks on the backend beyond a single Pulse call.
func (d *Dispatcher) Fire(downbeat bool) {
	d.mu.Lock()
	if !d.enabled || d.dead || (d.downOnly && !downbeat) {
		d.mu.Unlock()
		return
	}
	if !d.started {
		if err := d.backend.Start(); err != nil {
			d.restarts++
			if d.restarts >= maxRestarts {
				d.dead = true
			}
			d.mu.Unlock()
			return
		}
		d.started = true
		d.restarts = 0
	}
	intensity, sharpness := d.pulseParams(downbeat)
	if err := d.backend.Pulse(intensity, sharpness); err != nil {
		// Backend stopped or reset; restart on the next fire.
		d.started = false
	}
	d.mu.Unlock()
}

func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = false
	d.dead = true
	if d.backend != nil {
		d.backend.Close()
	}
}
