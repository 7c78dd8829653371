//go:build linux

package haptic

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	evFF     = 0x15
	ffRumble = 0x50

	// ioctl numbers for a 48-byte ff_effect on 64-bit linux
	eviocsff  = 0x40304580 // EVIOCSFF
	eviocrmff = 0x40044581 // EVIOCRMFF
	eviocgbit = 0x80104535 // EVIOCGBIT(EV_FF, 16)

	inputEventSize = 24
	pulseLengthMs  = 80
)

// rumbleBackend drives a force-feedback evdev device. Intensity maps to the
// strong (low-frequency) motor, sharpness to the weak (high-frequency) one.
type rumbleBackend struct {
	path     string
	f        *os.File
	effectID int16
}

// NewRumble finds the first evdev device advertising FF_RUMBLE and returns
// a backend driving it. Requires write access to /dev/input (the 'input'
// group on most distros).
func NewRumble() (Backend, error) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			continue
		}
		ok := supportsRumble(f)
		f.Close()
		if ok {
			return &rumbleBackend{path: path, effectID: -1}, nil
		}
	}
	return nil, ErrUnsupported
}

func supportsRumble(f *os.File) bool {
	var bits [16]byte
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), eviocgbit, uintptr(unsafe.Pointer(&bits[0])))
	if errno != 0 {
		return false
	}
	return bits[ffRumble/8]&(1<<(ffRumble%8)) != 0
}

func (b *rumbleBackend) Start() error {
	if b.f != nil {
		return nil
	}
	f, err := os.OpenFile(b.path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	b.f = f
	b.effectID = -1
	return nil
}

// upload installs or updates the rumble effect, letting the kernel assign
// an effect id on first use.
func (b *rumbleBackend) upload(strong, weak uint16) error {
	var effect [48]byte
	binary.LittleEndian.PutUint16(effect[0:], ffRumble)
	binary.LittleEndian.PutUint16(effect[2:], uint16(b.effectID))
	binary.LittleEndian.PutUint16(effect[10:], pulseLengthMs) // replay.length
	binary.LittleEndian.PutUint16(effect[16:], strong)
	binary.LittleEndian.PutUint16(effect[18:], weak)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, b.f.Fd(), eviocsff, uintptr(unsafe.Pointer(&effect[0])))
	if errno != 0 {
		return errno
	}
	b.effectID = int16(binary.LittleEndian.Uint16(effect[2:]))
	return nil
}

func (b *rumbleBackend) Pulse(intensity, sharpness float64) error {
	if b.f == nil {
		return ErrUnsupported
	}
	strong := uint16(clamp01(intensity) * 0xffff)
	weak := uint16(clamp01(sharpness) * 0xffff)
	if err := b.upload(strong, weak); err != nil {
		b.reset()
		return err
	}

	// input_event: 16 bytes of timeval (zero), type, code, value
	var ev [inputEventSize]byte
	binary.LittleEndian.PutUint16(ev[16:], evFF)
	binary.LittleEndian.PutUint16(ev[18:], uint16(b.effectID))
	binary.LittleEndian.PutUint32(ev[20:], 1)
	if _, err := b.f.Write(ev[:]); err != nil {
		b.reset()
		return err
	}
	return nil
}

func (b *rumbleBackend) reset() {
	if b.f != nil {
		b.f.Close()
		b.f = nil
	}
	b.effectID = -1
}

func (b *rumbleBackend) Close() {
	if b.f == nil {
		return
	}
	if b.effectID >= 0 {
		id := int32(b.effectID)
		unix.Syscall(unix.SYS_IOCTL, b.f.Fd(), eviocrmff, uintptr(unsafe.Pointer(&id)))
	}
	b.reset()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
