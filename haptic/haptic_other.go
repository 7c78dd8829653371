//go:build !linux

package haptic

// NewRumble is only implemented for evdev-capable platforms.
func NewRumble() (Backend, error) {
	return nil, ErrUnsupported
}
