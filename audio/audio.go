// Package audio provides the playback output layer: a small Context/Output
// abstraction over malgo (miniaudio) and PulseAudio, plus a fake backend
// for tests. Outputs play chained buffers in enqueue order and report each
// buffer's completion from a dedicated goroutine.
package audio

import "strings"

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

// IsBluetooth reports whether a device name looks like a Bluetooth output.
// Bluetooth sinks add enough latency to make a metronome feel late.
func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

type DeviceInfo struct {
	ID      string // opaque platform-specific identifier
	Name    string
	Default bool // the system default output
}

type PlaybackConfig struct {
	SampleRate uint32
	Channels   uint32
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewPlayback(device *DeviceInfo, config PlaybackConfig) (Output, error)
	Close()
}

// Output is a chained-buffer playback device. Buffers play strictly in
// enqueue order; each done callback runs on the output's completion
// goroutine once the device has consumed the buffer, never inside the
// device's own data callback.
type Output interface {
	Start() error
	Stop()
	Close()
	SetGain(gain float64)
	Enqueue(pcm []int16, done func()) error
}
