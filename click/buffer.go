package click

import (
	"math"
	"sync"
)

var (
	regularAttack []int16
	accentAttack  []int16
	attackOnce    sync.Once
)

// The attack waveforms are synthesized once and immutable afterwards,
// safe to read from any thread.
func initAttacks() {
	regularAttack = Synthesize(regularFreq, attackDuration, SampleRate, regularVolume)
	accentAttack = Synthesize(accentFreq, attackDuration, SampleRate, accentVolume)
}

// BeatBuffer returns one beat of PCM at SampleRate: the click attack
// followed by silence padding out to the full interval. The interval is
// baked in at build time, so a tempo change only affects buffers built
// after it. When the interval is shorter than the attack, the attack is
// truncated to fit.
func BeatBuffer(accented bool, intervalSeconds float64) []int16 {
	attackOnce.Do(initAttacks)
	attack := regularAttack
	if accented {
		attack = accentAttack
	}
	frames := int(math.Round(intervalSeconds * SampleRate))
	if frames < 0 {
		frames = 0
	}
	buf := make([]int16, frames)
	copy(buf, attack)
	return buf
}

// Interval converts a tempo in BPM to the beat interval in seconds.
func Interval(bpm int) float64 {
	return 60.0 / float64(bpm)
}
