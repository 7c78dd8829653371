// Package click synthesizes metronome click waveforms: a short decaying
// sine attack followed by silence padding out to a full beat interval.
package click

import (
	"fmt"
	"math"
)

const (
	SampleRate = 44100

	// Attack: the audible portion of a click
	attackDuration = 0.05
	decay          = 20.0

	// Regular beat: lower pitch, quieter
	regularFreq   = 1000.0
	regularVolume = 0.5

	// Accented downbeat: higher pitch, louder
	accentFreq   = 1200.0
	accentVolume = 0.8
)

// Synthesize generates a decaying sine tone:
// sin(2π·freq·t) · e^(−decay·t) · volume, as 16-bit mono PCM.
// Non-positive duration or sample rate is a caller contract violation.
func Synthesize(freq, duration float64, sampleRate int, volume float64) []int16 {
	if duration <= 0 || sampleRate <= 0 {
		panic(fmt.Sprintf("click: invalid synthesis parameters (duration=%v, rate=%d)", duration, sampleRate))
	}
	n := int(float64(sampleRate) * duration)
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}
