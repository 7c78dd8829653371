package main

import (
	"fmt"
	"io"
	"strings"
)

// BeatSink abstracts the display layer so the Bubble Tea TUI and the plain
// console runner receive the same playback events. Beat is called from the
// audio completion context and must hand off quickly.
type BeatSink interface {
	Beat(beatInMeasure int, accented bool)
	PlayState(playing bool)
}

var (
	_ BeatSink = (*consoleSink)(nil)
	_ BeatSink = (*tuiSink)(nil)
)

type consoleSink struct {
	w               io.Writer
	beatsPerMeasure int
}

func newConsoleSink(w io.Writer, beatsPerMeasure int) *consoleSink {
	return &consoleSink{w: w, beatsPerMeasure: beatsPerMeasure}
}

func (s *consoleSink) Beat(beatInMeasure int, accented bool) {
	marks := make([]string, s.beatsPerMeasure)
	for i := range marks {
		marks[i] = "·"
	}
	if beatInMeasure < len(marks) {
		if accented {
			marks[beatInMeasure] = "●"
		} else {
			marks[beatInMeasure] = "○"
		}
	}
	fmt.Fprintf(s.w, "\r  %s ", strings.Join(marks, " "))
}

func (s *consoleSink) PlayState(playing bool) {
	if !playing {
		fmt.Fprint(s.w, "\r  stopped        \n")
	}
}
