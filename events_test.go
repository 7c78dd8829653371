package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleSinkBeatRow(t *testing.T) {
	var buf bytes.Buffer
	s := newConsoleSink(&buf, 4)

	s.Beat(0, true)
	if got := buf.String(); !strings.Contains(got, "●") || strings.Count(got, "·") != 3 {
		t.Errorf("accented downbeat row = %q", got)
	}

	buf.Reset()
	s.Beat(2, false)
	if got := buf.String(); !strings.Contains(got, "○") || strings.Contains(got, "●") {
		t.Errorf("unaccented beat row = %q", got)
	}
}

func TestConsoleSinkBeatBeyondMeasure(t *testing.T) {
	var buf bytes.Buffer
	s := newConsoleSink(&buf, 2)
	s.Beat(5, false) // stale event from a longer measure must not panic
	if got := buf.String(); strings.Count(got, "·") != 2 {
		t.Errorf("row = %q, want two idle marks", got)
	}
}

func TestConsoleSinkPlayState(t *testing.T) {
	var buf bytes.Buffer
	s := newConsoleSink(&buf, 4)

	s.PlayState(true)
	if buf.Len() != 0 {
		t.Errorf("unexpected output on play: %q", buf.String())
	}

	s.PlayState(false)
	if !strings.Contains(buf.String(), "stopped") {
		t.Errorf("stop notice = %q", buf.String())
	}
}
