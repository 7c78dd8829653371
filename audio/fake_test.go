package audio

import (
	"errors"
	"testing"
	"time"
)

func TestFakeOutputPlaysChain(t *testing.T) {
	ctx := NewFakeContext(false)
	out, err := ctx.NewPlayback(nil, PlaybackConfig{SampleRate: 44100, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	order := make(chan int, 3)
	for i := 1; i <= 3; i++ {
		i := i
		if err := out.Enqueue(make([]int16, 1024), func() { order <- i }); err != nil {
			t.Fatal(err)
		}
	}
	if err := out.Start(); err != nil {
		t.Fatal(err)
	}

	for want := 1; want <= 3; want++ {
		select {
		case got := <-order:
			if got != want {
				t.Fatalf("completion %d arrived out of order (want %d)", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for completion %d", want)
		}
	}
}

func TestFakeOutputStopIdempotent(t *testing.T) {
	ctx := NewFakeContext(false)
	out, err := ctx.NewPlayback(nil, PlaybackConfig{SampleRate: 44100, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := out.Start(); err != nil {
		t.Fatal(err)
	}
	out.Stop()
	out.Stop()
	out.Close()
}

func TestFakeOutputStopBeforeStart(t *testing.T) {
	ctx := NewFakeContext(false)
	out, err := ctx.NewPlayback(nil, PlaybackConfig{SampleRate: 44100, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	out.Stop() // no goroutine yet; must not hang
	out.Close()
}

func TestFakeContextFailPlayback(t *testing.T) {
	ctx := NewFakeContext(false)
	wantErr := errors.New("device busy")
	ctx.FailPlayback(wantErr)
	if _, err := ctx.NewPlayback(nil, PlaybackConfig{}); !errors.Is(err, wantErr) {
		t.Errorf("got %v, want %v", err, wantErr)
	}
}

func TestFakeOutputRealtimePacing(t *testing.T) {
	ctx := NewFakeContext(true)
	out, err := ctx.NewPlayback(nil, PlaybackConfig{SampleRate: 44100, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	done := make(chan struct{})
	// 4410 frames = 100ms at 44.1kHz
	out.Enqueue(make([]int16, 4410), func() { close(done) })
	start := time.Now()
	out.Start()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("realtime output completed 100ms buffer in %v", elapsed)
	}
}
