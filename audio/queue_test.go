package audio

import (
	"testing"
	"time"
)

func waitCompletion(t *testing.T, ch <-chan int) int {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion")
		return 0
	}
}

func TestQueueFillOrderAndCompletions(t *testing.T) {
	q := newBufferQueue()
	defer q.close()

	completed := make(chan int, 2)
	if err := q.enqueue([]int16{1, 2, 3}, func() { completed <- 1 }); err != nil {
		t.Fatal(err)
	}
	if err := q.enqueue([]int16{4, 5}, func() { completed <- 2 }); err != nil {
		t.Fatal(err)
	}

	dst := make([]int16, 8)
	n := q.fill(dst)
	if n != 5 {
		t.Errorf("consumed %d frames, want 5", n)
	}
	want := []int16{1, 2, 3, 4, 5, 0, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}

	if id := waitCompletion(t, completed); id != 1 {
		t.Errorf("first completion = %d, want 1", id)
	}
	if id := waitCompletion(t, completed); id != 2 {
		t.Errorf("second completion = %d, want 2", id)
	}
}

func TestQueueFillSpansCalls(t *testing.T) {
	q := newBufferQueue()
	defer q.close()

	completed := make(chan int, 1)
	q.enqueue([]int16{1, 2, 3, 4}, func() { completed <- 1 })

	dst := make([]int16, 3)
	if n := q.fill(dst); n != 3 {
		t.Fatalf("first fill consumed %d, want 3", n)
	}
	select {
	case <-completed:
		t.Fatal("completion fired before buffer fully consumed")
	case <-time.After(20 * time.Millisecond):
	}
	if n := q.fill(dst); n != 1 {
		t.Fatalf("second fill consumed %d, want 1", n)
	}
	waitCompletion(t, completed)
}

func TestQueueGain(t *testing.T) {
	q := newBufferQueue()
	defer q.close()

	q.setGain(0.5)
	q.enqueue([]int16{1000, -2000}, nil)
	dst := make([]int16, 2)
	q.fill(dst)
	if dst[0] != 500 || dst[1] != -1000 {
		t.Errorf("got [%d %d], want [500 -1000]", dst[0], dst[1])
	}
}

func TestQueueGainClamped(t *testing.T) {
	q := newBufferQueue()
	defer q.close()

	q.setGain(2.0)
	q.enqueue([]int16{100}, nil)
	dst := make([]int16, 1)
	q.fill(dst)
	if dst[0] != 100 {
		t.Errorf("gain above 1 not clamped: got %d", dst[0])
	}
}

func TestQueueZeroFillsWhenEmpty(t *testing.T) {
	q := newBufferQueue()
	defer q.close()

	dst := []int16{7, 7, 7}
	if n := q.fill(dst); n != 0 {
		t.Errorf("consumed %d frames from empty queue", n)
	}
	for i, s := range dst {
		if s != 0 {
			t.Errorf("dst[%d] = %d, want 0", i, s)
		}
	}
}

func TestQueueEnqueueAfterClose(t *testing.T) {
	q := newBufferQueue()
	q.close()
	q.close() // idempotent
	if err := q.enqueue([]int16{1}, nil); err != ErrOutputClosed {
		t.Errorf("got %v, want ErrOutputClosed", err)
	}
}
