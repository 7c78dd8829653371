package audio

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
)

var ErrOutputClosed = errors.New("audio: output closed")

type queuedBuffer struct {
	pcm  []int16
	pos  int
	done func()
}

// bufferQueue is the chaining machinery shared by all Output backends.
// The device's data thread calls fill; completed buffers' callbacks are
// posted to a single completion goroutine so they never run inside the
// device callback and cannot stall it.
//
// close must only be called after the device has stopped pulling data.
type bufferQueue struct {
	gain atomic.Uint64 // math.Float64bits

	mu      sync.Mutex
	pending []queuedBuffer
	closed  bool

	completions chan func()
}

func newBufferQueue() *bufferQueue {
	q := &bufferQueue{completions: make(chan func(), 64)}
	q.gain.Store(math.Float64bits(1.0))
	go q.runCompletions()
	return q
}

func (q *bufferQueue) runCompletions() {
	for fn := range q.completions {
		fn()
	}
}

func (q *bufferQueue) setGain(g float64) {
	if g < 0 {
		g = 0
	} else if g > 1 {
		g = 1
	}
	q.gain.Store(math.Float64bits(g))
}

func (q *bufferQueue) enqueue(pcm []int16, done func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrOutputClosed
	}
	q.pending = append(q.pending, queuedBuffer{pcm: pcm, done: done})
	return nil
}

// fill writes up to len(dst) frames from queued buffers into dst with the
// current gain applied, zero-filling the remainder. Returns the number of
// frames consumed from queued buffers.
func (q *bufferQueue) fill(dst []int16) int {
	gain := math.Float64frombits(q.gain.Load())
	var finished []func()

	q.mu.Lock()
	n := 0
	for n < len(dst) && len(q.pending) > 0 {
		buf := &q.pending[0]
		for n < len(dst) && buf.pos < len(buf.pcm) {
			dst[n] = int16(float64(buf.pcm[buf.pos]) * gain)
			buf.pos++
			n++
		}
		if buf.pos == len(buf.pcm) {
			if buf.done != nil {
				finished = append(finished, buf.done)
			}
			q.pending = q.pending[1:]
		}
	}
	closed := q.closed
	q.mu.Unlock()

	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}

	if closed {
		return n
	}
	for _, fn := range finished {
		select {
		case q.completions <- fn:
		default:
			// Chain depth is bounded; a full queue means the consumer is gone.
		}
	}
	return n
}

// close drops any pending buffers and shuts down the completion goroutine
// once it has drained already-posted callbacks.
func (q *bufferQueue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.pending = nil
	q.mu.Unlock()
	close(q.completions)
}
