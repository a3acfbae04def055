package capture

import (
	"context"
	"sync"
)

// recorder buffers live frames between start and stop. It mirrors the
// platform recorder bound to a stream: start subscribes to the live feed,
// stop drains whatever was flushed and hands the chunks back.
type recorder struct {
	stream Stream

	mu      sync.Mutex
	active  bool
	cancel  func()
	done    chan struct{}
	chunks  [][]byte
}

func newRecorder(stream Stream) *recorder {
	return &recorder{stream: stream}
}

func (r *recorder) start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return
	}

	frames, cancel := r.stream.Subscribe()
	r.active = true
	r.cancel = cancel
	r.done = make(chan struct{})
	r.chunks = nil

	go func() {
		defer close(r.done)
		for frame := range frames {
			r.mu.Lock()
			r.chunks = append(r.chunks, frame)
			r.mu.Unlock()
		}
	}()
}

func (r *recorder) started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// stop unsubscribes, waits for the consumer goroutine to drain the last
// frames, and returns the buffered chunks.
func (r *recorder) stop(ctx context.Context) ([][]byte, error) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return nil, ErrNoRecorder
	}
	cancel := r.cancel
	done := r.done
	r.active = false
	r.cancel = nil
	r.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	r.mu.Lock()
	chunks := r.chunks
	r.chunks = nil
	r.mu.Unlock()
	return chunks, nil
}

// abandon discards any in-flight recording without producing an artifact.
func (r *recorder) abandon() {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.active = false
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	r.mu.Lock()
	r.chunks = nil
	r.mu.Unlock()
}
