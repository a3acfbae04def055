// Package viz renders live amplitude feedback from the capture stream.
// The feed is decorative: it taps the same live stream the recorder uses
// but never influences recording, screening, or upload.
package viz

import (
	"sync"
	"time"

	"voxcollect/core/capture"
)

const (
	defaultBins     = 32
	defaultInterval = 33 * time.Millisecond // ~30fps
)

// Renderer receives one frame of wave bins per animation tick. Bin values
// are 0..255 amplitudes.
type Renderer interface {
	RenderFrame(bins []byte)
}

// Feed consumes a live stream at a fixed frame cadence and forwards
// amplitude bins to its renderer.
type Feed struct {
	renderer Renderer

	// Interval and Bins may be adjusted before Attach.
	Interval time.Duration
	Bins     int

	mu     sync.Mutex
	cancel func()
	stop   chan struct{}
	done   chan struct{}
}

// NewFeed creates a feed that draws through the given renderer.
func NewFeed(renderer Renderer) *Feed {
	return &Feed{
		renderer: renderer,
		Interval: defaultInterval,
		Bins:     defaultBins,
	}
}

// Attach begins consuming the stream. A feed already attached detaches
// from its previous stream first.
func (f *Feed) Attach(stream capture.Stream) {
	f.Detach()

	frames, cancel := stream.Subscribe()
	stop := make(chan struct{})
	done := make(chan struct{})

	f.mu.Lock()
	f.cancel = cancel
	f.stop = stop
	f.done = done
	f.mu.Unlock()

	go f.run(frames, stop, done)
}

// Detach stops consumption and releases the subscription. Idempotent and
// safe to call on a feed that was never attached.
func (f *Feed) Detach() {
	f.mu.Lock()
	cancel := f.cancel
	stop := f.stop
	done := f.done
	f.cancel = nil
	f.stop = nil
	f.done = nil
	f.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	close(stop)
	<-done
}

func (f *Feed) run(frames <-chan []byte, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(f.Interval)
	defer ticker.Stop()

	var latest []byte
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return
			}
			latest = frame
		case <-ticker.C:
			if latest != nil {
				f.renderer.RenderFrame(foldBins(latest, f.Bins))
			}
		case <-stop:
			return
		}
	}
}

// foldBins buckets a raw s16le PCM frame into n average-magnitude bins
// scaled to 0..255.
func foldBins(frame []byte, n int) []byte {
	if n <= 0 {
		n = defaultBins
	}
	samples := len(frame) / 2
	bins := make([]byte, n)
	if samples == 0 {
		return bins
	}

	per := samples / n
	if per == 0 {
		per = 1
	}
	for b := 0; b < n; b++ {
		start := b * per
		if start >= samples {
			break
		}
		end := start + per
		if end > samples {
			end = samples
		}
		sum := 0
		for i := start; i < end; i++ {
			s := int(int16(uint16(frame[2*i]) | uint16(frame[2*i+1])<<8))
			if s < 0 {
				s = -s
			}
			sum += s
		}
		bins[b] = byte((sum / (end - start)) >> 7) // 0..32767 → 0..255
	}
	return bins
}
