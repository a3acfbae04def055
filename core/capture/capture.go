// Package capture owns the microphone permission lifecycle and raw
// recording. A successful session produces an Artifact: the finished WAV
// payload plus a locally resolvable playback URL.
package capture

import (
	"context"
	"errors"
	"sync"

	"voxcollect/logger"
)

var (
	// ErrPermissionDenied is returned when the microphone cannot be acquired.
	ErrPermissionDenied = errors.New("microphone access denied")
	// ErrNoRecorder is returned by Stop when no recording is active.
	ErrNoRecorder = errors.New("no active recorder")
)

// Constraints describes the capture format requested from the device.
type Constraints struct {
	SampleRate int
	Channels   int
}

// Stream is a live microphone stream. Any number of consumers may
// subscribe to the live frame feed; only the capture engine closes the
// stream itself.
type Stream interface {
	// Subscribe returns a channel of raw PCM frames and a cancel func.
	// The channel is closed when cancel is called or the stream closes.
	Subscribe() (<-chan []byte, func())
	SampleRate() int
	Channels() int
	Close() error
}

// Microphone negotiates access to a capture device.
type Microphone interface {
	RequestAccess(ctx context.Context, c Constraints) (Stream, error)
}

// Engine drives one microphone acquisition at a time.
type Engine struct {
	mic Microphone
	con Constraints

	mu     sync.Mutex
	stream Stream
	rec    *recorder
}

// NewEngine creates a capture engine bound to a microphone provider.
func NewEngine(mic Microphone, con Constraints) *Engine {
	if con.SampleRate <= 0 {
		con.SampleRate = 16000
	}
	if con.Channels <= 0 {
		con.Channels = 1
	}
	return &Engine{mic: mic, con: con}
}

// Initialize requests microphone access and binds a recorder to the live
// stream. No stream is retained on failure.
func (e *Engine) Initialize(ctx context.Context) error {
	stream, err := e.mic.RequestAccess(ctx, e.con)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.stream = stream
	e.rec = newRecorder(stream)
	e.mu.Unlock()
	return nil
}

// Stream returns the live stream, or nil when not initialized. Consumers
// other than the engine must not close it.
func (e *Engine) Stream() Stream {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stream
}

// Start begins buffering audio. Returns false without side effects when no
// stream is present: callers may race a teardown, so this is a guard, not
// an error.
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stream == nil || e.rec == nil {
		return false
	}
	e.rec.start()
	return true
}

// Stop finalizes the recording: waits for the last buffered frames,
// assembles the WAV payload and allocates a playback URL. The caller owns
// the returned artifact and must Release it when done.
func (e *Engine) Stop(ctx context.Context) (*Artifact, error) {
	e.mu.Lock()
	rec := e.rec
	e.mu.Unlock()

	if rec == nil || !rec.started() {
		return nil, ErrNoRecorder
	}

	chunks, err := rec.stop(ctx)
	if err != nil {
		return nil, err
	}

	payload := encodeWAV(chunks, e.con.SampleRate, e.con.Channels)
	artifact := &Artifact{
		Payload:      payload,
		RecordingURL: CreateObjectURL(payload),
		Duration:     pcmDuration(chunks, e.con.SampleRate, e.con.Channels),
	}
	logger.Debug("recording stopped",
		logger.Int("bytes", len(payload)),
		logger.Float64("duration", artifact.Duration))
	return artifact, nil
}

// Teardown releases the stream and recorder. Safe to call at any time,
// including before Initialize and more than once.
func (e *Engine) Teardown() {
	e.mu.Lock()
	stream := e.stream
	rec := e.rec
	e.stream = nil
	e.rec = nil
	e.mu.Unlock()

	if rec != nil {
		rec.abandon()
	}
	if stream != nil {
		if err := stream.Close(); err != nil {
			logger.Warn("stream close failed", logger.ErrorField(err))
		}
	}
}
