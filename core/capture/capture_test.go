package capture

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStream is an in-memory live stream fed by the test.
type fakeStream struct {
	mu     sync.Mutex
	subs   map[int]chan []byte
	nextID int
	closed bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{subs: make(map[int]chan []byte)}
}

func (s *fakeStream) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 64)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.mu.Unlock()
	}
}

func (s *fakeStream) push(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		sub <- frame
	}
}

func (s *fakeStream) SampleRate() int { return 16000 }
func (s *fakeStream) Channels() int   { return 1 }

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, sub := range s.subs {
		delete(s.subs, id)
		close(sub)
	}
	return nil
}

type fakeMicrophone struct {
	stream *fakeStream
	err    error
	calls  int
}

func (m *fakeMicrophone) RequestAccess(ctx context.Context, c Constraints) (Stream, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.stream, nil
}

func TestInitializeDeniedRetainsNoStream(t *testing.T) {
	mic := &fakeMicrophone{err: ErrPermissionDenied}
	eng := NewEngine(mic, Constraints{SampleRate: 16000, Channels: 1})

	err := eng.Initialize(context.Background())
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Nil(t, eng.Stream())
}

func TestStartWithoutInitializeIsNoOp(t *testing.T) {
	mic := &fakeMicrophone{stream: newFakeStream()}
	eng := NewEngine(mic, Constraints{SampleRate: 16000, Channels: 1})

	assert.False(t, eng.Start())
	assert.Zero(t, mic.calls, "no stream access without initialize")
}

func TestStopWithoutRecorderFails(t *testing.T) {
	mic := &fakeMicrophone{stream: newFakeStream()}
	eng := NewEngine(mic, Constraints{SampleRate: 16000, Channels: 1})

	_, err := eng.Stop(context.Background())
	require.ErrorIs(t, err, ErrNoRecorder)

	// Initialized but never started is still not stoppable.
	require.NoError(t, eng.Initialize(context.Background()))
	_, err = eng.Stop(context.Background())
	require.ErrorIs(t, err, ErrNoRecorder)
}

func TestStopAssemblesArtifactFromFlushedChunks(t *testing.T) {
	stream := newFakeStream()
	mic := &fakeMicrophone{stream: stream}
	eng := NewEngine(mic, Constraints{SampleRate: 16000, Channels: 1})

	require.NoError(t, eng.Initialize(context.Background()))
	require.True(t, eng.Start())

	// One second of audio in three unequal chunks.
	chunks := [][]byte{
		make([]byte, 16000),
		make([]byte, 8000),
		make([]byte, 8000),
	}
	for _, c := range chunks {
		stream.push(c)
	}

	artifact, err := eng.Stop(context.Background())
	require.NoError(t, err)
	defer artifact.Release()

	// 44-byte WAV header plus every flushed byte.
	assert.Len(t, artifact.Payload, 44+32000)
	assert.InDelta(t, 1.0, artifact.Duration, 1e-9)

	require.NotEmpty(t, artifact.RecordingURL)
	resolved, ok := ResolveObjectURL(artifact.RecordingURL)
	require.True(t, ok, "playback URL must resolve while artifact is alive")
	assert.Equal(t, artifact.Payload, resolved)
}

func TestReleaseRevokesPlaybackURL(t *testing.T) {
	payload := []byte{1, 2, 3}
	artifact := &Artifact{Payload: payload, RecordingURL: CreateObjectURL(payload)}
	url := artifact.RecordingURL

	artifact.Release()
	_, ok := ResolveObjectURL(url)
	assert.False(t, ok)

	// Second release is harmless.
	artifact.Release()
}

func TestTeardownReleasesStreamAndBlocksStart(t *testing.T) {
	stream := newFakeStream()
	mic := &fakeMicrophone{stream: stream}
	eng := NewEngine(mic, Constraints{SampleRate: 16000, Channels: 1})

	require.NoError(t, eng.Initialize(context.Background()))
	require.True(t, eng.Start())

	eng.Teardown()
	assert.True(t, stream.closed)
	assert.Nil(t, eng.Stream())
	assert.False(t, eng.Start(), "start after teardown races the guard, not an error")

	// Teardown twice is safe.
	eng.Teardown()
}

func TestEncodeWAVHeader(t *testing.T) {
	payload := encodeWAV([][]byte{{0, 0, 1, 0}}, 16000, 1)

	require.Len(t, payload, 48)
	assert.Equal(t, "RIFF", string(payload[0:4]))
	assert.Equal(t, "WAVE", string(payload[8:12]))
	assert.Equal(t, "data", string(payload[36:40]))
}
