package qc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDecoder hands back a canned clip, mirroring a stubbed decoding
// context.
type fakeDecoder struct {
	clip *Clip
	err  error
}

func (d *fakeDecoder) Decode(ctx context.Context, payload []byte) (*Clip, error) {
	return d.clip, d.err
}

// loudClip builds a clip whose top-100 unique magnitudes average to avg.
func loudClip(duration, avg float64) *Clip {
	samples := make([]float64, 0, 200)
	for i := 0; i < 100; i++ {
		samples = append(samples, avg)
	}
	// Near-zero padding that a whole-clip mean would drown in. Duplicates
	// collapse, so only one extra unique value joins the pool.
	for i := 0; i < 100; i++ {
		samples = append(samples, 0.0001)
	}
	return &Clip{Duration: duration, Channels: [][]float64{samples}}
}

func newGate(clip *Clip) *Gate {
	return NewGate(&fakeDecoder{clip: clip}, 0, 0)
}

func TestShortRecordingFailsRegardlessOfLoudness(t *testing.T) {
	verdict, err := newGate(loudClip(1.0, 0.9)).Evaluate(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, verdict.Success)
	assert.Equal(t, "Recording is too short. Try again!", verdict.ErrorMessage)
}

func TestShortAndSilentReportsOnlyDuration(t *testing.T) {
	verdict, err := newGate(loudClip(0.5, 0.01)).Evaluate(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, verdict.Success)
	assert.Equal(t, "Recording is too short. Try again!", verdict.ErrorMessage)
}

func TestSilentRecordingFails(t *testing.T) {
	verdict, err := newGate(loudClip(3.0, 0.1)).Evaluate(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, verdict.Success)
	assert.Equal(t, "Recording is too silent. Try again!", verdict.ErrorMessage)
}

func TestCutoffIsExclusive(t *testing.T) {
	// An average of exactly 0.2 is still too silent.
	clip := &Clip{Duration: 3.0, Channels: [][]float64{{0.2}}}
	verdict, err := newGate(clip).Evaluate(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, verdict.Success)
}

func TestGoodRecordingPasses(t *testing.T) {
	verdict, err := newGate(loudClip(3.0, 0.5)).Evaluate(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, verdict.Success)
	assert.Empty(t, verdict.ErrorMessage)
}

func TestDecodeFailureIsAnError(t *testing.T) {
	gate := NewGate(&fakeDecoder{err: errors.New("bad payload")}, 0, 0)
	_, err := gate.Evaluate(context.Background(), []byte("x"))
	assert.Error(t, err)
}

func TestDuplicatesDoNotInflateLoudness(t *testing.T) {
	// One loud sample repeated: after duplicate elimination the pool is
	// {0.9, 0.0}, averaging 0.45. A naive mean over the raw data would be
	// near zero because padding zeros dominate.
	samples := make([]float64, 0, 1000)
	samples = append(samples, 0.9)
	for i := 0; i < 999; i++ {
		samples = append(samples, 0.0)
	}
	clip := &Clip{Duration: 3.0, Channels: [][]float64{samples}}
	verdict, err := newGate(clip).Evaluate(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, verdict.Success)
}

func TestNLargest(t *testing.T) {
	assert.Equal(t, []float64{27, 10}, nLargest([]float64{10, 4, 6, 3, 27, 5}, 2))
	assert.Equal(t, []float64{6, 4}, nLargest([]float64{4, 6}, 5), "n beyond length returns all, sorted")
	assert.Empty(t, nLargest(nil, 3))
}

func TestFindAverage(t *testing.T) {
	assert.InDelta(t, 10.0, findAverage([]float64{10, 4, 6, 3, 27}), 1e-9)
	assert.Zero(t, findAverage(nil))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3}, dedupe([]float64{1, 2, 1, 3, 2, 1}))
}
