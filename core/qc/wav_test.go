package qc

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWAV writes a minimal 16-bit PCM WAV file around the given samples.
func buildWAV(t *testing.T, sampleRate int, samples []int16) []byte {
	t.Helper()
	pcm := new(bytes.Buffer)
	for _, s := range samples {
		require.NoError(t, binary.Write(pcm, binary.LittleEndian, s))
	}
	data := pcm.Bytes()

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func TestWAVDecoderDecodesDurationAndSamples(t *testing.T) {
	// Half a second of full-scale square wave at 100Hz sample rate.
	samples := make([]int16, 50)
	for i := range samples {
		samples[i] = math.MaxInt16
	}
	payload := buildWAV(t, 100, samples)

	clip, err := WAVDecoder{}.Decode(context.Background(), payload)
	require.NoError(t, err)
	require.Len(t, clip.Channels, 1)
	assert.InDelta(t, 0.5, clip.Duration, 1e-6)
	require.Len(t, clip.Channels[0], 50)
	assert.InDelta(t, 1.0, clip.Channels[0][0], 1e-3, "samples normalized to [-1, 1]")
}

func TestWAVDecoderRejectsGarbage(t *testing.T) {
	_, err := WAVDecoder{}.Decode(context.Background(), []byte("definitely not audio"))
	assert.Error(t, err)
}

func TestGateEndToEndOverRealWAV(t *testing.T) {
	quiet := make([]int16, 300)
	for i := range quiet {
		quiet[i] = int16(i % 7) // inaudible noise floor
	}
	payload := buildWAV(t, 100, quiet)

	gate := NewGate(WAVDecoder{}, 0, 0)
	verdict, err := gate.Evaluate(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, verdict.Success)
	assert.Equal(t, "Recording is too silent. Try again!", verdict.ErrorMessage)
}
