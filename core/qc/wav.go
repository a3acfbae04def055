package qc

import (
	"bytes"
	"context"
	"errors"

	"github.com/go-audio/wav"
)

// WAVDecoder decodes WAV payloads into normalized sample data. It is the
// stock decoding context handed to the Gate.
type WAVDecoder struct{}

func (WAVDecoder) Decode(ctx context.Context, payload []byte) (*Clip, error) {
	d := wav.NewDecoder(bytes.NewReader(payload))
	d.ReadInfo()
	if !d.IsValidFile() {
		return nil, errors.New("payload is not a valid wav file")
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, errors.New("wav payload missing format")
	}

	channels := buf.Format.NumChannels
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(d.BitDepth)
	}
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	clip := &Clip{
		Duration: float64(frames) / float64(buf.Format.SampleRate),
		Channels: make([][]float64, channels),
	}
	for ch := 0; ch < channels; ch++ {
		clip.Channels[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			clip.Channels[ch][i] = float64(buf.Data[i*channels+ch]) / scale
		}
	}
	return clip, nil
}
