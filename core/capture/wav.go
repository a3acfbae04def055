package capture

import (
	"bytes"
	"encoding/binary"
)

const (
	wavBytesPerSample = 2 // LINEAR16
	wavBitsPerSample  = 16
	wavPCMFormat      = 1
)

// encodeWAV assembles flushed PCM chunks into a single WAV payload.
func encodeWAV(chunks [][]byte, sampleRate, channels int) []byte {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}

	blockAlign := channels * wavBytesPerSample
	byteRate := sampleRate * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + total)

	buf.Write([]byte("RIFF"))
	binary.Write(&buf, binary.LittleEndian, uint32(36+total))
	buf.Write([]byte("WAVE"))

	buf.Write([]byte("fmt "))
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(wavPCMFormat))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(wavBitsPerSample))

	buf.Write([]byte("data"))
	binary.Write(&buf, binary.LittleEndian, uint32(total))
	for _, c := range chunks {
		buf.Write(c)
	}

	return buf.Bytes()
}

// pcmDuration derives the recorded duration in seconds from raw PCM size.
func pcmDuration(chunks [][]byte, sampleRate, channels int) float64 {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	bytesPerSecond := sampleRate * channels * wavBytesPerSample
	if bytesPerSecond == 0 {
		return 0
	}
	return float64(total) / float64(bytesPerSecond)
}
