// Package qc screens finished recordings for basic quality defects before
// upload: a minimum duration and a minimum loudness.
package qc

import (
	"context"
	"fmt"
	"sort"
)

const (
	msgTooShort  = "Recording is too short. Try again!"
	msgTooSilent = "Recording is too silent. Try again!"

	// topSampleCount is how many of the largest duplicate-eliminated
	// sample magnitudes feed the loudness average. A plain mean over the
	// whole clip is dominated by silence padding; the top peaks
	// approximate perceived loudness without an RMS pass.
	topSampleCount = 100
)

// Verdict is the outcome of one screening. ErrorMessage is set iff
// Success is false.
type Verdict struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Clip is decoded sample data. Samples are normalized to [-1.0, 1.0];
// Channels holds one slice per audio channel.
type Clip struct {
	Duration float64
	Channels [][]float64
}

// Decoder turns an encoded audio payload into sample data.
type Decoder interface {
	Decode(ctx context.Context, payload []byte) (*Clip, error)
}

// Gate evaluates artifacts against the duration and loudness checks.
type Gate struct {
	decoder       Decoder
	minDuration   float64
	silenceCutoff float64
}

// NewGate creates a gate with the given thresholds. Zero thresholds get
// the stock values: 2 seconds and a 0.2 loudness cutoff.
func NewGate(decoder Decoder, minDuration, silenceCutoff float64) *Gate {
	if minDuration <= 0 {
		minDuration = 2.0
	}
	if silenceCutoff <= 0 {
		silenceCutoff = 0.2
	}
	return &Gate{decoder: decoder, minDuration: minDuration, silenceCutoff: silenceCutoff}
}

// Evaluate decodes the payload and runs both checks. The duration failure
// takes precedence: a clip that is both short and silent reports only the
// duration message. The artifact itself is never mutated. A decode
// failure is an error, not a verdict.
func (g *Gate) Evaluate(ctx context.Context, payload []byte) (Verdict, error) {
	clip, err := g.decoder.Decode(ctx, payload)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to decode audio: %w", err)
	}

	if clip.Duration < g.minDuration {
		return Verdict{Success: false, ErrorMessage: msgTooShort}, nil
	}
	if msg := g.silenceCheck(clip); msg != "" {
		return Verdict{Success: false, ErrorMessage: msg}, nil
	}
	return Verdict{Success: true}, nil
}

// silenceCheck averages the 100 largest unique sample values of the first
// channel. Returns the failure message, or "" when loud enough.
func (g *Gate) silenceCheck(clip *Clip) string {
	if len(clip.Channels) == 0 {
		return msgTooSilent
	}
	unique := dedupe(clip.Channels[0])
	biggest := nLargest(unique, topSampleCount)
	if findAverage(biggest) > g.silenceCutoff {
		return ""
	}
	return msgTooSilent
}

// dedupe eliminates duplicate values, keeping first-seen order.
func dedupe(samples []float64) []float64 {
	seen := make(map[float64]struct{}, len(samples))
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// nLargest returns the n biggest values in descending order.
func nLargest(values []float64, n int) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// findAverage returns the mean of the values, 0 for an empty slice.
func findAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
