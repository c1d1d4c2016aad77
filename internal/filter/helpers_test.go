package filter

import (
	"math"
	"testing"

	"github.com/gogpu/dither/internal/image"
)

// Test helper functions shared across filter tests.

// mustBuf builds a buffer from samples or fails the test.
func mustBuf(t testing.TB, samples []float32, w, h, ch int) *image.Buf {
	t.Helper()
	b, err := image.FromSamples(samples, w, h, ch)
	if err != nil {
		t.Fatalf("FromSamples() error = %v", err)
	}
	return b
}

// gradient builds a w x h image whose samples ramp from 0 to 1.
func gradient(t testing.TB, w, h, ch int) *image.Buf {
	t.Helper()
	samples := make([]float32, w*h*ch)
	for i := range samples {
		samples[i] = float32(i%(w*ch)) / float32(w*ch-1)
	}
	return mustBuf(t, samples, w, h, ch)
}

// sum64 returns the per-channel sums of a buffer.
func sum64(b *image.Buf) []float64 {
	sums := make([]float64, b.Channels())
	for i, v := range b.Samples() {
		sums[i%b.Channels()] += float64(v)
	}
	return sums
}

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
