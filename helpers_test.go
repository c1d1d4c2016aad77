package dither

import (
	"context"
	"testing"
	"time"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// newTestPipeline creates a pipeline with a small blue-noise mask.
func newTestPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithWorkers(2), WithBlueNoise(3, 0, 1)}, opts...)
	p, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func grayImage(w, h int, pix ...byte) Image {
	return Image{Width: w, Height: h, Format: FormatGray8, Pix: pix}
}

// gradientImage is a w x h image whose bytes ramp across the buffer.
func gradientImage(w, h int, format Format) Image {
	pix := make([]byte, format.ImageBytes(w, h))
	for i := range pix {
		pix[i] = byte(i * 255 / max(len(pix)-1, 1))
	}
	return Image{Width: w, Height: h, Format: format, Pix: pix}
}

// process runs job and returns its events.
func process(t *testing.T, p *Pipeline, job Job) ([]Event, error) {
	t.Helper()
	var events []Event
	err := p.Process(testContext(t), job, func(e Event) {
		events = append(events, e)
	})
	return events, err
}

// results maps step ids to result images.
func results(events []Event) map[string]Image {
	out := make(map[string]Image)
	for _, e := range events {
		if e.Type == EventResult {
			out[e.ID] = e.Image
		}
	}
	return out
}
