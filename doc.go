// Package dither turns images into dithered previews through a fixed
// catalogue of quantization and dithering steps.
//
// # Overview
//
// A Pipeline accepts Jobs (an 8-bit image plus a gray or color Mode) and
// streams Events: the original image first, then one result per catalogue
// step, always in catalogue order. Gray jobs produce black-and-white
// results; color jobs produce results with 8, 27 and 64 colors by default.
//
// # Quick Start
//
//	import "github.com/gogpu/dither"
//
//	p, err := dither.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer p.Close()
//
//	job := dither.Job{Mode: dither.ModeGray, Image: img}
//	err = p.Process(ctx, job, func(e dither.Event) {
//		if e.Type == dither.EventResult {
//			save(e.ID, e.Image)
//		}
//	})
//
// # Steps
//
// Gray catalogue: plain threshold, random dithering, Bayer levels 1 to 4,
// and simple, Floyd-Steinberg and Jarvis-Judice-Ninke error diffusion.
// Color catalogue, per palette: the same families with Bayer levels 1
// and 3 plus a blue-noise mask.
//
// # Shared masks
//
// Bayer matrices and the blue-noise mask are computed once per pipeline by
// a background worker and shared by all jobs. A step that needs a mask
// waits for it; a mask that fails to arrive fails only the jobs waiting
// for it and is requested again by the next job.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Pipeline, Job, Event, Step, Provider
//   - Internal: image (sample buffers), filter (quantizers, diffusion),
//     ordered (mask generation), correlate (request/response matching),
//     asset (mask worker), cache (memo), parallel (worker pool)
package dither

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
