package dither

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/gogpu/dither/internal/filter"
	"github.com/gogpu/dither/internal/image"
	"github.com/gogpu/dither/internal/parallel"
)

// Method is the dithering algorithm of a Step.
type Method uint8

const (
	// MethodQuantize snaps every sample to the palette.
	MethodQuantize Method = iota

	// MethodRandom biases every sample by uniform noise before snapping.
	MethodRandom

	// MethodOrdered biases every sample by a tiled threshold mask.
	MethodOrdered

	// MethodDiffuse spreads each pixel's quantization error to its
	// unvisited neighbors.
	MethodDiffuse
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case MethodQuantize:
		return "quantize"
	case MethodRandom:
		return "random"
	case MethodOrdered:
		return "ordered"
	case MethodDiffuse:
		return "diffuse"
	default:
		return fmt.Sprintf("Method(%d)", uint8(m))
	}
}

// Kernel is an error-diffusion kernel.
type Kernel = filter.Kernel

// AssetKey identifies a shared threshold mask.
type AssetKey struct {
	Kind  MaskKind
	Level int
}

func (k AssetKey) String() string {
	return fmt.Sprintf("%v/%d", k.Kind, k.Level)
}

// Assets resolves shared masks for a step. Mask blocks until the mask is
// available or ctx is done.
type Assets interface {
	Mask(ctx context.Context, key AssetKey) (*Buf, error)
}

// Step is one entry of a pipeline catalogue.
type Step struct {
	ID    string
	Title string

	Method Method

	// Levels is the palette size per channel. Zero means a binary
	// threshold at 0.5.
	Levels int

	// Asset names the mask of a MethodOrdered step.
	Asset AssetKey

	// Kernel is the diffusion kernel of a MethodDiffuse step.
	Kernel Kernel
}

// stepEnv is what a step draws on besides its input.
type stepEnv struct {
	assets Assets
	rows   *parallel.WorkerPool // nil runs rows inline
	random func() float32
}

// Process runs the step on a copy of img and returns the copy. Neither img
// nor the assets are modified.
func (s Step) Process(ctx context.Context, img *Buf, assets Assets) (*Buf, error) {
	out := img.Clone()
	if err := s.apply(ctx, out, stepEnv{assets: assets}); err != nil {
		return nil, err
	}
	return out, nil
}

// apply runs the step in place on img.
func (s Step) apply(ctx context.Context, img *image.Buf, env stepEnv) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q, bias := s.quantizer()

	switch s.Method {
	case MethodQuantize:
		filter.Quantize(img, q, env.rows)

	case MethodRandom:
		rnd := env.random
		if rnd == nil {
			rnd = rand.Float32
		}
		filter.Random(img, q, bias, rnd, env.rows)

	case MethodOrdered:
		if env.assets == nil {
			return &AssetError{Key: s.Asset, Err: errors.New("no asset source")}
		}
		mask, err := env.assets.Mask(ctx, s.Asset)
		if err != nil {
			return err
		}
		filter.Ordered(img, mask, q, bias, env.rows)

	case MethodDiffuse:
		filter.ErrorDiffusion(img, s.Kernel, q)

	default:
		return fmt.Errorf("dither: step %s: unknown method %v", s.ID, s.Method)
	}
	return nil
}

// quantizer returns the palette and noise range of the step.
func (s Step) quantizer() (filter.Quantizer, filter.Bias) {
	if s.Levels <= 0 {
		return filter.Threshold(0.5), filter.Remap(-0.5, 0.5)
	}
	l := float32(s.Levels)
	return filter.EvenPalette(s.Levels), filter.Remap(-1/l, 1/l)
}
