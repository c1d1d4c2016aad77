package dither

import (
	"time"

	"golang.org/x/text/language"

	"github.com/gogpu/dither/internal/correlate"
	"github.com/gogpu/dither/internal/ordered"
)

// Option configures a Pipeline during creation.
//
// Example:
//
//	// Defaults: GOMAXPROCS asset workers, 64x64 blue noise, 8/27/64 colors
//	p, err := dither.New()
//
//	// Larger palettes, reproducible random steps
//	rng := rand.New(rand.NewPCG(1, 2))
//	p, err := dither.New(
//		dither.WithPaletteLevels(2, 4, 8),
//		dither.WithRandom(rng.Float32),
//	)
type Option func(*config)

// config holds the pipeline settings.
type config struct {
	workers       int
	assetTimeout  time.Duration
	blueLevel     int
	blueParams    ordered.Params
	paletteLevels []int
	lang          language.Tag
	linear        bool
	parallelRows  bool
	random        func() float32
	announce      bool
}

// Defaults.
const (
	DefaultBlueNoiseLevel = 6 // 64x64
	DefaultAssetTimeout   = correlate.DefaultTimeout
)

// DefaultPaletteLevels are the per-axis levels of the color catalogue:
// 8, 27 and 64 colors.
var DefaultPaletteLevels = []int{2, 3, 4}

// defaultConfig returns the default pipeline settings.
func defaultConfig() config {
	return config{
		assetTimeout:  DefaultAssetTimeout,
		blueLevel:     DefaultBlueNoiseLevel,
		blueParams:    ordered.Params{Sigma: ordered.DefaultSigma},
		paletteLevels: DefaultPaletteLevels,
		lang:          language.English,
		announce:      true,
	}
}

// WithWorkers sets the number of goroutines computing masks and, with
// WithParallelRows, row bands. Zero or negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithAssetTimeout bounds how long a job waits for a mask. Expiry fails the
// job with an *AssetError wrapping correlate.ErrTimeout. Zero or negative
// disables the bound.
func WithAssetTimeout(d time.Duration) Option {
	return func(c *config) {
		c.assetTimeout = d
	}
}

// WithBlueNoise sets the blue-noise mask: 2^level on a side, Gaussian
// energy radius sigma (0 means 1.5) and the seed of its initial pattern.
func WithBlueNoise(level int, sigma float64, seed uint64) Option {
	return func(c *config) {
		c.blueLevel = level
		c.blueParams = ordered.Params{Sigma: sigma, Seed: seed}
	}
}

// WithPaletteLevels sets the per-axis levels of the color catalogue. Each
// level L adds a block of steps using L³ colors. Levels are clamped to
// [2,255].
func WithPaletteLevels(levels ...int) Option {
	return func(c *config) {
		if len(levels) > 0 {
			c.paletteLevels = append([]int(nil), levels...)
		}
	}
}

// WithLanguage sets the language step titles are formatted for.
func WithLanguage(tag language.Tag) Option {
	return func(c *config) {
		c.lang = tag
	}
}

// WithLinearLight decodes input from sRGB to linear light before
// dithering and encodes results back, instead of dithering sRGB values.
func WithLinearLight(enabled bool) Option {
	return func(c *config) {
		c.linear = enabled
	}
}

// WithParallelRows spreads pointwise steps over the worker pool in row
// bands. Error diffusion always runs sequentially.
func WithParallelRows(enabled bool) Option {
	return func(c *config) {
		c.parallelRows = enabled
	}
}

// WithRandom sets the source of uniform [0,1) draws for random dithering.
// With WithParallelRows, rnd must be safe for concurrent use.
// The default is math/rand/v2.Float32.
func WithRandom(rnd func() float32) Option {
	return func(c *config) {
		c.random = rnd
	}
}

// WithAnnounce controls whether the asset worker broadcasts the blue-noise
// mask at startup. When disabled the mask is requested on first use.
func WithAnnounce(enabled bool) Option {
	return func(c *config) {
		c.announce = enabled
	}
}
