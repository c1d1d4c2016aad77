// Package ordered generates the threshold masks used by ordered dithering:
// Bayer matrices and void-and-cluster blue noise.
//
// Every mask is a one-channel image.Buf whose samples are the normalized
// ranks (rank+0.5)/n of its n cells, so each mask is a permutation of the
// same evenly spaced thresholds.
package ordered

import (
	"errors"
	"fmt"

	"github.com/gogpu/dither/internal/image"
)

// Errors returned by Generate.
var (
	// ErrUnknownKind is returned for a Kind with no generator.
	ErrUnknownKind = errors.New("ordered: unknown mask kind")

	// ErrLevelRange is returned when a level is outside the supported range.
	ErrLevelRange = errors.New("ordered: level out of range")
)

// Kind selects a mask generator.
type Kind uint8

const (
	// KindBayer is a recursive Bayer matrix of size 2^(level+1).
	KindBayer Kind = iota

	// KindBlueNoise is a void-and-cluster mask of size 2^level.
	KindBlueNoise
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBayer:
		return "bayer"
	case KindBlueNoise:
		return "bluenoise"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Level bounds per kind.
const (
	MaxBayerLevel     = 7 // 256x256
	MinBlueNoiseLevel = 1
	MaxBlueNoiseLevel = 7 // 128x128
)

// Params tunes generators that have free parameters.
type Params struct {
	// Sigma is the Gaussian energy radius for blue noise. Zero means 1.5.
	Sigma float64

	// Seed seeds the initial blue-noise pattern.
	Seed uint64
}

// DefaultSigma is the void-and-cluster energy radius used when Params.Sigma
// is zero.
const DefaultSigma = 1.5

// Generate builds the mask of the given kind and level.
func Generate(kind Kind, level int, p Params) (*image.Buf, error) {
	switch kind {
	case KindBayer:
		return Bayer(level)
	case KindBlueNoise:
		return BlueNoise(level, p)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
}

// fromRanks converts a rank permutation into a normalized mask.
func fromRanks(ranks []int, size int) (*image.Buf, error) {
	n := float32(len(ranks))
	samples := make([]float32, len(ranks))
	for i, r := range ranks {
		samples[i] = (float32(r) + 0.5) / n
	}
	return image.FromSamples(samples, size, size, 1)
}
