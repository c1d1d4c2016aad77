package ordered

import (
	"fmt"
	"math/rand/v2"

	"github.com/gogpu/dither/internal/filter"
	"github.com/gogpu/dither/internal/image"
)

// BlueNoise returns a 2^level square blue-noise mask built with Ulichney's
// void-and-cluster method on a torus. The result depends only on level and
// p, so equal inputs give identical masks.
func BlueNoise(level int, p Params) (*image.Buf, error) {
	if level < MinBlueNoiseLevel || level > MaxBlueNoiseLevel {
		return nil, fmt.Errorf("%w: blue noise level %d", ErrLevelRange, level)
	}
	sigma := p.Sigma
	if sigma <= 0 {
		sigma = DefaultSigma
	}
	size := 1 << level
	vc := newVoidCluster(size, sigma)
	return fromRanks(vc.ranks(rand.New(rand.NewPCG(p.Seed, uint64(level)))), size)
}

// voidCluster keeps a binary pattern on a size x size torus together with
// the Gaussian-filtered energy of its set cells.
type voidCluster struct {
	size    int
	taps    []float64 // separable Gaussian, centered at len(taps)/2
	pattern []bool
	energy  []float64
}

func newVoidCluster(size int, sigma float64) *voidCluster {
	k := filter.GaussianKernel(sigma)
	taps := make([]float64, len(k))
	for i, v := range k {
		taps[i] = float64(v)
	}
	return &voidCluster{
		size:    size,
		taps:    taps,
		pattern: make([]bool, size*size),
		energy:  make([]float64, size*size),
	}
}

// toggle flips cell i and updates the energy field around it.
func (vc *voidCluster) toggle(i int) {
	sign := 1.0
	if vc.pattern[i] {
		sign = -1
	}
	vc.pattern[i] = !vc.pattern[i]

	n := vc.size
	cx, cy := i%n, i/n
	half := len(vc.taps) / 2
	for dy, wy := range vc.taps {
		y := ((cy+dy-half)%n + n) % n
		for dx, wx := range vc.taps {
			x := ((cx+dx-half)%n + n) % n
			vc.energy[y*n+x] += sign * wy * wx
		}
	}
}

// tightestCluster returns the set cell with the highest energy.
func (vc *voidCluster) tightestCluster() int {
	best, bestE := -1, 0.0
	for i, set := range vc.pattern {
		if set && (best < 0 || vc.energy[i] > bestE) {
			best, bestE = i, vc.energy[i]
		}
	}
	return best
}

// largestVoid returns the unset cell with the lowest energy.
func (vc *voidCluster) largestVoid() int {
	best, bestE := -1, 0.0
	for i, set := range vc.pattern {
		if !set && (best < 0 || vc.energy[i] < bestE) {
			best, bestE = i, vc.energy[i]
		}
	}
	return best
}

// ranks runs the three void-and-cluster phases and returns the rank of
// every cell.
func (vc *voidCluster) ranks(rng *rand.Rand) []int {
	total := vc.size * vc.size
	ones := max(1, total/10)

	// Initial random pattern with ~10% of cells set.
	for _, i := range rng.Perm(total)[:ones] {
		vc.toggle(i)
	}

	// Relax the pattern: move the tightest cluster into the largest void
	// until the move would undo itself.
	for range total {
		c := vc.tightestCluster()
		vc.toggle(c)
		v := vc.largestVoid()
		if v == c {
			vc.toggle(c)
			break
		}
		vc.toggle(v)
	}

	prototype := make([]bool, total)
	copy(prototype, vc.pattern)
	protoEnergy := make([]float64, total)
	copy(protoEnergy, vc.energy)

	ranks := make([]int, total)

	// Phase 1: strip clusters from the prototype, ranking downwards.
	for r := ones - 1; r >= 0; r-- {
		c := vc.tightestCluster()
		vc.toggle(c)
		ranks[c] = r
	}

	// Phases 2 and 3: restore the prototype and fill voids upwards. Past the
	// half-way point the largest void of the ones is the tightest cluster of
	// the zeros, so one loop covers both phases.
	copy(vc.pattern, prototype)
	copy(vc.energy, protoEnergy)
	for r := ones; r < total; r++ {
		v := vc.largestVoid()
		vc.toggle(v)
		ranks[v] = r
	}

	return ranks
}
