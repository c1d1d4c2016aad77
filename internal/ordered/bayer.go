package ordered

import (
	"fmt"

	"github.com/gogpu/dither/internal/image"
)

// Bayer returns the Bayer matrix of the given level, 2^(level+1) on a side.
//
// Level 0 is the 2x2 matrix [0 2; 3 1]; each further level expands every
// cell m of the previous one into [4m 4m+2; 4m+3 4m+1].
func Bayer(level int) (*image.Buf, error) {
	if level < 0 || level > MaxBayerLevel {
		return nil, fmt.Errorf("%w: bayer level %d", ErrLevelRange, level)
	}
	return fromRanks(bayerRanks(level), 2<<level)
}

func bayerRanks(level int) []int {
	ranks := []int{0, 2, 3, 1}
	size := 2
	for range level {
		next := make([]int, 4*size*size)
		nsize := 2 * size
		for y := range size {
			for x := range size {
				m := 4 * ranks[y*size+x]
				next[y*nsize+x] = m
				next[y*nsize+x+size] = m + 2
				next[(y+size)*nsize+x] = m + 3
				next[(y+size)*nsize+x+size] = m + 1
			}
		}
		ranks, size = next, nsize
	}
	return ranks
}
