package ordered

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/dither/internal/image"
)

// ranksOf recovers integer ranks from a normalized mask.
func ranksOf(t *testing.T, m *image.Buf) []int {
	t.Helper()
	n := float32(len(m.Samples()))
	ranks := make([]int, len(m.Samples()))
	for i, v := range m.Samples() {
		ranks[i] = int(v*n - 0.5 + 0.25)
	}
	return ranks
}

func assertPermutation(t *testing.T, ranks []int) {
	t.Helper()
	sorted := slices.Clone(ranks)
	slices.Sort(sorted)
	for i, r := range sorted {
		if r != i {
			t.Fatalf("ranks are not a permutation of 0..%d: sorted[%d] = %d", len(ranks)-1, i, r)
		}
	}
}

func TestBayerLevel0(t *testing.T) {
	m, err := Bayer(0)
	if err != nil {
		t.Fatalf("Bayer(0): %v", err)
	}
	if m.Width() != 2 || m.Height() != 2 || m.Channels() != 1 {
		t.Fatalf("shape = %dx%dx%d, want 2x2x1", m.Width(), m.Height(), m.Channels())
	}
	want := []float32{0.125, 0.625, 0.875, 0.375}
	if !slices.Equal(m.Samples(), want) {
		t.Errorf("samples = %v, want %v", m.Samples(), want)
	}
}

func TestBayerLevel1(t *testing.T) {
	m, err := Bayer(1)
	if err != nil {
		t.Fatalf("Bayer(1): %v", err)
	}
	want := []int{
		0, 8, 2, 10,
		12, 4, 14, 6,
		3, 11, 1, 9,
		15, 7, 13, 5,
	}
	if got := ranksOf(t, m); !slices.Equal(got, want) {
		t.Errorf("ranks = %v, want %v", got, want)
	}
}

func TestBayerSizesArePermutations(t *testing.T) {
	for level := range 5 {
		m, err := Bayer(level)
		if err != nil {
			t.Fatalf("Bayer(%d): %v", level, err)
		}
		if size := 2 << level; m.Width() != size || m.Height() != size {
			t.Errorf("Bayer(%d) size = %dx%d, want %d", level, m.Width(), m.Height(), size)
		}
		assertPermutation(t, ranksOf(t, m))
	}
}

func TestBayerLevelRange(t *testing.T) {
	for _, level := range []int{-1, MaxBayerLevel + 1} {
		if _, err := Bayer(level); !errors.Is(err, ErrLevelRange) {
			t.Errorf("Bayer(%d) error = %v, want ErrLevelRange", level, err)
		}
	}
}

func TestBlueNoisePermutation(t *testing.T) {
	m, err := BlueNoise(4, Params{Seed: 7})
	if err != nil {
		t.Fatalf("BlueNoise: %v", err)
	}
	if m.Width() != 16 || m.Height() != 16 {
		t.Fatalf("size = %dx%d, want 16x16", m.Width(), m.Height())
	}
	assertPermutation(t, ranksOf(t, m))
}

func TestBlueNoiseDeterministic(t *testing.T) {
	a, err := BlueNoise(4, Params{Sigma: 1.5, Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	b, err := BlueNoise(4, Params{Sigma: 1.5, Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.Samples(), b.Samples()) {
		t.Error("equal parameters produced different masks")
	}
}

// The lowest thresholds of a blue-noise mask are spread out: almost none of
// them are 4-neighbors of each other.
func TestBlueNoiseSpreadsMinorityPixels(t *testing.T) {
	m, err := BlueNoise(5, Params{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	n := m.Width()
	adjacent := 0
	set := 0
	for y := range n {
		for x := range n {
			if m.At(x, y, 0) >= 0.1 {
				continue
			}
			set++
			if m.WrapAt(x+1, y)[0] < 0.1 {
				adjacent++
			}
			if m.WrapAt(x, y+1)[0] < 0.1 {
				adjacent++
			}
		}
	}
	// White noise would give about 2*set*0.1 neighbor pairs.
	if limit := set / 10; adjacent > limit {
		t.Errorf("%d adjacent minority pairs among %d cells, want <= %d", adjacent, set, limit)
	}
}

func TestBlueNoiseLevelRange(t *testing.T) {
	for _, level := range []int{0, MaxBlueNoiseLevel + 1} {
		if _, err := BlueNoise(level, Params{}); !errors.Is(err, ErrLevelRange) {
			t.Errorf("BlueNoise(%d) error = %v, want ErrLevelRange", level, err)
		}
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		kind  Kind
		level int
		size  int
	}{
		{KindBayer, 0, 2},
		{KindBayer, 3, 16},
		{KindBlueNoise, 3, 8},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			m, err := Generate(tt.kind, tt.level, Params{})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if m.Width() != tt.size {
				t.Errorf("size = %d, want %d", m.Width(), tt.size)
			}
		})
	}

	if _, err := Generate(Kind(99), 0, Params{}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown kind error = %v, want ErrUnknownKind", err)
	}
}

func BenchmarkBlueNoise64(b *testing.B) {
	for b.Loop() {
		if _, err := BlueNoise(6, Params{Seed: 1}); err != nil {
			b.Fatal(err)
		}
	}
}
