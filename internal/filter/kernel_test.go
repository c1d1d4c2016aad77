package filter

import (
	"errors"
	"math"
	"testing"
)

func TestKernelLibrary(t *testing.T) {
	tests := []struct {
		name   string
		kernel Kernel
		w, h   int
		anchor int
		raw    []float32
	}{
		{"simple", Simple2D(), 2, 2, 0, []float32{0, 1, 1, 0}},
		{"floyd-steinberg", FloydSteinberg(), 3, 2, 1, []float32{0, 0, 7, 1, 5, 3}},
		{"jarvis-judice-ninke", JarvisJudiceNinke(), 5, 3, 2, []float32{0, 0, 0, 7, 5, 3, 5, 7, 5, 3, 1, 3, 5, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := tt.kernel
			if k.Width() != tt.w || k.Height() != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", k.Width(), k.Height(), tt.w, tt.h)
			}
			if k.Anchor() != tt.anchor {
				t.Errorf("Anchor() = %d, want %d", k.Anchor(), tt.anchor)
			}
			if w := k.Weight(k.Anchor(), 0); w != 0 {
				t.Errorf("anchor weight = %v, want 0", w)
			}

			var rawSum float32
			for _, v := range tt.raw {
				rawSum += v
			}
			for i, w := range k.Weights() {
				want := tt.raw[i] / rawSum
				if math.Abs(float64(w-want)) > 1e-6 {
					t.Errorf("weight %d = %v, want %v", i, w, want)
				}
			}
		})
	}
}

func TestKernelNormalizedSumsToOne(t *testing.T) {
	inputs := [][]float32{
		{0, 1, 1, 0},
		{0, 1000, 3000, 0.5},
		{0, 1e-6, 2e-6, 1e-6},
		{9, 2, 2, 2}, // anchor weight is dropped
	}
	for _, weights := range inputs {
		k, err := NewKernel(weights, 2, 2)
		if err != nil {
			t.Fatalf("NewKernel(%v) error = %v", weights, err)
		}
		renorm, err := k.Normalized()
		if err != nil {
			t.Fatalf("Normalized() error = %v", err)
		}
		for _, kk := range []Kernel{k, renorm} {
			var sum float64
			for y := range kk.Height() {
				for x := range kk.Width() {
					if x == kk.Anchor() && y == 0 {
						continue
					}
					sum += float64(kk.Weight(x, y))
				}
			}
			if math.Abs(sum-1) > 1e-5 {
				t.Errorf("NewKernel(%v) weights sum to %v, want 1", weights, sum)
			}
		}
	}
}

func TestNewKernelErrors(t *testing.T) {
	tests := []struct {
		name    string
		weights []float32
		w, h    int
		wantErr error
	}{
		{"shape", []float32{1, 2, 3}, 2, 2, ErrKernelShape},
		{"empty", nil, 0, 0, ErrKernelShape},
		{"zero", []float32{0, 0, 0, 0}, 2, 2, ErrZeroKernel},
		{"anchor only", []float32{5, 0, 0, 0}, 2, 2, ErrZeroKernel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewKernel(tt.weights, tt.w, tt.h); !errors.Is(err, tt.wantErr) {
				t.Errorf("NewKernel() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestKernelIsImmutable(t *testing.T) {
	src := []float32{0, 1, 1, 0}
	k, _ := NewKernel(src, 2, 2)
	src[1] = 100
	w := k.Weights()
	w[2] = 100
	if k.Weight(1, 0) != 0.5 || k.Weight(0, 1) != 0.5 {
		t.Errorf("kernel changed through aliasing: %v", k.Weights())
	}
}

func TestGaussianKernel(t *testing.T) {
	if k := GaussianKernel(0); len(k) != 1 || k[0] != 1 {
		t.Errorf("GaussianKernel(0) = %v, want [1]", k)
	}

	for _, r := range []float64{0.5, 1, 1.5, 5} {
		k := GaussianKernel(r)
		if want := int(math.Ceil(r*3))*2 + 1; len(k) != want {
			t.Errorf("GaussianKernel(%v) len = %d, want %d", r, len(k), want)
		}
		var sum float32
		for i, v := range k {
			sum += v
			if j := len(k) - 1 - i; math.Abs(float64(v-k[j])) > 1e-6 {
				t.Errorf("GaussianKernel(%v) asymmetric at %d", r, i)
			}
		}
		if math.Abs(float64(sum)-1) > 1e-4 {
			t.Errorf("GaussianKernel(%v) sum = %v, want ~1", r, sum)
		}
	}
}
