package vector

import (
	"math"
	"testing"
)

func TestInnerProduct(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"identical unit", []float32{0.6, 0.8}, []float32{0.6, 0.8}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := InnerProduct(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-6 {
				t.Errorf("InnerProduct = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestL2Norm(t *testing.T) {
	if got := L2Norm([]float32{3, 4}); math.Abs(got-5) > 1e-6 {
		t.Errorf("L2Norm(3,4) = %f, want 5", got)
	}
	if got := L2Norm(nil); got != 0 {
		t.Errorf("L2Norm(nil) = %f, want 0", got)
	}
	if got := L2Norm([]float32{0.6, 0.8}); math.Abs(got-1) > 1e-6 {
		t.Errorf("normalized vector norm = %f, want 1", got)
	}
}
