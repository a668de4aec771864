package floatutils

import (
	"math"
	"testing"
)

func TestClip(t *testing.T) {
	tests := []struct {
		value, min, max, want float64
	}{
		{0.5, -1, 1, 0.5},
		{2, -1, 1, 1},
		{-3, -1, 1, -1},
	}

	for _, test := range tests {
		if got := Clip(test.value, test.min, test.max); got != test.want {
			t.Errorf("clip(%v, %v, %v): \n\thave(%v) \n\twant(%v)", test.value,
				test.min, test.max, got, test.want)
		}
	}
}

func TestMean(t *testing.T) {
	if got := Mean(1, 0, 1, 0); got != 0.5 {
		t.Errorf("mean: \n\thave(%v) \n\twant(0.5)", got)
	}
	if got := Mean(); !math.IsNaN(got) {
		t.Errorf("mean: empty list \n\thave(%v) \n\twant(NaN)", got)
	}
}
