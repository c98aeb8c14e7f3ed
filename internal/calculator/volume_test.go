package calculator

import (
	"math"
	"testing"
)

func TestVolumeRatio_HandComputed(t *testing.T) {
	// Trailing window of 4 averages 10, latest 17 gives 1.7x.
	volumes := []float64{10, 10, 10, 10, 17}
	got, err := VolumeRatio(volumes, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-1.7) > 1e-9 {
		t.Errorf("expected ratio 1.7, got %.4f", got)
	}
}

func TestVolumeRatio_ExcludesLatestFromAverage(t *testing.T) {
	// The latest bar must not dilute its own baseline.
	volumes := []float64{100, 100, 100, 1000}
	got, err := VolumeRatio(volumes, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-10.0) > 1e-9 {
		t.Errorf("expected ratio 10.0, got %.4f", got)
	}
}

func TestVolumeRatio_Errors(t *testing.T) {
	if _, err := VolumeRatio([]float64{10, 10}, 20); err == nil {
		t.Error("expected error for short series")
	}
	if _, err := VolumeRatio([]float64{0, 0, 0, 5}, 3); err == nil {
		t.Error("expected error for zero trailing average")
	}
	if _, err := VolumeRatio([]float64{1, 2, 3}, 0); err == nil {
		t.Error("expected error for non-positive window")
	}
}

func TestChangePct(t *testing.T) {
	tests := []struct {
		closes []float64
		want   float64
	}{
		{[]float64{100, 103}, 3.0},
		{[]float64{200, 190}, -5.0},
		{[]float64{50, 50}, 0.0},
	}
	for _, tt := range tests {
		got, err := ChangePct(tt.closes)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("closes %v: expected %.2f, got %.4f", tt.closes, tt.want, got)
		}
	}
	if _, err := ChangePct([]float64{100}); err == nil {
		t.Error("expected error for single close")
	}
}
