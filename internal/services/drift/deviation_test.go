package drift

import (
	"math"
	"testing"
)

func TestRatioBothZero(t *testing.T) {
	got := Ratio(0, 0)
	if got.BaselineWasZero {
		t.Fatalf("expected finite deviation")
	}
	if got.Ratio != 1.0 {
		t.Fatalf("expected 1.0, got %v", got.Ratio)
	}
}

func TestRatioZeroBaseline(t *testing.T) {
	got := Ratio(0.5, 0)
	if !got.BaselineWasZero {
		t.Fatalf("expected infinite deviation")
	}
	if !math.IsInf(got.Float64(), 1) {
		t.Fatalf("expected +Inf, got %v", got.Float64())
	}
}

func TestRatioNegativeCurrentClamped(t *testing.T) {
	got := Ratio(-3, 0.5)
	if got.Ratio != 0 {
		t.Fatalf("expected 0, got %v", got.Ratio)
	}
}

func TestRatioNegativeCurrentZeroBaseline(t *testing.T) {
	// clamped to 0 first, then 0/0
	got := Ratio(-3, 0)
	if got.BaselineWasZero || got.Ratio != 1.0 {
		t.Fatalf("expected finite 1.0, got %+v", got)
	}
}

func TestRatioRounding(t *testing.T) {
	got := Ratio(1, 3)
	if got.Ratio != 0.3333 {
		t.Fatalf("expected 0.3333, got %v", got.Ratio)
	}
	got = Ratio(2, 3)
	if got.Ratio != 0.6667 {
		t.Fatalf("expected 0.6667, got %v", got.Ratio)
	}
}

func TestRatioPlain(t *testing.T) {
	got := Ratio(0.08, 0.02)
	if got.Ratio != 4.0 {
		t.Fatalf("expected 4.0, got %v", got.Ratio)
	}
}
