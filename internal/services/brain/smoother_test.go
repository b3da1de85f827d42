package brain

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestWindow_MeanOverPartialFill(t *testing.T) {
	w := NewWindow(5)
	w.Append(10)
	if !almostEqual(w.Mean(), 10) {
		t.Errorf("mean of single value = %v, want 10", w.Mean())
	}
	w.Append(20)
	if !almostEqual(w.Mean(), 15) {
		t.Errorf("mean of two values = %v, want 15", w.Mean())
	}
}

func TestWindow_FIFOEviction(t *testing.T) {
	w := NewWindow(5)
	for _, v := range []float64{1, 2, 3, 4, 5, 6} {
		w.Append(v)
	}
	if w.Len() != 5 {
		t.Fatalf("window size = %d, want 5", w.Len())
	}
	// Oldest value (1) evicted: mean of 2..6.
	if !almostEqual(w.Mean(), 4) {
		t.Errorf("mean after eviction = %v, want 4", w.Mean())
	}
}

func TestWindow_MeanMatchesLastFive(t *testing.T) {
	w := NewWindow(5)
	seq := []float64{7, 3, 9, 12, 5, 8, 11, 2, 6, 10}
	for _, v := range seq {
		w.Append(v)
	}
	last5 := seq[len(seq)-5:]
	sum := 0.0
	for _, v := range last5 {
		sum += v
	}
	want := sum / 5
	if !almostEqual(w.Mean(), want) {
		t.Errorf("mean = %v, want %v (mean of last five appends)", w.Mean(), want)
	}
}

func TestWindow_EmptyMeanIsZero(t *testing.T) {
	w := NewWindow(5)
	if w.Mean() != 0 {
		t.Errorf("empty mean = %v, want 0", w.Mean())
	}
}

func TestSmoother_PerChannelIndependence(t *testing.T) {
	s := NewSmoother()
	s.Observe(30, 25, 500)
	s.Observe(50, 27, 700)
	r := s.Reading()
	if !almostEqual(r.AvgSoil, 40) || !almostEqual(r.AvgTemp, 26) || !almostEqual(r.AvgLight, 600) {
		t.Errorf("reading = %+v, want soil=40 temp=26 light=600", r)
	}
	if s.SoilCount() != 2 {
		t.Errorf("soil count = %d, want 2", s.SoilCount())
	}
}
