package sampler

import (
	"math"
	"testing"
)

func TestFractionalSampleErrorNoData(t *testing.T) {
	s, _ := newTestSampler(t)
	if got := s.FractionalSampleError(1); got != 2 {
		t.Fatalf("expected sentinel 2, got %f", got)
	}
	if got := s.FractionalSampleError(-1); got != 2 {
		t.Fatalf("expected sentinel 2, got %f", got)
	}
	if got := s.FractionalSampleError(0); got != 2 {
		t.Fatalf("expected sentinel 2 at zero temperature, got %f", got)
	}
}

func TestFractionalSampleErrorLowEnergyWindow(t *testing.T) {
	s, _ := newTestSampler(t)
	// peak index 5, flat density of states in the window
	s.sampleHist[5] = 4
	s.sampleHist[3] = 1

	// window [3,5], midpoint 4: terms exp(1) at 3 and exp(-1) at 5
	low := math.Exp(1)
	high := math.Exp(-1)
	want := (low/1 + high/2) / (low + high)
	if got := s.FractionalSampleError(1); math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %f want %f", got, want)
	}
}

func TestFractionalSampleErrorHighEnergyWindow(t *testing.T) {
	s, _ := newTestSampler(t)
	s.sampleHist[5] = 9
	s.sampleHist[7] = 1

	// window [5,7], midpoint 6, temp -1: exp(-1) at 5 and exp(1) at 7
	low := math.Exp(-1)
	high := math.Exp(1)
	want := (low/3 + high/1) / (low + high)
	if got := s.FractionalSampleError(-1); math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %f want %f", got, want)
	}
}

func TestFractionalSampleErrorSingleBin(t *testing.T) {
	s, _ := newTestSampler(t)
	s.sampleHist[5] = 16
	// only the peak is sampled: error is 1/sqrt(16)
	if got := s.FractionalSampleError(1); math.Abs(got-0.25) > 1e-12 {
		t.Fatalf("got %f want 0.25", got)
	}
}
