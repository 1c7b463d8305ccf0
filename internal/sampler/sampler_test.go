package sampler

import (
	"testing"

	"hopwalk/internal/model"
	"hopwalk/internal/network"
)

// newTestSampler builds a 5-node fully ferromagnetic network: scale 2,
// max single-flip change 4, energy range 11, initial peak index 5.
func newTestSampler(t *testing.T) (*Sampler, *network.Network) {
	t.Helper()
	net, err := network.Build([][]bool{{true, true, true, true, true}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if net.EnergyRange() != 11 || net.MaxFlip() != 4 {
		t.Fatalf("unexpected fixture: range=%d maxFlip=%d", net.EnergyRange(), net.MaxFlip())
	}
	s, err := New(net, make([]bool, net.Nodes()), Options{})
	if err != nil {
		t.Fatalf("new sampler: %v", err)
	}
	return s, net
}

// fixedTempSampler is the same fixture running a plain Boltzmann walk.
func fixedTempSampler(t *testing.T) (*Sampler, *network.Network) {
	t.Helper()
	net, err := network.Build([][]bool{{true, true, true, true, true}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	s, err := New(net, make([]bool, net.Nodes()), Options{FixedTemperature: true})
	if err != nil {
		t.Fatalf("new sampler: %v", err)
	}
	return s, net
}

func TestNewRejectsWrongStateLength(t *testing.T) {
	net, err := network.Build([][]bool{{true, false}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := New(net, []bool{true}, Options{}); err == nil {
		t.Fatal("expected state length error")
	}
}

func TestRecordSampleIndependence(t *testing.T) {
	s, _ := newTestSampler(t)
	if s.EntropyPeak() != 5 {
		t.Fatalf("expected initial peak 5, got %d", s.EntropyPeak())
	}

	// first visit to a low energy counts
	s.RecordSample(2, 3)
	if s.sampleHist[2] != 1 {
		t.Fatalf("expected 1 sample at 2, got %d", s.sampleHist[2])
	}
	// lingering there does not
	s.RecordSample(2, 2)
	s.RecordSample(3, 2)
	s.RecordSample(2, 3)
	if s.sampleHist[2] != 1 {
		t.Fatalf("raw revisits may not count: got %d", s.sampleHist[2])
	}

	// a peak crossing decorrelates: the next visit counts again
	s.RecordSample(5, 2)
	s.RecordSample(2, 5)
	if s.sampleHist[2] != 2 {
		t.Fatalf("expected 2 samples after peak crossing, got %d", s.sampleHist[2])
	}
	s.RecordSample(5, 2)
	s.RecordSample(2, 5)
	if s.sampleHist[2] != 3 {
		t.Fatalf("expected one increment per peak-crossing cycle, got %d", s.sampleHist[2])
	}
}

func TestRecordSampleSideSweep(t *testing.T) {
	s, _ := newTestSampler(t)

	s.RecordSample(3, 4)
	if s.sampleHist[3] != 1 {
		t.Fatalf("expected 1 sample at 3, got %d", s.sampleHist[3])
	}
	// jumping over the peak clears the side being left
	s.RecordSample(7, 3)
	if s.sampleHist[7] != 1 {
		t.Fatalf("expected 1 sample at 7, got %d", s.sampleHist[7])
	}
	if s.visited[3] {
		t.Fatal("low side should be cleared after sweeping above the peak")
	}
	// and sweeping back clears the high side and recounts the low energy
	s.RecordSample(3, 7)
	if s.sampleHist[3] != 2 {
		t.Fatalf("expected 2 samples at 3 after sweep back, got %d", s.sampleHist[3])
	}
	if s.visited[7] {
		t.Fatal("high side should be cleared after sweeping below the peak")
	}
}

func TestRecordSampleAtPeak(t *testing.T) {
	s, _ := newTestSampler(t)

	s.RecordSample(3, 4)
	s.RecordSample(5, 3) // arrival clears the whole log
	if s.sampleHist[5] != 1 {
		t.Fatalf("expected 1 sample at peak, got %d", s.sampleHist[5])
	}
	if s.visited[3] || s.visited[5] {
		t.Fatal("landing on the peak must clear the visit log")
	}
	// every step spent sitting on the peak is an independent peak sample
	s.RecordSample(5, 5)
	s.RecordSample(5, 5)
	if s.sampleHist[5] != 3 {
		t.Fatalf("expected 3 peak samples, got %d", s.sampleHist[5])
	}
	if s.visited[5] {
		t.Fatal("peak slot must be re-cleared while sitting on the peak")
	}
}

func TestTransitionMatrix(t *testing.T) {
	s, net := newTestSampler(t)

	s.RecordTransition(5, 1)
	s.RecordTransition(5, 1)
	s.RecordTransition(5, 1)
	s.RecordTransition(5, -1)

	if got := s.TransitionsFrom(5); got != 4 {
		t.Fatalf("expected 4 transitions from 5, got %d", got)
	}
	if got := s.TransitionMatrix(6, 5); got != 0.75 {
		t.Fatalf("expected 0.75, got %f", got)
	}
	if got := s.TransitionMatrix(4, 5); got != 0.25 {
		t.Fatalf("expected 0.25, got %f", got)
	}

	// rows are sub-normalized: the in-range sum never exceeds one, and is
	// zero exactly when nothing was proposed from that energy
	for e := 0; e < net.EnergyRange(); e++ {
		sum := 0.0
		for de := -net.MaxFlip(); de <= net.MaxFlip(); de++ {
			to := e + de
			if to < 0 || to >= net.EnergyRange() {
				continue
			}
			sum += s.TransitionMatrix(network.EnergyIndex(to), network.EnergyIndex(e))
		}
		if sum > 1+1e-12 {
			t.Fatalf("row %d sums to %f", e, sum)
		}
		if s.TransitionsFrom(network.EnergyIndex(e)) == 0 && sum != 0 {
			t.Fatalf("row %d has no proposals but sums to %f", e, sum)
		}
	}

	// gaps beyond the single-flip bound carry no information
	if got := s.TransitionMatrix(10, 5); got != 0 {
		t.Fatalf("expected 0 beyond max flip, got %f", got)
	}
	if got := s.Transitions(5, net.MaxFlip()+1); got != 0 {
		t.Fatalf("expected 0 beyond max flip, got %d", got)
	}
}

func TestResetRezerosEverything(t *testing.T) {
	s, _ := newTestSampler(t)

	s.RecordEnergy(4)
	s.RecordTransition(4, 1)
	s.RecordSample(4, 5)
	s.RecordState(4)
	s.RecordDistances(4)
	s.lnDOS[4] = -1
	s.lnWeights[4] = 1

	s.Reset()
	if s.energyHist[4] != 0 || s.sampleHist[4] != 0 || s.TransitionsFrom(4) != 0 {
		t.Fatal("histograms not rezeroed")
	}
	if s.lnDOS[4] != 0 || s.lnWeights[4] != 0 {
		t.Fatal("log tables not rezeroed")
	}
	if s.visited[4] {
		t.Fatal("visit log not rezeroed")
	}
}

func TestRestoreAndExportRoundTrip(t *testing.T) {
	s, net := newTestSampler(t)

	s.Flip(0)
	s.Flip(2)
	e := net.Energy(s.State())
	s.RecordEnergy(e)
	s.RecordState(e)
	s.RecordDistances(e)
	s.RecordTransition(e, 2)
	s.RecordTransition(e, -2)
	s.RecordSample(e, s.EntropyPeak())

	tables := s.Tables()
	if len(tables.Energies) != 1 || tables.Energies[0].Count != 1 {
		t.Fatalf("unexpected energy table: %+v", tables.Energies)
	}
	if len(tables.Transitions) != 2 {
		t.Fatalf("expected 2 transition bins, got %d", len(tables.Transitions))
	}
	if len(tables.Weights) != net.EnergyRange() {
		t.Fatalf("weight table should cover the range, got %d", len(tables.Weights))
	}

	fresh, err := New(net, make([]bool, net.Nodes()), Options{})
	if err != nil {
		t.Fatalf("new sampler: %v", err)
	}
	if err := fresh.RestoreEnergyHistogram(tables.Energies); err != nil {
		t.Fatalf("restore energies: %v", err)
	}
	if err := fresh.RestoreTransitions(tables.Transitions); err != nil {
		t.Fatalf("restore transitions: %v", err)
	}
	if err := fresh.RestoreWeights(tables.Weights); err != nil {
		t.Fatalf("restore weights: %v", err)
	}
	if fresh.energyHist[e] != 1 {
		t.Fatalf("energy histogram not restored at %d", e)
	}
	if fresh.Transitions(e, 2) != 1 || fresh.Transitions(e, -2) != 1 {
		t.Fatal("transition histogram not restored")
	}
	if !fresh.fixedWeights {
		t.Fatal("restoring weights must enter fixed-weight mode")
	}
}

func TestRestoreRejectsOffGridEnergies(t *testing.T) {
	s, net := newTestSampler(t)

	bad := net.MaxEnergy() + 1 // off the scale-2 grid
	if err := s.RestoreEnergyHistogram([]model.EnergyBin{{Energy: bad, Count: 1}}); err == nil {
		t.Fatal("expected off-grid error")
	}
	if err := s.RestoreTransitions([]model.TransitionBin{{Energy: bad, Delta: 2, Count: 1}}); err == nil {
		t.Fatal("expected off-grid error")
	}
	if err := s.RestoreTransitions([]model.TransitionBin{{Energy: 0, Delta: 3, Count: 1}}); err == nil {
		t.Fatal("expected off-grid delta error")
	}
	tooBig := (net.MaxFlip() + 1) * net.EnergyScale()
	if err := s.RestoreTransitions([]model.TransitionBin{{Energy: 0, Delta: tooBig, Count: 1}}); err == nil {
		t.Fatal("expected out-of-bound delta error")
	}
}

func TestRestoreDOSMovesEntropyPeak(t *testing.T) {
	s, net := newTestSampler(t)

	bins := []model.DOSBin{
		{Energy: int(net.Actual(3)), LnDOS: -2},
		{Energy: int(net.Actual(7)), LnDOS: 0},
		{Energy: int(net.Actual(8)), LnDOS: -1},
	}
	if err := s.RestoreDOS(bins); err != nil {
		t.Fatalf("restore dos: %v", err)
	}
	if s.EntropyPeak() != 7 {
		t.Fatalf("entropy peak: got %d want 7", s.EntropyPeak())
	}
	if s.LnDOS(3) != -2 || s.LnDOS(8) != -1 {
		t.Fatal("dos values not restored")
	}
}

func TestRestoreSamplesFeedsErrorEstimate(t *testing.T) {
	s, net := newTestSampler(t)

	peak := int(net.Actual(s.EntropyPeak()))
	bins := []model.EnergyBin{{Energy: peak, Count: 16}}
	if err := s.RestoreSamples(bins); err != nil {
		t.Fatalf("restore samples: %v", err)
	}
	if got := s.FractionalSampleError(1); got != 0.25 {
		t.Fatalf("sample error: got %g want 0.25", got)
	}

	bad := net.MaxEnergy() + 1
	if err := s.RestoreSamples([]model.EnergyBin{{Energy: bad, Count: 1}}); err == nil {
		t.Fatal("expected off-grid error")
	}
}
