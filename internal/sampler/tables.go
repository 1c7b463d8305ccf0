package sampler

import (
	"fmt"
	"math"

	"hopwalk/internal/model"
	"hopwalk/internal/network"
)

// RestoreEnergyHistogram repopulates the energy histogram from
// physical-energy-keyed counts parsed out of a prior run.
func (s *Sampler) RestoreEnergyHistogram(bins []model.EnergyBin) error {
	for _, bin := range bins {
		e, err := s.net.Index(network.PhysicalEnergy(bin.Energy))
		if err != nil {
			return fmt.Errorf("energy histogram: %w", err)
		}
		s.energyHist[e] = bin.Count
	}
	return nil
}

// RestoreTransitions repopulates the transition histogram. Deltas are
// physical energy changes and must sit on the quantization grid within
// the single-flip bound.
func (s *Sampler) RestoreTransitions(bins []model.TransitionBin) error {
	scale := s.net.EnergyScale()
	mf := s.net.MaxFlip()
	for _, bin := range bins {
		e, err := s.net.Index(network.PhysicalEnergy(bin.Energy))
		if err != nil {
			return fmt.Errorf("transition histogram: %w", err)
		}
		if bin.Delta%scale != 0 {
			return fmt.Errorf("transition histogram: delta %d is off the quantization grid (scale %d)",
				bin.Delta, scale)
		}
		de := bin.Delta / scale
		if de < -mf || de > mf {
			return fmt.Errorf("transition histogram: delta %d outside single-flip bound %d",
				bin.Delta, mf*scale)
		}
		s.transitions[e][de+mf] = bin.Count
	}
	return nil
}

// RestoreWeights installs a bias table from a prior run and switches the
// sampler into fixed-weight mode, which enables the direct histogram
// density-of-states estimator.
func (s *Sampler) RestoreWeights(bins []model.WeightBin) error {
	for _, bin := range bins {
		e, err := s.net.Index(network.PhysicalEnergy(bin.Energy))
		if err != nil {
			return fmt.Errorf("weights: %w", err)
		}
		s.lnWeights[e] = bin.LnWeight
	}
	s.fixedWeights = true
	return nil
}

// RestoreSamples repopulates the independent sample counts from a prior
// run's export.
func (s *Sampler) RestoreSamples(bins []model.EnergyBin) error {
	for _, bin := range bins {
		e, err := s.net.Index(network.PhysicalEnergy(bin.Energy))
		if err != nil {
			return fmt.Errorf("sample histogram: %w", err)
		}
		s.sampleHist[e] = bin.Count
	}
	return nil
}

// RestoreDOS installs a log density-of-states table from a prior run and
// moves the entropy peak to the maximum over the restored bins. Bins the
// table never mentions keep their zero value and cannot claim the peak.
// Ties go to the lower energy index, matching the estimators.
func (s *Sampler) RestoreDOS(bins []model.DOSBin) error {
	peak := network.EnergyIndex(0)
	best := math.Inf(-1)
	restored := false
	for _, bin := range bins {
		e, err := s.net.Index(network.PhysicalEnergy(bin.Energy))
		if err != nil {
			return fmt.Errorf("density of states: %w", err)
		}
		s.lnDOS[e] = bin.LnDOS
		if bin.LnDOS > best || (bin.LnDOS == best && e < peak) {
			peak = e
			best = bin.LnDOS
		}
		restored = true
	}
	if restored {
		s.entropyPeak = peak
	}
	return nil
}

// Tables exports every table keyed by physical energy, highest energy
// first, for external serialization. Count tables list observed bins
// only; the weight and density tables cover the whole range.
func (s *Sampler) Tables() model.RunTables {
	r := s.net.EnergyRange()
	t := model.RunTables{
		EntropyPeak: int(s.net.Actual(s.entropyPeak)),
	}
	for e := r - 1; e >= 0; e-- {
		idx := network.EnergyIndex(e)
		actual := int(s.net.Actual(idx))

		t.Weights = append(t.Weights, model.WeightBin{Energy: actual, LnWeight: s.lnWeights[e]})
		t.DOS = append(t.DOS, model.DOSBin{Energy: actual, LnDOS: s.lnDOS[e]})
		if s.sampleHist[e] != 0 {
			t.Samples = append(t.Samples, model.EnergyBin{Energy: actual, Count: s.sampleHist[e]})
		}

		mf := s.net.MaxFlip()
		for de := -mf; de <= mf; de++ {
			if count := s.transitions[e][de+mf]; count != 0 {
				t.Transitions = append(t.Transitions, model.TransitionBin{
					Energy: actual,
					Delta:  de * s.net.EnergyScale(),
					Count:  count,
				})
			}
		}

		observations := s.energyHist[e]
		if observations == 0 {
			continue
		}
		t.Energies = append(t.Energies, model.EnergyBin{Energy: actual, Count: observations})

		spins := make([]float64, s.net.Nodes())
		for i, sum := range s.stateHist[e] {
			spins[i] = 2*float64(sum)/float64(observations) - 1
		}
		t.Spins = append(t.Spins, model.SpinBin{Energy: actual, Spins: spins})

		if patterns := len(s.net.Patterns()); patterns > 0 {
			distances := make([]float64, patterns)
			for p, sum := range s.distHist[e] {
				distances[p] = float64(sum) / float64(observations)
			}
			t.Distances = append(t.Distances, model.DistanceBin{Energy: actual, Distances: distances})
		}
	}
	return t
}
