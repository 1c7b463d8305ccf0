package sampler

import (
	"math"

	"hopwalk/internal/network"
)

// ComputeWeightsFromDOS rebuilds the bias table so that future acceptance
// ratios flatten the walk over the observed energies and fall off like a
// fixed-temperature ensemble beyond them. temp > 0 focuses the walk on
// energies below the entropy peak, temp < 0 on energies above it.
//
// Walking away from the peak the weight at each level is minus the
// density of states, but its growth per level is capped; when a step
// would exceed the cap the excess is carried and subtracted from every
// weight farther out. The cap keeps an extrapolated density of states
// from driving the walk into energies that have never been observed.
// Beyond the sampled range the weights continue with the exact
// fixed-temperature slope.
func (s *Sampler) ComputeWeightsFromDOS(temp float64) {
	if temp == 0 {
		return
	}
	r := s.net.EnergyRange()
	peak := int(s.entropyPeak)
	maxStep := float64(r) / math.Abs(temp)

	if temp > 0 {
		lowest := peak
		for e := 0; e < r; e++ {
			if s.energyHist[e] != 0 {
				lowest = e
				break
			}
		}

		// flat infinite-temperature weights from the peak upward
		for e := peak; e < r; e++ {
			s.lnWeights[e] = -s.lnDOS[peak]
		}

		excess := 0.0
		for e := peak - 1; e >= lowest; e-- {
			want := -s.lnDOS[e] - excess
			if step := want - s.lnWeights[e+1]; step > maxStep {
				excess += step - maxStep
				want = s.lnWeights[e+1] + maxStep
			}
			s.lnWeights[e] = want
		}

		// below everything we have seen, extrapolate at the temperature
		for e := lowest - 1; e >= 0; e-- {
			s.lnWeights[e] = -s.lnDOS[lowest] + float64(lowest-e)/temp
		}
		return
	}

	highest := peak
	for e := r - 1; e >= 0; e-- {
		if s.energyHist[e] != 0 {
			highest = e
			break
		}
	}

	for e := peak; e >= 0; e-- {
		s.lnWeights[e] = -s.lnDOS[peak]
	}

	excess := 0.0
	for e := peak + 1; e <= highest; e++ {
		want := -s.lnDOS[e] - excess
		if step := want - s.lnWeights[e-1]; step > maxStep {
			excess += step - maxStep
			want = s.lnWeights[e-1] + maxStep
		}
		s.lnWeights[e] = want
	}

	for e := highest + 1; e < r; e++ {
		s.lnWeights[e] = -s.lnDOS[highest] - float64(e-highest)/temp
	}
}

// MoveProbability returns the raw acceptance ratio for a proposed move
// from energy e with quantized change de: the weight ratio under an
// adaptive walk, the Boltzmann factor under a fixed-temperature one.
// Values above 1 mean "always accept"; the caller clamps.
func (s *Sampler) MoveProbability(e network.EnergyIndex, de int, temp float64) float64 {
	if s.adaptive {
		return math.Exp(s.lnWeights[int(e)+de] - s.lnWeights[e])
	}
	return math.Exp(-float64(de) / temp)
}
