package sampler

import (
	"math"

	"hopwalk/internal/network"
)

// ComputeDOSFromTransitions reconstructs the log-density-of-states from
// the transition counts alone. Sweeping energies upward, each level first
// inherits its neighbor's value, then is corrected by the flux-balance
// condition: in equilibrium the probability flux up into a level must
// match the flux back down out of it. Levels with too few observations to
// trust their local transition statistics keep the inherited value. The
// result is normalized so its maximum is exactly zero, and the position of
// that maximum becomes the new entropy peak.
func (s *Sampler) ComputeDOSFromTransitions() {
	r := s.net.EnergyRange()
	mf := s.net.MaxFlip()

	s.lnDOS[0] = 0
	maxLnDOS := 0.0
	peak := 0

	for e := 1; e < r; e++ {
		s.lnDOS[e] = s.lnDOS[e-1]

		if s.energyHist[e] < int64(mf) {
			continue
		}

		lo := e - mf
		if lo < 0 {
			lo = 0
		}
		var fluxUp, fluxDown float64
		for ee := lo; ee < e; ee++ {
			fluxUp += math.Exp(s.lnDOS[ee]-s.lnDOS[e]) *
				s.TransitionMatrix(network.EnergyIndex(e), network.EnergyIndex(ee))
			fluxDown += s.TransitionMatrix(network.EnergyIndex(ee), network.EnergyIndex(e))
		}
		if fluxUp > 0 && fluxDown > 0 {
			s.lnDOS[e] += math.Log(fluxUp / fluxDown)
		}

		if s.lnDOS[e] > maxLnDOS {
			maxLnDOS = s.lnDOS[e]
			peak = e
		}
	}

	s.entropyPeak = network.EnergyIndex(peak)
	for e := range s.lnDOS {
		s.lnDOS[e] -= maxLnDOS
	}
}

// ComputeDOSFromEnergyHistogram inverts a known sampling bias directly:
// ln g(e) = ln h(e) - ln w(e). It only applies when the weight table was
// restored from a prior run; under a plain fixed-temperature walk there is
// no bias to invert and the call does nothing. Empty bins inherit the
// previous bin's value.
func (s *Sampler) ComputeDOSFromEnergyHistogram() {
	if !s.fixedWeights {
		return
	}

	first := -1
	for e := range s.energyHist {
		if s.energyHist[e] != 0 {
			first = e
			break
		}
	}
	if first < 0 {
		return
	}

	maxLnDOS := math.Inf(-1)
	peak := first
	last := math.Log(float64(s.energyHist[first])) - s.lnWeights[first]
	for e := range s.lnDOS {
		if e < first || s.energyHist[e] == 0 {
			s.lnDOS[e] = last
			continue
		}
		s.lnDOS[e] = math.Log(float64(s.energyHist[e])) - s.lnWeights[e]
		last = s.lnDOS[e]
		if s.lnDOS[e] > maxLnDOS {
			maxLnDOS = s.lnDOS[e]
			peak = e
		}
	}

	s.entropyPeak = network.EnergyIndex(peak)
	for e := range s.lnDOS {
		s.lnDOS[e] -= maxLnDOS
	}
}

// LnDOS returns the current log-density-of-states estimate at e.
func (s *Sampler) LnDOS(e network.EnergyIndex) float64 { return s.lnDOS[e] }

// LnWeight returns the log-bias applied at e.
func (s *Sampler) LnWeight(e network.EnergyIndex) float64 { return s.lnWeights[e] }
