package sampler

import "math"

// FractionalSampleError estimates the expected relative statistical error
// of a Boltzmann-weighted expectation value at temp, from the independent
// sample counts between the entropy peak and the farthest independently
// sampled energy in the direction temp points. Energies and log-densities
// are offset by their values at the window midpoint before exponentiating;
// the offsets cancel in the final ratio. Assumes the density of states is
// up to date. Returns 2 ("no data") when no term contributes.
func (s *Sampler) FractionalSampleError(temp float64) float64 {
	if temp == 0 {
		return 2
	}

	r := s.net.EnergyRange()
	peak := int(s.entropyPeak)
	far := peak
	if temp > 0 {
		for e := 0; e <= peak; e++ {
			if s.sampleHist[e] != 0 {
				far = e
				break
			}
		}
	} else {
		for e := r - 1; e >= peak; e-- {
			if s.sampleHist[e] != 0 {
				far = e
				break
			}
		}
	}

	lo, hi := peak, far
	if far < peak {
		lo, hi = far, peak
	}
	mid := (lo + hi) / 2
	refDOS := s.lnDOS[mid]

	var errSum, norm float64
	for e := lo; e <= hi; e++ {
		if s.sampleHist[e] == 0 {
			continue
		}
		boltzmann := math.Exp(s.lnDOS[e] - refDOS - float64(e-mid)/temp)
		errSum += boltzmann / math.Sqrt(float64(s.sampleHist[e]))
		norm += boltzmann
	}
	if norm == 0 {
		return 2
	}
	return errSum / norm
}
