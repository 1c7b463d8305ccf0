package sampler

import (
	"fmt"

	"hopwalk/internal/network"
)

// Sampler owns the mutable walker state and every energy-indexed table of
// one simulation run: the energy, transition, per-node and per-pattern
// histograms, the independent-sample bookkeeping, the bias weights and the
// density-of-states estimate. It is single-owner and carries no locks; one
// driving loop mutates it between refinements.
type Sampler struct {
	net *network.Network

	state []bool

	energyHist  []int64
	transitions [][]int64 // [energy][de + maxFlip], proposals from energy
	visited     []bool    // energies seen since the last peak crossing
	sampleHist  []int64   // independent visits per energy
	stateHist   [][]int64 // [energy][node], sum of set bits
	distHist    [][]int64 // [energy][pattern], sum of Hamming distances

	lnWeights []float64
	lnDOS     []float64

	entropyPeak network.EnergyIndex

	adaptive     bool
	fixedWeights bool // weight table restored from a prior run
}

type Options struct {
	// FixedTemperature runs a plain Boltzmann walk: the weight table stays
	// zero and acceptance depends on the temperature alone.
	FixedTemperature bool
}

// New builds a sampler for one network with an initial configuration. All
// tables are allocated and zeroed once; they are never resized afterward.
func New(net *network.Network, initial []bool, opts Options) (*Sampler, error) {
	if len(initial) != net.Nodes() {
		return nil, fmt.Errorf("initial state has %d nodes, network has %d",
			len(initial), net.Nodes())
	}
	s := &Sampler{
		net:      net,
		state:    append([]bool(nil), initial...),
		adaptive: !opts.FixedTemperature,
	}
	s.Reset()
	return s, nil
}

// Reset rezeros every histogram, the visit log, and both log tables, and
// recenters the entropy peak.
func (s *Sampler) Reset() {
	r := s.net.EnergyRange()
	width := 2*s.net.MaxFlip() + 1

	s.energyHist = make([]int64, r)
	s.sampleHist = make([]int64, r)
	s.visited = make([]bool, r)
	s.transitions = make([][]int64, r)
	s.stateHist = make([][]int64, r)
	s.distHist = make([][]int64, r)
	for e := 0; e < r; e++ {
		s.transitions[e] = make([]int64, width)
		s.stateHist[e] = make([]int64, s.net.Nodes())
		s.distHist[e] = make([]int64, len(s.net.Patterns()))
	}
	s.lnWeights = make([]float64, r)
	s.lnDOS = make([]float64, r)
	s.entropyPeak = network.EnergyIndex(s.net.MaxEnergy() / s.net.EnergyScale())
	s.fixedWeights = false
}

// State returns the live configuration. The driving loop reads it to
// propose flips; nothing else may retain or mutate it.
func (s *Sampler) State() []bool { return s.state }

// Flip toggles one node of the configuration. Called by the driving loop
// on accepted moves only.
func (s *Sampler) Flip(node int) { s.state[node] = !s.state[node] }

// EntropyPeak is the energy index currently believed to maximize the
// density of states.
func (s *Sampler) EntropyPeak() network.EnergyIndex { return s.entropyPeak }

// Adaptive reports whether acceptance follows the bias weights rather
// than a fixed temperature.
func (s *Sampler) Adaptive() bool { return s.adaptive }

// FixedWeights reports whether the bias table was restored from a prior
// run. A restored bias must stay frozen for the walk's histogram to be
// invertible against it.
func (s *Sampler) FixedWeights() bool { return s.fixedWeights }

// RecordEnergy counts one accepted step observed at energy e.
func (s *Sampler) RecordEnergy(e network.EnergyIndex) {
	s.energyHist[e]++
}

// RecordState accumulates the current configuration into the per-node
// sums at e.
func (s *Sampler) RecordState(e network.EnergyIndex) {
	row := s.stateHist[e]
	for i, bit := range s.state {
		if bit {
			row[i]++
		}
	}
}

// RecordDistances accumulates the Hamming distance from every stored
// pattern at e.
func (s *Sampler) RecordDistances(e network.EnergyIndex) {
	row := s.distHist[e]
	for p, pattern := range s.net.Patterns() {
		row[p] += int64(network.Hamming(s.state, pattern))
	}
}

// RecordTransition counts one proposed move from e with quantized change
// de, whether or not the move was accepted.
func (s *Sampler) RecordTransition(e network.EnergyIndex, de int) {
	s.transitions[e][de+s.net.MaxFlip()]++
}

// RecordSample maintains the independent-sample counts. A visit to an
// energy counts as independent only if the walker has crossed the entropy
// peak since its last visit there. Landing on the peak clears the whole
// visit log; sweeping from one side of the peak to the other clears the
// side being left.
func (s *Sampler) RecordSample(newE, oldE network.EnergyIndex) {
	if !s.visited[newE] {
		s.visited[newE] = true
		s.sampleHist[newE]++
	}

	if newE == s.entropyPeak {
		if oldE == s.entropyPeak {
			// everything else is already unvisited since the arrival step
			s.visited[newE] = false
		} else {
			for e := range s.visited {
				s.visited[e] = false
			}
		}
		return
	}

	aboveNow := newE > s.entropyPeak
	aboveBefore := oldE > s.entropyPeak
	if aboveNow == aboveBefore || oldE == s.entropyPeak {
		return
	}
	if aboveNow {
		for e := 0; e < int(s.entropyPeak); e++ {
			s.visited[e] = false
		}
	} else {
		for e := int(s.entropyPeak) + 1; e < len(s.visited); e++ {
			s.visited[e] = false
		}
	}
}

// Transitions returns the number of proposals from e with quantized
// change de.
func (s *Sampler) Transitions(e network.EnergyIndex, de int) int64 {
	mf := s.net.MaxFlip()
	if de < -mf || de > mf {
		return 0
	}
	return s.transitions[e][de+mf]
}

// TransitionsFrom returns the number of proposals ever made from e.
func (s *Sampler) TransitionsFrom(e network.EnergyIndex) int64 {
	var sum int64
	for _, count := range s.transitions[e] {
		sum += count
	}
	return sum
}

// TransitionMatrix returns the empirical probability that a proposal from
// one energy lands at another. It is exactly zero when the gap exceeds
// the largest single-flip change or when nothing was ever proposed from
// the source energy; callers treat zero as "no information".
func (s *Sampler) TransitionMatrix(to, from network.EnergyIndex) float64 {
	de := int(to) - int(from)
	mf := s.net.MaxFlip()
	if de < -mf || de > mf {
		return 0
	}
	total := s.TransitionsFrom(from)
	if total == 0 {
		return 0
	}
	return float64(s.transitions[from][de+mf]) / float64(total)
}
