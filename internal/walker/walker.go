package walker

import (
	"context"
	"errors"

	"hopwalk/internal/network"
	"hopwalk/internal/sampler"
)

var ErrNotConfigured = errors.New("walker needs a network, a sampler, and a random source")

// Source yields uniform draws on [0,1). *rand.Rand satisfies it. The
// walker consumes draws on demand and never seeds or owns the generator.
type Source interface {
	Float64() float64
}

// Walker drives one random walk over a network: it proposes single-node
// flips, applies the sampler's acceptance rule, and reports every outcome
// back into the sampler's bookkeeping hooks.
type Walker struct {
	Net     *network.Network
	Sampler *sampler.Sampler
	Rand    Source

	// Temp is the acceptance temperature of a fixed-temperature walk and
	// the weight-capping temperature of an adaptive one.
	Temp float64

	// RefineEvery is the number of steps between density-of-states and
	// weight refinements; zero disables periodic refinement.
	RefineEvery int64

	Steps    int64
	Accepted int64

	current network.EnergyIndex
	started bool
}

// RandomState draws a uniformly random configuration.
func RandomState(nodes int, src Source) []bool {
	state := make([]bool, nodes)
	for i := range state {
		state[i] = src.Float64() < 0.5
	}
	return state
}

// Current is the quantized energy of the walker's configuration.
func (w *Walker) Current() network.EnergyIndex {
	if !w.started {
		w.current = w.Net.Energy(w.Sampler.State())
		w.started = true
	}
	return w.current
}

// Step proposes one single-node flip and applies the sampler's acceptance
// rule. Every proposal lands in the transition histogram; only accepted
// moves touch the configuration and the remaining histograms. Returns
// true when the move was accepted.
func (w *Walker) Step() bool {
	current := w.Current()
	node := int(w.Rand.Float64() * float64(w.Net.Nodes()))
	de := w.Net.FlipDelta(w.Sampler.State(), node)

	prob := w.Sampler.MoveProbability(current, de, w.Temp)
	w.Sampler.RecordTransition(current, de)
	w.Steps++

	if prob < 1 && w.Rand.Float64() >= prob {
		return false
	}

	w.Sampler.Flip(node)
	// the flip delta is exact, so the new index needs no recomputation
	w.current = current + network.EnergyIndex(de)
	w.Accepted++

	w.Sampler.RecordEnergy(w.current)
	w.Sampler.RecordState(w.current)
	w.Sampler.RecordDistances(w.current)
	w.Sampler.RecordSample(w.current, current)
	return true
}

// Run advances the walk a fixed number of steps, refining the density of
// states and the bias weights periodically. The context is only checked
// between steps, so cancellation never leaves the histograms torn.
func (w *Walker) Run(ctx context.Context, steps int64) error {
	if w.Net == nil || w.Sampler == nil || w.Rand == nil {
		return ErrNotConfigured
	}
	for i := int64(0); i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.Step()
		if w.RefineEvery > 0 && (i+1)%w.RefineEvery == 0 && w.Sampler.Adaptive() && !w.Sampler.FixedWeights() {
			w.Sampler.ComputeDOSFromTransitions()
			w.Sampler.ComputeWeightsFromDOS(w.Temp)
		}
	}
	return nil
}
