package network

import (
	"errors"
	"fmt"
)

var (
	ErrNoPatterns    = errors.New("pattern set is empty")
	ErrNoNodes       = errors.New("patterns have no nodes")
	ErrPatternLength = errors.New("patterns have mismatched lengths")
)

// EnergyIndex is a quantized, shifted energy: the row index into every
// energy-keyed table. Valid values lie in [0, EnergyRange).
type EnergyIndex int

// PhysicalEnergy is an unscaled Hopfield energy. An EnergyIndex maps back
// to it as index*scale - maxEnergy.
type PhysicalEnergy int

// Network is a Hopfield network derived from a set of binary patterns.
// The coupling matrix and all bounds are fixed at construction.
type Network struct {
	nodes    int
	patterns [][]bool

	// couplings[i][j] is the signed count of pattern agreements between
	// nodes i and j, a factor of nodes greater than the usual definition.
	couplings [][]int

	energyScale int
	maxEnergy   int // raw units, nudged so quantization divides exactly
	maxFlip     int // quantized bound on any single-flip energy change
}

// Build derives the coupling matrix and energy bounds from a pattern set.
func Build(patterns [][]bool) (*Network, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}
	nodes := len(patterns[0])
	if nodes == 0 {
		return nil, ErrNoNodes
	}
	for i, p := range patterns {
		if len(p) != nodes {
			return nil, fmt.Errorf("%w: pattern %d has %d nodes, want %d",
				ErrPatternLength, i, len(p), nodes)
		}
	}

	n := &Network{
		nodes:    nodes,
		patterns: make([][]bool, len(patterns)),
	}
	for i, p := range patterns {
		n.patterns[i] = append([]bool(nil), p...)
	}

	n.couplings = make([][]int, nodes)
	for i := range n.couplings {
		n.couplings[i] = make([]int, nodes)
	}
	for i := 0; i < nodes; i++ {
		for j := i + 1; j < nodes; j++ {
			c := 0
			for _, p := range n.patterns {
				if p[i] == p[j] {
					c++
				} else {
					c--
				}
			}
			n.couplings[i][j] = c
			n.couplings[j][i] = c
		}
	}

	// quantization scale: gcd of the doubled coupling magnitudes, taken
	// row by row and then across rows
	scale := 0
	maxFlipRaw := 0
	for i := 0; i < nodes; i++ {
		rowGCD := 0
		rowSum := 0
		for j := 0; j < nodes; j++ {
			doubled := 2 * abs(n.couplings[i][j])
			rowGCD = gcd(rowGCD, doubled)
			rowSum += doubled
		}
		scale = gcd(scale, rowGCD)
		if rowSum > maxFlipRaw {
			maxFlipRaw = rowSum
		}
	}
	if scale == 0 {
		scale = 1
	}

	maxEnergy := 0
	refSum := 0 // coupling sum for the all-true state
	for i := 0; i < nodes; i++ {
		for j := i + 1; j < nodes; j++ {
			maxEnergy += abs(n.couplings[i][j])
			refSum += n.couplings[i][j]
		}
	}
	// every single flip changes the energy by a multiple of the scale, so
	// all reachable states share one residue; nudge maxEnergy up until
	// the shifted energy of a reference state divides exactly
	if r := mod(maxEnergy-refSum, scale); r != 0 {
		maxEnergy += scale - r
	}

	n.energyScale = scale
	n.maxEnergy = maxEnergy
	n.maxFlip = maxFlipRaw / scale
	return n, nil
}

func (n *Network) Nodes() int       { return n.nodes }
func (n *Network) EnergyScale() int { return n.energyScale }
func (n *Network) MaxEnergy() int   { return n.maxEnergy }

// MaxFlip is the largest quantized energy change any single-node flip can
// produce; transition tables are 2*MaxFlip+1 wide.
func (n *Network) MaxFlip() int { return n.maxFlip }

// EnergyRange is the number of distinct quantized energy indices.
func (n *Network) EnergyRange() int { return 2*n.maxEnergy/n.energyScale + 1 }

// Patterns returns the stored pattern set. Callers must not mutate it.
func (n *Network) Patterns() [][]bool { return n.patterns }

// Coupling returns the interaction strength between two nodes.
func (n *Network) Coupling(i, j int) int { return n.couplings[i][j] }

// Energy returns the quantized, shifted energy index of a state. The
// shifted energy always divides exactly by the scale; a remainder means a
// construction invariant was violated, so it panics.
func (n *Network) Energy(state []bool) EnergyIndex {
	sum := 0
	for i := 0; i < n.nodes; i++ {
		si := spin(state[i])
		row := n.couplings[i]
		for j := i + 1; j < n.nodes; j++ {
			sum += row[j] * si * spin(state[j])
		}
	}
	shifted := n.maxEnergy - sum
	if shifted%n.energyScale != 0 {
		panic(fmt.Sprintf("network: shifted energy %d does not divide by scale %d",
			shifted, n.energyScale))
	}
	return EnergyIndex(shifted / n.energyScale)
}

// FlipDelta returns the quantized energy change from flipping one node,
// computed in O(nodes) from the node's coupling row. It equals
// Energy(flipped) - Energy(state) exactly for every reachable state.
func (n *Network) FlipDelta(state []bool, node int) int {
	sum := 0
	row := n.couplings[node]
	for j := 0; j < n.nodes; j++ {
		if j == node {
			continue
		}
		sum += row[j] * spin(state[j])
	}
	return 2 * spin(state[node]) * sum / n.energyScale
}

// Actual maps a quantized index back to the physical energy.
func (n *Network) Actual(e EnergyIndex) PhysicalEnergy {
	return PhysicalEnergy(int(e)*n.energyScale - n.maxEnergy)
}

// Index is the checked inverse of Actual, used when repopulating tables
// from a prior run.
func (n *Network) Index(e PhysicalEnergy) (EnergyIndex, error) {
	shifted := int(e) + n.maxEnergy
	if shifted%n.energyScale != 0 {
		return 0, fmt.Errorf("energy %d is off the quantization grid (scale %d)",
			e, n.energyScale)
	}
	return NewEnergyIndex(n, shifted/n.energyScale)
}

// NewEnergyIndex validates a raw index against the network's energy range.
func NewEnergyIndex(n *Network, i int) (EnergyIndex, error) {
	if i < 0 || i >= n.EnergyRange() {
		return 0, fmt.Errorf("energy index %d outside [0, %d)", i, n.EnergyRange())
	}
	return EnergyIndex(i), nil
}

// Hamming counts the positions where two equal-length states disagree.
func Hamming(a, b []bool) int {
	d := 0
	for i := range a {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

func spin(b bool) int {
	if b {
		return 1
	}
	return -1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func gcd(a, b int) int {
	if b == 0 {
		return a
	}
	return gcd(b, a%b)
}

func mod(x, m int) int {
	return ((x % m) + m) % m
}
