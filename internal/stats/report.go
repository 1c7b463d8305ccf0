package stats

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"hopwalk/internal/model"
)

// EnergyTable renders the observed energy bins of a run: physical energy,
// observation count, independent sample count, and the log-density-of-
// states estimate. Rows arrive highest energy first and render in order.
func EnergyTable(t model.RunTables) string {
	samples := make(map[int]int64, len(t.Samples))
	for _, bin := range t.Samples {
		samples[bin.Energy] = bin.Count
	}
	dos := make(map[int]float64, len(t.DOS))
	for _, bin := range t.DOS {
		dos[bin.Energy] = bin.LnDOS
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%8s %14s %12s %12s\n", "energy", "observed", "samples", "ln_dos")
	for _, bin := range t.Energies {
		fmt.Fprintf(&b, "%8d %14s %12s %12.7f\n",
			bin.Energy,
			humanize.Comma(bin.Count),
			humanize.Comma(samples[bin.Energy]),
			dos[bin.Energy])
	}
	return b.String()
}

// SpinTable renders the expected spin of every node at each observed
// energy, each value in [-1, 1].
func SpinTable(t model.RunTables) string {
	var b strings.Builder
	for _, bin := range t.Spins {
		fmt.Fprintf(&b, "%8d", bin.Energy)
		for _, spin := range bin.Spins {
			fmt.Fprintf(&b, " %10.7f", spin)
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}

// DistanceTable renders the expected Hamming distance from every stored
// pattern at each observed energy.
func DistanceTable(t model.RunTables) string {
	var b strings.Builder
	for _, bin := range t.Distances {
		fmt.Fprintf(&b, "%8d", bin.Energy)
		for _, distance := range bin.Distances {
			fmt.Fprintf(&b, " %10.4f", distance)
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}

// RunLine renders one run for listings.
func RunLine(id, createdAt string, temp float64, steps int64, fixed bool) string {
	mode := "adaptive"
	if fixed {
		mode = "fixed"
	}
	return fmt.Sprintf("%s  %s  temp=%g  steps=%s  mode=%s",
		id, createdAt, temp, humanize.Comma(steps), mode)
}
