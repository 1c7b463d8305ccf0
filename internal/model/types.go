package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord describes one random-walk simulation over a single network.
type RunRecord struct {
	VersionedRecord
	ID               string   `json:"id"`
	Patterns         [][]bool `json:"patterns"`
	Temp             float64  `json:"temp"`
	Steps            int64    `json:"steps"`
	RefineEvery      int64    `json:"refine_every"`
	Seed             int64    `json:"seed"`
	FixedTemperature bool     `json:"fixed_temperature"`
	ResumedFrom      string   `json:"resumed_from,omitempty"`
	CreatedAtUTC     string   `json:"created_at_utc"`
}

// EnergyBin is one row of an energy-keyed count table. Energy is the
// physical (unscaled) energy, not the quantized index.
type EnergyBin struct {
	Energy int   `json:"energy"`
	Count  int64 `json:"count"`
}

// TransitionBin counts proposed moves from Energy with the physical
// energy change Delta, accepted or not.
type TransitionBin struct {
	Energy int   `json:"energy"`
	Delta  int   `json:"delta"`
	Count  int64 `json:"count"`
}

// WeightBin carries the log-bias applied at a physical energy.
type WeightBin struct {
	Energy   int     `json:"energy"`
	LnWeight float64 `json:"ln_weight"`
}

// DOSBin carries the log-density-of-states estimate at a physical energy,
// normalized so the maximum over all bins is zero.
type DOSBin struct {
	Energy int     `json:"energy"`
	LnDOS  float64 `json:"ln_dos"`
}

// SpinBin holds the expected spin of every node at a physical energy,
// each value in [-1, 1].
type SpinBin struct {
	Energy int       `json:"energy"`
	Spins  []float64 `json:"spins"`
}

// DistanceBin holds the expected Hamming distance from every stored
// pattern at a physical energy.
type DistanceBin struct {
	Energy    int       `json:"energy"`
	Distances []float64 `json:"distances"`
}

// RunTables bundles every persisted table of a run, keyed by physical
// energy so records survive requantization across runs.
type RunTables struct {
	VersionedRecord
	RunID       string          `json:"run_id"`
	EntropyPeak int             `json:"entropy_peak"`
	Energies    []EnergyBin     `json:"energies"`
	Samples     []EnergyBin     `json:"samples"`
	Transitions []TransitionBin `json:"transitions"`
	Weights     []WeightBin     `json:"weights"`
	DOS         []DOSBin        `json:"dos"`
	Spins       []SpinBin       `json:"spins"`
	Distances   []DistanceBin   `json:"distances"`
}
