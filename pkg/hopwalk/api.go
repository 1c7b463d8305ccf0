// Package hopwalk estimates the density of states of a Hopfield network
// by an adaptive Monte Carlo random walk, and persists the resulting
// histograms and bias weights between runs.
package hopwalk

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"hopwalk/internal/model"
	"hopwalk/internal/network"
	"hopwalk/internal/sampler"
	"hopwalk/internal/stats"
	"hopwalk/internal/storage"
	"hopwalk/internal/walker"
)

const (
	defaultDBPath      = "hopwalk.db"
	defaultSteps       = 1_000_000
	defaultRefineEvery = 100_000
	defaultTemp        = 1.0
)

var ErrRunNotFound = errors.New("run not found")

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store storage.Store
}

type RunRequest struct {
	RunID    string
	Patterns [][]bool

	// Temp focuses the walk: positive temperatures favor energies below
	// the entropy peak, negative ones above it.
	Temp        float64
	Steps       int64
	RefineEvery int64
	Seed        int64

	// FixedTemperature disables the adaptive bias and runs a plain
	// Boltzmann walk at Temp.
	FixedTemperature bool

	// ResumeFrom seeds the histograms and weights from a stored run.
	ResumeFrom string
}

type RunSummary struct {
	RunID       string
	Steps       int64
	Accepted    int64
	EntropyPeak int
	SampleError float64
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Temp             float64
	Steps            int64
	FixedTemperature bool
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Run builds a network from the request's patterns, walks it, refines the
// density of states, and persists the run record with all of its tables.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Steps <= 0 {
		req.Steps = defaultSteps
	}
	if req.RefineEvery <= 0 {
		req.RefineEvery = defaultRefineEvery
	}
	if req.Temp == 0 {
		req.Temp = defaultTemp
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}

	net, err := network.Build(req.Patterns)
	if err != nil {
		return RunSummary{}, fmt.Errorf("build network: %w", err)
	}

	rng := rand.New(rand.NewSource(req.Seed))
	state := walker.RandomState(net.Nodes(), rng)
	s, err := sampler.New(net, state, sampler.Options{FixedTemperature: req.FixedTemperature})
	if err != nil {
		return RunSummary{}, err
	}

	resumed := false
	if req.ResumeFrom != "" {
		tables, ok, err := c.store.GetTables(ctx, req.ResumeFrom)
		if err != nil {
			return RunSummary{}, fmt.Errorf("load tables %s: %w", req.ResumeFrom, err)
		}
		if !ok {
			return RunSummary{}, fmt.Errorf("%w: %s", ErrRunNotFound, req.ResumeFrom)
		}
		if err := s.RestoreEnergyHistogram(tables.Energies); err != nil {
			return RunSummary{}, fmt.Errorf("resume %s: %w", req.ResumeFrom, err)
		}
		if err := s.RestoreTransitions(tables.Transitions); err != nil {
			return RunSummary{}, fmt.Errorf("resume %s: %w", req.ResumeFrom, err)
		}
		if err := s.RestoreWeights(tables.Weights); err != nil {
			return RunSummary{}, fmt.Errorf("resume %s: %w", req.ResumeFrom, err)
		}
		resumed = true
	}

	w := &walker.Walker{
		Net:         net,
		Sampler:     s,
		Rand:        rng,
		Temp:        req.Temp,
		RefineEvery: req.RefineEvery,
	}
	if err := w.Run(ctx, req.Steps); err != nil {
		return RunSummary{}, err
	}

	// final density-of-states pass: invert the restored bias directly
	// when one exists, otherwise rebuild from the transition counts
	if resumed {
		s.ComputeDOSFromEnergyHistogram()
	} else {
		s.ComputeDOSFromTransitions()
	}

	summary := RunSummary{
		RunID:       req.RunID,
		Steps:       w.Steps,
		Accepted:    w.Accepted,
		EntropyPeak: int(net.Actual(s.EntropyPeak())),
		SampleError: s.FractionalSampleError(req.Temp),
	}

	record := model.RunRecord{
		VersionedRecord:  storage.Stamp(),
		ID:               req.RunID,
		Patterns:         req.Patterns,
		Temp:             req.Temp,
		Steps:            w.Steps,
		RefineEvery:      req.RefineEvery,
		Seed:             req.Seed,
		FixedTemperature: req.FixedTemperature,
		ResumedFrom:      req.ResumeFrom,
		CreatedAtUTC:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, fmt.Errorf("save run: %w", err)
	}

	tables := s.Tables()
	tables.VersionedRecord = storage.Stamp()
	tables.RunID = req.RunID
	if err := c.store.SaveTables(ctx, tables); err != nil {
		return RunSummary{}, fmt.Errorf("save tables: %w", err)
	}
	return summary, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	runs, err := c.store.ListRuns(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	items := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		items = append(items, RunItem{
			RunID:            run.ID,
			CreatedAtUTC:     run.CreatedAtUTC,
			Temp:             run.Temp,
			Steps:            run.Steps,
			FixedTemperature: run.FixedTemperature,
		})
	}
	return items, nil
}

// SampleError recomputes the expected fractional error of a stored run's
// Boltzmann averages at temp. Zero temp falls back to the run's own
// temperature.
func (c *Client) SampleError(ctx context.Context, runID string, temp float64) (float64, error) {
	record, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	tables, err := c.Tables(ctx, runID)
	if err != nil {
		return 0, err
	}
	if temp == 0 {
		temp = record.Temp
	}

	net, err := network.Build(record.Patterns)
	if err != nil {
		return 0, fmt.Errorf("build network: %w", err)
	}
	s, err := sampler.New(net, make([]bool, net.Nodes()), sampler.Options{})
	if err != nil {
		return 0, err
	}
	if err := s.RestoreSamples(tables.Samples); err != nil {
		return 0, err
	}
	if err := s.RestoreDOS(tables.DOS); err != nil {
		return 0, err
	}
	return s.FractionalSampleError(temp), nil
}

// Tables returns a stored run's energy-keyed tables.
func (c *Client) Tables(ctx context.Context, runID string) (model.RunTables, error) {
	tables, ok, err := c.store.GetTables(ctx, runID)
	if err != nil {
		return model.RunTables{}, err
	}
	if !ok {
		return model.RunTables{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return tables, nil
}

// Report renders one of a stored run's tables for display. An empty table
// name renders the energy table.
func (c *Client) Report(ctx context.Context, runID, table string) (string, error) {
	tables, err := c.Tables(ctx, runID)
	if err != nil {
		return "", err
	}
	switch table {
	case "", "energy":
		return stats.EnergyTable(tables), nil
	case "spins":
		return stats.SpinTable(tables), nil
	case "distances":
		return stats.DistanceTable(tables), nil
	default:
		return "", fmt.Errorf("unknown table: %s", table)
	}
}
