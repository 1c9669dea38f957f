// Package worker executes a single simulation job: it seeds the engine with
// any preequilibration result, applies the condition's variable overrides,
// runs to the condition's stop time and persists the packaged output.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cellrun/cellrun/engine"
	"github.com/cellrun/cellrun/model/job"
	"github.com/cellrun/cellrun/model/table"
	"github.com/cellrun/cellrun/service/results"
)

// Config holds per-run simulation parameters.
type Config struct {
	// Start is the simulation start time.
	Start float64

	// ReportingStep is the fixed step between reported rows.
	ReportingStep float64
}

// DefaultConfig matches the engine's default reporting cadence.
func DefaultConfig() Config {
	return Config{Start: 0, ReportingStep: 30}
}

// Service executes jobs against the external simulation engine. One engine
// instance is constructed per job and closed afterwards so model state never
// leaks between jobs on the same worker.
type Service struct {
	config       Config
	conditions   table.Conditions
	measurements *table.Measurements
	engines      engine.Factory
	index        *results.Index
	cache        *results.Cache
}

// New creates a worker service.
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, option := range options {
		option(s)
	}
	if s.engines == nil {
		return nil, fmt.Errorf("engine factory is required")
	}
	if s.conditions == nil {
		return nil, fmt.Errorf("conditions table is required")
	}
	if s.measurements == nil {
		return nil, fmt.Errorf("measurement table is required")
	}
	if s.index == nil {
		return nil, fmt.Errorf("result index is required")
	}
	if s.cache == nil {
		return nil, fmt.Errorf("result cache is required")
	}
	if s.config.ReportingStep <= 0 {
		return nil, fmt.Errorf("reporting step must be > 0")
	}
	return s, nil
}

// Execute runs one job and persists its frame into the result cache under the
// job's pre-allocated entry key. The returned parcel carries the same frame
// for merging into the coordinator's index.
func (s *Service) Execute(ctx context.Context, aJob *job.Job) (*results.Parcel, error) {
	condition, err := s.conditions.Lookup(aJob.ConditionID)
	if err != nil {
		return nil, err
	}

	key, ok := s.index.KeyOf(aJob.ConditionID, aJob.Cell)
	if !ok {
		return nil, fmt.Errorf("%w for condition %q cell %v", results.ErrNoEntry, aJob.ConditionID, aJob.Cell)
	}

	stop, err := s.measurements.StopTime(aJob.ConditionID)
	if err != nil {
		return nil, err
	}

	instance, err := s.engines.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create engine instance for %s: %w", aJob.Key(), err)
	}
	defer instance.Close()

	stateNames := instance.StateNames()

	if err := s.seedPreequilibration(ctx, instance, aJob); err != nil {
		return nil, err
	}
	for name, value := range condition.Overrides {
		if err := instance.SetVariable(name, value); err != nil {
			return nil, fmt.Errorf("failed to set %q for condition %q: %w", name, condition.ID, err)
		}
	}

	values, err := instance.Run(s.config.Start, stop, s.config.ReportingStep)
	if err != nil {
		return nil, fmt.Errorf("simulation failed for %s: %w", aJob.Key(), err)
	}
	times := make([]float64, len(values))
	for i := range times {
		times[i] = s.config.Start + float64(i)*s.config.ReportingStep
	}
	frame, err := table.NewFrame(stateNames, values, times)
	if err != nil {
		return nil, fmt.Errorf("malformed engine output for %s: %w", aJob.Key(), err)
	}

	if err := s.cache.Save(ctx, key, frame); err != nil {
		return nil, err
	}
	return &results.Parcel{ConditionID: aJob.ConditionID, Cell: aJob.Cell, Frame: frame}, nil
}

// seedPreequilibration applies the final state of the job's preequilibration
// condition, when one is declared and its result exists. A missing result is
// treated as "no preequilibration", not an error.
func (s *Service) seedPreequilibration(ctx context.Context, instance engine.Engine, aJob *job.Job) error {
	if !s.measurements.HasPreequilibration {
		return nil
	}
	preconditionID := s.measurements.PreconditionFor(aJob.ConditionID)
	if preconditionID == "" {
		return nil
	}
	key, ok := s.index.KeyOf(preconditionID, aJob.Cell)
	if !ok {
		return nil
	}
	frame, err := s.cache.Load(ctx, key)
	if err != nil {
		if errors.Is(err, results.ErrNotFound) {
			log.Printf("no cached result for precondition %q cell %v, continuing without preequilibration", preconditionID, aJob.Cell)
			return nil
		}
		return err
	}
	for name, value := range frame.FinalState() {
		if err := instance.SetVariable(name, value); err != nil {
			return fmt.Errorf("failed to seed state %q from precondition %q: %w", name, preconditionID, err)
		}
	}
	return nil
}
