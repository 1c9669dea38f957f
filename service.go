package cellrun

import (
	"context"
	"fmt"

	"github.com/cellrun/cellrun/engine"
	"github.com/cellrun/cellrun/model/table"
	"github.com/cellrun/cellrun/service/coordinator"
	"github.com/cellrun/cellrun/service/depgraph"
	"github.com/cellrun/cellrun/service/loader"
	"github.com/cellrun/cellrun/service/results"
	"github.com/cellrun/cellrun/service/scheduler"
	"github.com/cellrun/cellrun/service/worker"
)

// Service is the high-level façade: it assembles the dependency graph, the
// round schedule, the result stores and the coordinator into a runnable
// experiment.
type Service struct {
	config       *Config
	loader       *loader.Service
	engines      engine.Factory
	conditions   table.Conditions
	measurements *table.Measurements
}

// New creates a service with the supplied options.
func New(options ...Option) *Service {
	s := &Service{config: DefaultConfig(), loader: loader.New()}
	for _, option := range options {
		option(s)
	}
	return s
}

// Load reads an experiment definition and adopts its tables and settings.
// Settings present in the definition override the configured defaults.
func (s *Service) Load(ctx context.Context, URL string) error {
	problem, err := s.loader.Load(ctx, URL)
	if err != nil {
		return err
	}
	s.conditions = problem.Conditions
	s.measurements = problem.Measurements
	experiment := problem.Experiment
	if experiment.Name != "" {
		s.config.Name = experiment.Name
	}
	if experiment.CellCount > 0 {
		s.config.CellCount = experiment.CellCount
	}
	if experiment.Workers > 0 {
		s.config.Workers = experiment.Workers
	}
	if experiment.Output != "" {
		s.config.OutputDir = experiment.Output
	}
	if experiment.Cache != "" {
		s.config.CacheDir = experiment.Cache
	}
	return nil
}

// Runtime assembles a runnable experiment from the current configuration and
// tables. Dependency cycles and invalid configuration surface here, before
// any simulation starts.
func (s *Service) Runtime() (*Runtime, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if s.engines == nil {
		return nil, fmt.Errorf("engine factory is required")
	}
	if len(s.conditions) == 0 {
		return nil, fmt.Errorf("conditions table is empty")
	}
	if s.measurements == nil || len(s.measurements.Rows) == 0 {
		return nil, fmt.Errorf("measurement table is empty")
	}

	ordered, err := depgraph.Order(s.measurements)
	if err != nil {
		return nil, err
	}
	schedule := scheduler.New(ordered, s.measurements, scheduler.Config{
		Workers:   s.config.Workers,
		CellCount: s.config.CellCount,
	})
	index := results.NewIndex(s.conditions, s.measurements, s.config.CellCount)
	cache, err := results.NewCache(s.config.CacheDir)
	if err != nil {
		return nil, err
	}
	executor, err := worker.New(
		worker.WithConfig(worker.Config{Start: s.config.Start, ReportingStep: s.config.ReportingStep}),
		worker.WithEngineFactory(s.engines),
		worker.WithConditions(s.conditions),
		worker.WithMeasurements(s.measurements),
		worker.WithIndex(index),
		worker.WithCache(cache),
	)
	if err != nil {
		return nil, err
	}
	driver, err := coordinator.New(
		coordinator.WithSchedule(schedule),
		coordinator.WithWorker(executor),
		coordinator.WithIndex(index),
	)
	if err != nil {
		return nil, err
	}
	return &Runtime{
		config:      s.config,
		schedule:    schedule,
		index:       index,
		cache:       cache,
		coordinator: driver,
		writer:      results.NewWriter(s.config.OutputDir, s.config.Name),
	}, nil
}
