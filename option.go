package cellrun

import (
	"github.com/cellrun/cellrun/engine"
	"github.com/cellrun/cellrun/model/table"
)

// Option configures the service façade.
type Option func(*Service)

// WithConfig replaces the whole configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithName sets the experiment name used for the results artifact.
func WithName(name string) Option {
	return func(s *Service) {
		s.config.Name = name
	}
}

// WithWorkers sets the total worker count.
func WithWorkers(workers int) Option {
	return func(s *Service) {
		s.config.Workers = workers
	}
}

// WithCellCount sets the replicate count per condition.
func WithCellCount(cellCount int) Option {
	return func(s *Service) {
		s.config.CellCount = cellCount
	}
}

// WithMode selects the execution model.
func WithMode(mode string) Option {
	return func(s *Service) {
		s.config.Mode = mode
	}
}

// WithEngineFactory sets the simulation engine factory.
func WithEngineFactory(factory engine.Factory) Option {
	return func(s *Service) {
		s.engines = factory
	}
}

// WithTables supplies already-parsed condition and measurement tables,
// bypassing the loader.
func WithTables(conditions table.Conditions, measurements *table.Measurements) Option {
	return func(s *Service) {
		s.conditions = conditions
		s.measurements = measurements
	}
}
