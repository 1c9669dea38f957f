package worker

import (
	"github.com/cellrun/cellrun/engine"
	"github.com/cellrun/cellrun/model/table"
	"github.com/cellrun/cellrun/service/results"
)

// Option configures the worker service.
type Option func(*Service)

// WithConfig overrides the simulation parameters.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithEngineFactory sets the simulation engine factory.
func WithEngineFactory(factory engine.Factory) Option {
	return func(s *Service) {
		s.engines = factory
	}
}

// WithConditions sets the conditions table.
func WithConditions(conditions table.Conditions) Option {
	return func(s *Service) {
		s.conditions = conditions
	}
}

// WithMeasurements sets the measurement table.
func WithMeasurements(measurements *table.Measurements) Option {
	return func(s *Service) {
		s.measurements = measurements
	}
}

// WithIndex sets the shared, read-only result index.
func WithIndex(index *results.Index) Option {
	return func(s *Service) {
		s.index = index
	}
}

// WithCache sets the durable result cache.
func WithCache(cache *results.Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}
