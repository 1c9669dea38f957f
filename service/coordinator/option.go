package coordinator

import (
	"github.com/cellrun/cellrun/service/messaging/memory"
	"github.com/cellrun/cellrun/service/results"
	"github.com/cellrun/cellrun/service/scheduler"
	"github.com/cellrun/cellrun/service/worker"
)

// Option configures the coordinator service.
type Option func(*Service)

// WithSchedule sets the round directory to execute.
func WithSchedule(schedule *scheduler.Schedule) Option {
	return func(s *Service) {
		s.schedule = schedule
	}
}

// WithWorker sets the job execution service shared by all workers.
func WithWorker(executor *worker.Service) Option {
	return func(s *Service) {
		s.executor = executor
	}
}

// WithIndex sets the coordinator-owned result index.
func WithIndex(index *results.Index) Option {
	return func(s *Service) {
		s.index = index
	}
}

// WithQueueConfig overrides the message queue configuration.
func WithQueueConfig(config memory.Config) Option {
	return func(s *Service) {
		s.queues = config
	}
}
