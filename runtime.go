package cellrun

import (
	"context"
	"fmt"

	"github.com/cellrun/cellrun/service/coordinator"
	"github.com/cellrun/cellrun/service/results"
	"github.com/cellrun/cellrun/service/scheduler"
	"github.com/cellrun/cellrun/tracing"
)

// Runtime is one assembled experiment run.
type Runtime struct {
	config      *Config
	schedule    *scheduler.Schedule
	index       *results.Index
	cache       *results.Cache
	coordinator *coordinator.Service
	writer      *results.Writer
}

// Schedule returns the static round directory of this run.
func (r *Runtime) Schedule() *scheduler.Schedule {
	return r.schedule
}

// Index returns the result index. It is owned by the coordinator during Run;
// read it only after Run returned.
func (r *Runtime) Index() *results.Index {
	return r.index
}

// Run executes every round, writes the results artifact and purges the
// cache. On failure the run aborts before writing any output; whatever the
// workers already flushed stays in the cache directory.
func (r *Runtime) Run(ctx context.Context) (location string, err error) {
	ctx, span := tracing.StartSpan(ctx, "experiment.run", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	switch r.config.Mode {
	case ModePool:
		err = r.coordinator.RunPool(ctx)
	default:
		err = r.coordinator.Run(ctx)
	}
	if err != nil {
		return "", err
	}
	if !r.index.Complete() {
		return "", fmt.Errorf("run finished with unpopulated result entries")
	}
	location, err = r.writer.Write(ctx, r.index)
	if err != nil {
		return "", err
	}
	if err = r.cache.Purge(ctx); err != nil {
		return "", err
	}
	return location, nil
}
