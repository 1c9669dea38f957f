// Package cellrun distributes a batch of condition/replicate simulation jobs
// across a fixed pool of workers, respecting preequilibration dependencies
// between conditions, and collects every result into a single consistent
// index persisted as one artifact.
//
// The simulation engine itself is an external collaborator behind the narrow
// engine.Engine interface; cellrun only schedules it.  End-users typically
// interact via the high-level Service façade exposed by the root package:
//
//	srv := cellrun.New(cellrun.WithEngineFactory(factory), cellrun.WithWorkers(4))
//	_ = srv.Load(ctx, "experiment.yaml")
//	rt, _ := srv.Runtime()
//	artifact, _ := rt.Run(ctx)
//
// Jobs are laid out round-robin into synchronization rounds; conditions that
// seed other conditions get placeholder rounds inserted behind them so that
// a dependent job never starts before its precondition's result is durable.
package cellrun
