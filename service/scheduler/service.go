// Package scheduler partitions an ordered job list into per-worker,
// per-round assignments and inserts synchronization stalls so that a
// dependent condition can never start before its preequilibration condition
// has finished and persisted its result.
package scheduler

import (
	"github.com/cellrun/cellrun/model/job"
	"github.com/cellrun/cellrun/model/table"
)

// Config holds scheduling parameters.
type Config struct {
	// Workers is the total worker count W, coordinator included.
	Workers int

	// CellCount is the replicate count C per condition.
	CellCount int
}

// DefaultConfig returns a single-worker, single-cell configuration.
func DefaultConfig() Config {
	return Config{Workers: 1, CellCount: 1}
}

// Schedule is a static round directory: one slot per worker per round, where
// a nil slot means the worker idles for that round but still participates in
// the round's synchronization exchange.
type Schedule struct {
	workers int
	rounds  int
	slots   []*job.Job // round-major, nil = placeholder
}

// New enumerates jobs for the ordered condition list (crossed with cell
// indices) and lays them out round-robin: the job at slot index i goes to
// worker i mod W in round i div W. After all C replicates of a condition that
// some later condition depends on, max(W-C, 0) placeholder slots are
// inserted; in the worst case a single worker runs every replicate of the
// precondition sequentially, and the stall stops other workers from racing
// ahead of its final result. Each precondition triggers the insertion only
// once, so conditions depended on by several dependents do not compound the
// delay.
func New(orderedConditions []string, measurements *table.Measurements, config Config) *Schedule {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.CellCount < 1 {
		config.CellCount = 1
	}
	jobs := job.Expand(orderedConditions, config.CellCount)

	preconditions := map[string]bool{}
	for _, id := range measurements.Preconditions() {
		preconditions[id] = true
	}

	delay := config.Workers - config.CellCount
	if delay < 0 {
		delay = 0
	}
	consumed := map[string]bool{}
	slots := make([]*job.Job, 0, len(jobs))
	for i, next := range jobs {
		slots = append(slots, next)
		lastReplicate := i == len(jobs)-1 || jobs[i+1].ConditionID != next.ConditionID
		if !lastReplicate || !preconditions[next.ConditionID] || consumed[next.ConditionID] {
			continue
		}
		consumed[next.ConditionID] = true
		for stall := 0; stall < delay; stall++ {
			slots = append(slots, nil)
		}
	}

	rounds := (len(slots) + config.Workers - 1) / config.Workers
	return &Schedule{workers: config.Workers, rounds: rounds, slots: slots}
}

// Workers returns the worker count the schedule was built for.
func (s *Schedule) Workers() int {
	return s.workers
}

// Rounds returns the number of synchronization rounds to complete.
func (s *Schedule) Rounds() int {
	return s.rounds
}

// Assignment returns the job for a worker in a round, or nil when the worker
// idles that round.
func (s *Schedule) Assignment(worker, round int) *job.Job {
	if worker < 0 || worker >= s.workers || round < 0 || round >= s.rounds {
		return nil
	}
	index := round*s.workers + worker
	if index >= len(s.slots) {
		return nil
	}
	return s.slots[index]
}

// WorkerJobs returns a worker's assignment for every round, placeholders
// included.
func (s *Schedule) WorkerJobs(worker int) []*job.Job {
	jobs := make([]*job.Job, s.rounds)
	for round := 0; round < s.rounds; round++ {
		jobs[round] = s.Assignment(worker, round)
	}
	return jobs
}

// Jobs returns all scheduled jobs in slot order, placeholders excluded.
func (s *Schedule) Jobs() []*job.Job {
	jobs := make([]*job.Job, 0, len(s.slots))
	for _, slot := range s.slots {
		if slot != nil {
			jobs = append(jobs, slot)
		}
	}
	return jobs
}

// TotalJobs returns the number of real jobs in the schedule.
func (s *Schedule) TotalJobs() int {
	return len(s.Jobs())
}

// ActiveWorkers returns how many workers hold a non-idle assignment in the
// given round. The coordinator collects exactly ActiveWorkers(round)-1
// remote results per round, its own being stored directly.
func (s *Schedule) ActiveWorkers(round int) int {
	active := 0
	for worker := 0; worker < s.workers; worker++ {
		if s.Assignment(worker, round) != nil {
			active++
		}
	}
	return active
}

// RoundOf returns the round in which a job runs, or -1 when the job is not
// scheduled.
func (s *Schedule) RoundOf(conditionID string, cell int) int {
	for index, slot := range s.slots {
		if slot != nil && slot.ConditionID == conditionID && slot.Cell == cell {
			return index / s.workers
		}
	}
	return -1
}
