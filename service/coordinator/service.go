// Package coordinator drives execution round by round: it pushes every
// worker its assignment for the round, meets all workers at a barrier and
// collects the round's results into the index. It is the message-passing
// counterpart of the MPI rank-0 process; Pool provides the worker-pool
// execution model with identical semantics.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/cellrun/cellrun/service/messaging"
	"github.com/cellrun/cellrun/service/messaging/memory"
	"github.com/cellrun/cellrun/service/results"
	"github.com/cellrun/cellrun/service/scheduler"
	"github.com/cellrun/cellrun/service/worker"
	"github.com/cellrun/cellrun/tracing"
)

// Service executes a schedule with one coordinator (acting as worker 0) and
// W-1 remote workers exchanging round-tagged messages.
type Service struct {
	schedule *scheduler.Schedule
	executor *worker.Service
	index    *results.Index
	queues   memory.Config
}

// New creates a coordinator service.
func New(options ...Option) (*Service, error) {
	s := &Service{queues: memory.DefaultConfig()}
	for _, option := range options {
		option(s)
	}
	if s.schedule == nil {
		return nil, fmt.Errorf("schedule is required")
	}
	if s.executor == nil {
		return nil, fmt.Errorf("worker service is required")
	}
	if s.index == nil {
		return nil, fmt.Errorf("result index is required")
	}
	return s, nil
}

// Run drives all rounds to completion. Any worker error aborts the whole
// run; there is no retry and no partial-result continuation across rounds.
func (s *Service) Run(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, "coordinator.run", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	workers := s.schedule.Workers()
	rounds := s.schedule.Rounds()
	span.WithAttributes(map[string]string{
		"schedule.workers": fmt.Sprintf("%d", workers),
		"schedule.rounds":  fmt.Sprintf("%d", rounds),
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	assignments := make([]messaging.Queue[Assignment], workers)
	for i := range assignments {
		assignments[i] = memory.NewQueue[Assignment](s.queues)
	}
	resultQueue := memory.NewQueue[Result](s.queues)
	barrier := NewBarrier(workers)

	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for id := 1; id < workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if wErr := s.runWorker(runCtx, id, rounds, assignments[id], resultQueue, barrier); wErr != nil {
				errCh <- wErr
				cancel()
			}
		}(id)
	}

	for round := 0; round < rounds; round++ {
		if err = s.runRound(runCtx, round, rounds, assignments, resultQueue, barrier); err != nil {
			break
		}
	}
	cancel()
	wg.Wait()
	return firstError(err, errCh)
}

// runRound performs the coordinator's side of one round: dispatch, own slot,
// result collection.
func (s *Service) runRound(ctx context.Context, round, rounds int, assignments []messaging.Queue[Assignment], resultQueue messaging.Queue[Result], barrier *Barrier) (err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("coordinator.round %d", round), "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	log.Printf("round %d of %d", round+1, rounds)
	for id := range assignments {
		assignment := Assignment{Round: round, Job: s.schedule.Assignment(id, round)}
		if err = assignments[id].Publish(ctx, &assignment); err != nil {
			return err
		}
	}

	// The coordinator doubles as worker 0.
	msg, err := assignments[0].Consume(ctx)
	if err != nil {
		return err
	}
	own := msg.T()
	_ = msg.Ack()
	if own.Round != round {
		return fmt.Errorf("coordinator: expected assignment for round %v, got %v", round, own.Round)
	}
	if err = barrier.Await(ctx); err != nil {
		return err
	}

	expected := s.schedule.ActiveWorkers(round)
	if own.Job != nil {
		parcel, execErr := s.executor.Execute(ctx, own.Job)
		if execErr != nil {
			return execErr
		}
		if err = s.index.Merge(parcel); err != nil {
			return err
		}
		// The coordinator already holds its own result.
		expected--
	}

	for collected := 0; collected < expected; collected++ {
		resultMsg, consumeErr := resultQueue.Consume(ctx)
		if consumeErr != nil {
			return consumeErr
		}
		result := resultMsg.T()
		_ = resultMsg.Ack()
		if err = s.index.Merge(result.Parcel); err != nil {
			return err
		}
	}
	return nil
}

// runWorker is the remote worker loop: receive the round's assignment, meet
// the barrier, execute and send the parcel back.
func (s *Service) runWorker(ctx context.Context, id, rounds int, queue messaging.Queue[Assignment], resultQueue messaging.Queue[Result], barrier *Barrier) error {
	for round := 0; round < rounds; round++ {
		msg, err := queue.Consume(ctx)
		if err != nil {
			return err
		}
		assignment := msg.T()
		_ = msg.Ack()
		if assignment.Round != round {
			return fmt.Errorf("worker %v: expected assignment for round %v, got %v", id, round, assignment.Round)
		}
		if err := barrier.Await(ctx); err != nil {
			return err
		}
		if assignment.Job == nil {
			continue
		}
		log.Printf("worker %d running %s", id, assignment.Job.Key())
		parcel, err := s.executor.Execute(ctx, assignment.Job)
		if err != nil {
			return fmt.Errorf("worker %v: %w", id, err)
		}
		result := Result{Round: round, Worker: id, Parcel: parcel}
		if err := resultQueue.Publish(ctx, &result); err != nil {
			return err
		}
		log.Printf("worker %d finished %s", id, assignment.Job.Key())
	}
	return nil
}

// firstError prefers a concrete failure over the context cancellation it
// triggered in the other parties.
func firstError(err error, errCh chan error) error {
	for {
		select {
		case candidate := <-errCh:
			if err == nil || (errors.Is(err, context.Canceled) && !errors.Is(candidate, context.Canceled)) {
				err = candidate
			}
		default:
			return err
		}
	}
}
