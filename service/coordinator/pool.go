package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/cellrun/cellrun/service/messaging/memory"
	"github.com/cellrun/cellrun/tracing"
)

// RunPool executes the schedule with the worker-pool model: a bounded pool of
// W workers pulls the round's jobs from a shared queue and the round only
// completes once every job has returned its parcel. The per-round join gives
// the same safety property as the barrier in Run, so dependency placeholders
// hold in both models.
func (s *Service) RunPool(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, "coordinator.runPool", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	workers := s.schedule.Workers()
	rounds := s.schedule.Rounds()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	taskQueue := memory.NewQueue[Assignment](s.queues)
	resultQueue := memory.NewQueue[Result](s.queues)

	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for id := 0; id < workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if wErr := s.runPoolWorker(runCtx, id, taskQueue, resultQueue); wErr != nil {
				errCh <- wErr
				cancel()
			}
		}(id)
	}

	for round := 0; round < rounds && err == nil; round++ {
		err = s.runPoolRound(runCtx, round, rounds, taskQueue, resultQueue)
	}
	cancel()
	wg.Wait()
	return firstError(err, errCh)
}

// runPoolRound feeds one round's jobs to the pool and blocks until all of
// them completed.
func (s *Service) runPoolRound(ctx context.Context, round, rounds int, taskQueue *memory.Queue[Assignment], resultQueue *memory.Queue[Result]) (err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("coordinator.poolRound %d", round), "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	log.Printf("round %d of %d", round+1, rounds)
	pending := 0
	for id := 0; id < s.schedule.Workers(); id++ {
		aJob := s.schedule.Assignment(id, round)
		if aJob == nil {
			continue
		}
		assignment := Assignment{Round: round, Job: aJob}
		if err = taskQueue.Publish(ctx, &assignment); err != nil {
			return err
		}
		pending++
	}
	for collected := 0; collected < pending; collected++ {
		msg, consumeErr := resultQueue.Consume(ctx)
		if consumeErr != nil {
			return consumeErr
		}
		result := msg.T()
		_ = msg.Ack()
		if err = s.index.Merge(result.Parcel); err != nil {
			return err
		}
	}
	return nil
}

// runPoolWorker executes jobs from the shared queue until the run ends.
func (s *Service) runPoolWorker(ctx context.Context, id int, taskQueue *memory.Queue[Assignment], resultQueue *memory.Queue[Result]) error {
	for {
		msg, err := taskQueue.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		assignment := msg.T()
		_ = msg.Ack()
		log.Printf("pool worker %d running %s", id, assignment.Job.Key())
		parcel, err := s.executor.Execute(ctx, assignment.Job)
		if err != nil {
			return fmt.Errorf("pool worker %v: %w", id, err)
		}
		result := Result{Round: assignment.Round, Worker: id, Parcel: parcel}
		if err := resultQueue.Publish(ctx, &result); err != nil {
			return err
		}
	}
}
