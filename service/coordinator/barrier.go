package coordinator

import (
	"context"
	"sync"
)

// Barrier is a reusable synchronization point for a fixed number of parties.
// Every worker, the coordinator included, awaits it once per round; a
// placeholder round therefore still costs each worker one exchange, which is
// what keeps dependent jobs strictly behind their precondition's round.
type Barrier struct {
	parties int
	mu      sync.Mutex
	waiting int
	release chan struct{}
}

// NewBarrier creates a barrier for the given number of parties.
func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		parties = 1
	}
	return &Barrier{parties: parties, release: make(chan struct{})}
}

// Await blocks until all parties have arrived or ctx is done. The last
// arrival releases the generation and re-arms the barrier for the next round.
func (b *Barrier) Await(ctx context.Context) error {
	b.mu.Lock()
	release := b.release
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.release = make(chan struct{})
		close(release)
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	select {
	case <-release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
