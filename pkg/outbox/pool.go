package outbox

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrPoolClosed is returned by Submit after the pool has drained.
var ErrPoolClosed = errors.New("outbox: delivery pool closed")

// Pool is a bounded set of delivery workers fed by a bounded queue. When the
// queue is full, Submit blocks instead of spawning more goroutines.
type Pool struct {
	log      *slog.Logger
	dispatch *Dispatcher
	tasks    chan Event
	workers  int

	once sync.Once
	done chan struct{}
}

func NewPool(log *slog.Logger, dispatch *Dispatcher, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers
	}
	return &Pool{
		log:      log,
		dispatch: dispatch,
		tasks:    make(chan Event, queueSize),
		workers:  workers,
		done:     make(chan struct{}),
	}
}

// Submit queues one delivery attempt. It blocks while the queue is
// saturated and returns the context error if the caller gives up first.
// A dropped submission is not a loss: the event is still staged.
func (p *Pool) Submit(ctx context.Context, event Event) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- event:
		return nil
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run blocks until ctx is cancelled and every worker has finished its
// in-flight attempt. Tasks still queued at shutdown are dropped; the
// sweeper re-drives them on the next run.
func (p *Pool) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case event := <-p.tasks:
					p.dispatch.Deliver(ctx, event)
				}
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()
	p.once.Do(func() { close(p.done) })
	p.log.Info("delivery pool drained", "workers", p.workers)
	return nil
}
