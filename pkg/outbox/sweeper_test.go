package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingSubmitter struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingSubmitter) Submit(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func staleEvent(id int64, age time.Duration) Event {
	e := testEvent(id)
	e.CreatedAt = time.Now().UTC().Add(-age)
	return e
}

func TestSweepOnceRequeuesOnlyStaleEvents(t *testing.T) {
	store := newFakeStore(
		staleEvent(1, 10*time.Minute),
		staleEvent(2, 5*time.Minute),
		testEvent(3), // fresh, still inside the grace window
	)
	sub := &recordingSubmitter{}
	s := NewSweeper(discardLogger(), store, sub, time.Second, time.Minute)

	n, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	ids := map[int64]bool{}
	for _, e := range sub.events {
		ids[e.ID] = true
	}
	require.True(t, ids[1])
	require.True(t, ids[2])
	require.False(t, ids[3])
}

func TestSweepOnceStopsWhenSubmitFails(t *testing.T) {
	store := newFakeStore(staleEvent(1, 10*time.Minute))
	sub := &recordingSubmitter{err: context.Canceled}
	s := NewSweeper(discardLogger(), store, sub, time.Second, time.Minute)

	_, err := s.SweepOnce(context.Background())
	require.ErrorIs(t, err, context.Canceled)
}

// Recovery completeness: an event staged before the grace window with no
// successful send gets at least one more attempt per sweep, and disappears
// once a send finally succeeds.
func TestSweeperRedrivesUntilBrokerRecovers(t *testing.T) {
	broker := &fakeBroker{err: errors.New("broker outage")}
	store := newFakeStore(staleEvent(1, time.Hour))
	pool := NewPool(discardLogger(), NewDispatcher(discardLogger(), broker, store), 1, 4)
	s := NewSweeper(discardLogger(), store, pool, time.Second, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pool.Run(ctx)
	}()

	_, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return broker.attempts() >= 1 }, 2*time.Second, 10*time.Millisecond)
	require.True(t, store.staged(1), "event survives a failed resend")

	broker.mu.Lock()
	broker.err = nil
	broker.mu.Unlock()

	_, err = s.SweepOnce(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return !store.staged(1) }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	store := newFakeStore()
	s := NewSweeper(discardLogger(), store, &recordingSubmitter{}, 10*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
