package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/qoit/pkg/service/worker"
)

type mockExpirer struct {
	mu     sync.Mutex
	calls  int
	err    error
	called chan struct{}
}

func newMockExpirer() *mockExpirer {
	return &mockExpirer{called: make(chan struct{}, 100)}
}

func (m *mockExpirer) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	m.calls++
	err := m.err
	m.mu.Unlock()

	m.called <- struct{}{}
	if err != nil {
		return 0, err
	}
	return 1, nil
}

func (m *mockExpirer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func waitCalled(t *testing.T, m *mockExpirer) {
	t.Helper()
	select {
	case <-m.called:
	case <-time.After(2 * time.Second):
		t.Fatal("expirer was not called")
	}
}

func TestExpiryWorker(t *testing.T) {
	t.Run("sweeps on start and on every tick", func(t *testing.T) {
		m := newMockExpirer()
		w := worker.NewExpiryWorker(m, 20*time.Millisecond)

		gt.NoError(t, w.Start(context.Background())).Required()
		waitCalled(t, m)
		waitCalled(t, m)
		waitCalled(t, m)
		w.Stop()

		gt.Number(t, m.callCount()).GreaterOrEqual(3)
	})

	t.Run("keeps running after a failed sweep", func(t *testing.T) {
		m := newMockExpirer()
		m.err = errors.New("datastore unavailable")
		w := worker.NewExpiryWorker(m, 20*time.Millisecond)

		gt.NoError(t, w.Start(context.Background())).Required()
		waitCalled(t, m)
		waitCalled(t, m)
		w.Stop()

		gt.Number(t, m.callCount()).GreaterOrEqual(2)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		m := newMockExpirer()
		w := worker.NewExpiryWorker(m, time.Hour)
		ctx, cancel := context.WithCancel(context.Background())

		gt.NoError(t, w.Start(ctx)).Required()
		waitCalled(t, m)
		cancel()

		done := make(chan struct{})
		go func() {
			w.Stop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop")
		}
		gt.Number(t, m.callCount()).Equal(1)
	})
}
