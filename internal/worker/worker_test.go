package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"teamCalendar/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSyncer struct {
	mock.Mock
}

func (m *MockSyncer) Sync(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type countingSyncer struct {
	calls atomic.Int32
}

func (s *countingSyncer) Sync(ctx context.Context) (int, error) {
	s.calls.Add(1)
	return 0, nil
}

type countingReaper struct {
	calls atomic.Int32
}

func (r *countingReaper) Reap(ctx context.Context) int {
	r.calls.Add(1)
	return 1
}

func TestLateTaskWorker_Check(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := new(MockSyncer)
		m.On("Sync", mock.Anything).Return(2, nil).Once()

		worker.NewLateTaskWorker(m, nil).Check(context.Background())

		m.AssertExpectations(t)
	})

	t.Run("error is logged, not fatal", func(t *testing.T) {
		m := new(MockSyncer)
		m.On("Sync", mock.Anything).Return(0, errors.New("db down")).Once()

		assert.NotPanics(t, func() {
			worker.NewLateTaskWorker(m, nil).Check(context.Background())
		})
		m.AssertExpectations(t)
	})
}

func TestLateTaskWorker_StartStops(t *testing.T) {
	s := &countingSyncer{}
	interval := 5 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.NewLateTaskWorker(s, &interval).Start(ctx)
		close(done)
	}()

	// первая проверка сразу при старте, вторая по тикеру
	assert.Eventually(t, func() bool { return s.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("воркер не остановился")
	}
}

func TestSessionReaper(t *testing.T) {
	r := &countingReaper{}
	interval := 5 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.NewSessionReaper(r, &interval).Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("воркер не остановился")
	}
}
