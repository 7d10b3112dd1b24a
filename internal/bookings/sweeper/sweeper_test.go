package sweeper

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"crafthub/pkg/config"
	"crafthub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls   atomic.Int32
	batch   int
	expired int
	err     error
	block   chan struct{}
}

func (f *fakeExpirer) ExpireDue(ctx context.Context, _ time.Time, batch int) (int, error) {
	f.calls.Add(1)
	f.batch = batch
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return f.expired, f.err
}

// memLocker behaves like SET NX: one lease per key until released.
type memLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	released int
	err      error
}

func (l *memLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released++
		return nil
	}, true, nil
}

func testConfig(schedule string) *config.Config {
	return &config.Config{
		Log:            logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
		SweepSchedule:  schedule,
		SweepBatchSize: 50,
		SweepLockTTL:   time.Second,
	}
}

func TestRunOnce_WithoutLock(t *testing.T) {
	expirer := &fakeExpirer{expired: 3}
	s := New(expirer, nil, testConfig("@every 1m"))

	n, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int32(1), expirer.calls.Load())
	assert.Equal(t, 50, expirer.batch)
}

func TestRunOnce_ReleasesLock(t *testing.T) {
	locker := &memLocker{}
	s := New(&fakeExpirer{expired: 1}, locker, testConfig("@every 1m"))

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	_, err = s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, locker.released)
	assert.Empty(t, locker.held)
}

func TestRunOnce_SkipsWhenLockHeld(t *testing.T) {
	locker := &memLocker{held: map[string]bool{LockKey: true}}
	expirer := &fakeExpirer{expired: 5}
	s := New(expirer, locker, testConfig("@every 1m"))

	n, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, int32(0), expirer.calls.Load())
}

func TestRunOnce_OnlyOneReplicaSweeps(t *testing.T) {
	locker := &memLocker{}
	expirer := &fakeExpirer{expired: 1, block: make(chan struct{})}
	a := New(expirer, locker, testConfig("@every 1m"))
	b := New(expirer, locker, testConfig("@every 1m"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = a.RunOnce(context.Background())
	}()
	require.Eventually(t, func() bool { return expirer.calls.Load() == 1 }, time.Second, time.Millisecond)

	n, err := b.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	close(expirer.block)
	<-done
	assert.Equal(t, int32(1), expirer.calls.Load())
}

func TestRunOnce_PropagatesErrors(t *testing.T) {
	s := New(&fakeExpirer{err: errors.New("mongo down")}, nil, testConfig("@every 1m"))
	_, err := s.RunOnce(context.Background())
	assert.EqualError(t, err, "mongo down")

	s = New(&fakeExpirer{}, &memLocker{err: errors.New("redis down")}, testConfig("@every 1m"))
	_, err = s.RunOnce(context.Background())
	assert.EqualError(t, err, "redis down")
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := New(&fakeExpirer{}, nil, testConfig("every minute"))
	assert.Error(t, s.Start())
}

func TestStart_SweepsOnSchedule(t *testing.T) {
	expirer := &fakeExpirer{}
	s := New(expirer, nil, testConfig("@every 1s"))
	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return expirer.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestStop_CancelsRunningSweep(t *testing.T) {
	expirer := &fakeExpirer{block: make(chan struct{})}
	s := New(expirer, nil, testConfig("@every 1s"))
	require.NoError(t, s.Start())
	require.Eventually(t, func() bool { return expirer.calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	start := time.Now()
	s.Stop(ctx)

	assert.Less(t, time.Since(start), time.Second)
}

func TestRun_StopsWithContext(t *testing.T) {
	expirer := &fakeExpirer{}
	s := New(expirer, nil, testConfig("@every 1s"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return expirer.calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
