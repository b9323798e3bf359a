package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundEye/internal/model"
)

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
	block chan struct{} // when set, Refresh waits on it
	out   []model.Fund
}

func (f *fakeRefresher) Refresh(_ context.Context, _ string, _ []model.Fund) ([]model.Fund, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	block := f.block
	out := f.out
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeRefresher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRefresher) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeStore struct {
	funds   []model.Fund
	loadErr error
}

func (s *fakeStore) Load() ([]model.Fund, error) { return s.funds, s.loadErr }
func (s *fakeStore) Save([]model.Fund) error     { return nil }

type fakeNotifier struct {
	mu      sync.Mutex
	updates [][]model.Fund
	errors  []string
}

func (n *fakeNotifier) ValuationUpdated(funds []model.Fund) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, funds)
}

func (n *fakeNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *fakeNotifier) counts() (updates, errs int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.updates), len(n.errors)
}

func newTestScheduler(re *fakeRefresher, st *fakeStore, n *fakeNotifier) *Scheduler {
	cfg := Config{
		Interval:   time.Hour, // periodic tick must not fire during tests
		MaxRetries: 3,
		RetryDelay: 5 * time.Millisecond,
	}
	s := NewScheduler(context.Background(), cfg, re, st, n, zerolog.Nop())
	s.gate = func(time.Time) bool { return true }
	return s
}

func TestManualRefreshSuccess(t *testing.T) {
	re := &fakeRefresher{out: []model.Fund{{Code: "161725"}}}
	n := &fakeNotifier{}
	s := newTestScheduler(re, &fakeStore{funds: []model.Fund{{Code: "161725"}}}, n)

	s.Refresh()

	assert.Equal(t, 1, re.callCount())
	updates, errs := n.counts()
	assert.Equal(t, 1, updates)
	assert.Zero(t, errs)

	st := s.Status()
	assert.Zero(t, st.ConsecutiveErrors)
	assert.Empty(t, st.LastError)
	assert.False(t, st.LastUpdateTime.IsZero())
}

func TestConsecutiveFailuresEmitOneTerminalError(t *testing.T) {
	re := &fakeRefresher{err: errors.New("network down")}
	n := &fakeNotifier{}
	s := newTestScheduler(re, &fakeStore{}, n)
	s.gate = func(time.Time) bool { return false } // the immediate cycle is gated away
	require.NoError(t, s.Start())
	defer s.Stop()

	s.Refresh() // failure 1; auto-retries take it to MaxRetries

	require.Eventually(t, func() bool {
		_, errs := n.counts()
		return errs == 1
	}, time.Second, 2*time.Millisecond)

	// No further auto-retries after the terminal error.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, re.callCount())
	_, errs := n.counts()
	assert.Equal(t, 1, errs)
	assert.Equal(t, 3, s.Status().ConsecutiveErrors)
	assert.Contains(t, s.Status().LastError, "network down")
}

func TestSuccessResetsConsecutiveErrors(t *testing.T) {
	re := &fakeRefresher{err: errors.New("timeout")}
	n := &fakeNotifier{}
	s := newTestScheduler(re, &fakeStore{}, n)

	s.Refresh()
	assert.Equal(t, 1, s.Status().ConsecutiveErrors)

	re.setErr(nil)
	s.Refresh()
	assert.Zero(t, s.Status().ConsecutiveErrors)
	assert.Empty(t, s.Status().LastError)
}

func TestStoppedSchedulerArmsNoRetry(t *testing.T) {
	re := &fakeRefresher{err: errors.New("network down")}
	s := newTestScheduler(re, &fakeStore{}, &fakeNotifier{})

	s.Refresh() // not running: failure recorded, no retry timer

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, re.callCount())
	assert.Equal(t, 1, s.Status().ConsecutiveErrors)
}

func TestStopIsIdempotent(t *testing.T) {
	re := &fakeRefresher{}
	s := newTestScheduler(re, &fakeStore{}, &fakeNotifier{})
	s.gate = func(time.Time) bool { return false }

	require.NoError(t, s.Start())
	assert.True(t, s.Status().IsRunning)

	s.Stop()
	s.Stop()
	assert.False(t, s.Status().IsRunning)
}

func TestStartIsIdempotent(t *testing.T) {
	re := &fakeRefresher{}
	s := newTestScheduler(re, &fakeStore{}, &fakeNotifier{})
	s.gate = func(time.Time) bool { return false }
	defer s.Stop()

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.True(t, s.Status().IsRunning)
}

func TestGateSkipsScheduledCycle(t *testing.T) {
	re := &fakeRefresher{}
	s := newTestScheduler(re, &fakeStore{}, &fakeNotifier{})
	s.gate = func(time.Time) bool { return false }

	s.runCycle("scheduled", true)
	assert.Zero(t, re.callCount())

	// Manual refresh ignores the gate.
	s.runCycle("manual", false)
	assert.Equal(t, 1, re.callCount())
}

func TestOverlappingCycleIsSkipped(t *testing.T) {
	block := make(chan struct{})
	re := &fakeRefresher{block: block}
	s := newTestScheduler(re, &fakeStore{}, &fakeNotifier{})

	done := make(chan struct{})
	go func() {
		s.Refresh()
		close(done)
	}()

	require.Eventually(t, func() bool { return re.callCount() == 1 }, time.Second, time.Millisecond)

	s.Refresh() // in-flight cycle: skipped, must not block
	assert.Equal(t, 1, re.callCount())

	close(block)
	<-done
}

func TestStoreLoadErrorCountsAsFailure(t *testing.T) {
	re := &fakeRefresher{}
	s := newTestScheduler(re, &fakeStore{loadErr: errors.New("read fund file: corrupt")}, &fakeNotifier{})

	s.Refresh()
	assert.Zero(t, re.callCount())
	assert.Equal(t, 1, s.Status().ConsecutiveErrors)
	assert.Contains(t, s.Status().LastError, "corrupt")
}
