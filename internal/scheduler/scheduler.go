// Package scheduler owns the refresh control loop: a periodic tick
// gated by trading hours, short-fuse retries after failed cycles, and
// a consecutive-failure circuit that surfaces one terminal error
// instead of per-tick spam.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"FundEye/internal/market"
	"FundEye/internal/model"
	"FundEye/internal/notifier"
	"FundEye/internal/refresh"
	"FundEye/internal/store"
)

// Refresher runs one refresh cycle. Satisfied by *refresh.Orchestrator.
type Refresher interface {
	Refresh(ctx context.Context, trigger string, funds []model.Fund) ([]model.Fund, error)
}

// Config controls cycle timing and the failure circuit.
type Config struct {
	Interval   time.Duration // periodic tick, default 60s
	MaxRetries int           // consecutive failures before the terminal error, default 3
	RetryDelay time.Duration // one-shot retry delay after a failed cycle, default 2s
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	return c
}

// Status is a read-only snapshot of the scheduler's state.
type Status struct {
	IsRunning         bool
	LastUpdateTime    time.Time
	LastError         string
	ConsecutiveErrors int
}

// Scheduler drives the refresh pipeline. Overlapping cycles are
// serialized by skipping: a tick arriving while a cycle is in flight
// is dropped.
type Scheduler struct {
	cfg       Config
	refresher Refresher
	store     store.Store
	notifier  notifier.Notifier
	log       zerolog.Logger
	ctx       context.Context

	cron    *cron.Cron
	entryID cron.EntryID

	busy atomic.Bool

	mu         sync.Mutex
	running    bool
	status     Status
	retryTimer *time.Timer

	// replaced in tests
	gate func(time.Time) bool
	now  func() time.Time
}

// NewScheduler creates a stopped scheduler. ctx bounds in-flight
// provider calls; cancelling it does not replace Stop.
func NewScheduler(ctx context.Context, cfg Config, re Refresher, st store.Store, n notifier.Notifier, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cfg:       cfg.withDefaults(),
		refresher: re,
		store:     st,
		notifier:  n,
		log:       log.With().Str("component", "scheduler").Logger(),
		ctx:       ctx,
		cron:      cron.New(cron.WithSeconds()),
		gate:      market.IsOpen,
		now:       time.Now,
	}
}

// Start moves Stopped->Running: one immediate gated cycle, then a
// fixed-period tick. Starting a running scheduler is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.status.IsRunning = true
	s.mu.Unlock()

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.cfg.Interval), func() {
		s.runCycle(refresh.TriggerScheduled, true)
	})
	if err != nil {
		s.mu.Lock()
		s.running = false
		s.status.IsRunning = false
		s.mu.Unlock()
		return fmt.Errorf("register refresh tick: %w", err)
	}
	s.entryID = id
	s.cron.Start()

	go s.runCycle(refresh.TriggerScheduled, true)

	s.log.Info().Dur("interval", s.cfg.Interval).Msg("scheduler started")
	return nil
}

// Stop moves Running->Stopped, cancelling the periodic tick and any
// pending one-shot retry. An in-flight cycle is left to complete.
// Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.status.IsRunning = false
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	s.mu.Unlock()

	s.cron.Remove(s.entryID)
	s.cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// Refresh runs one ungated cycle synchronously. It does not touch the
// periodic timer or the running state.
func (s *Scheduler) Refresh() {
	s.runCycle(refresh.TriggerManual, false)
}

// Status returns a snapshot of the scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Scheduler) runCycle(trigger string, gated bool) {
	if gated && !s.gate(s.now()) {
		s.log.Debug().Msg("market closed, cycle skipped")
		return
	}

	if !s.busy.CompareAndSwap(false, true) {
		s.log.Debug().Str("trigger", trigger).Msg("cycle in flight, tick skipped")
		return
	}
	defer s.busy.Store(false)

	funds, err := s.store.Load()
	if err == nil {
		var updated []model.Fund
		updated, err = s.refresher.Refresh(s.ctx, trigger, funds)
		if err == nil {
			s.onSuccess(updated)
			return
		}
	}
	s.onFailure(trigger, err)
}

func (s *Scheduler) onSuccess(funds []model.Fund) {
	s.mu.Lock()
	s.status.ConsecutiveErrors = 0
	s.status.LastError = ""
	s.status.LastUpdateTime = s.now()
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	s.mu.Unlock()

	s.notifier.ValuationUpdated(funds)
}

func (s *Scheduler) onFailure(trigger string, err error) {
	s.mu.Lock()
	s.status.ConsecutiveErrors++
	s.status.LastError = err.Error()
	n := s.status.ConsecutiveErrors
	running := s.running
	s.mu.Unlock()

	s.log.Error().Str("trigger", trigger).Int("consecutive", n).Err(err).Msg("refresh cycle failed")

	switch {
	case n < s.cfg.MaxRetries && running:
		s.armRetry()
	case n == s.cfg.MaxRetries:
		// Exactly one terminal notification; the periodic tick keeps
		// firing independently.
		s.notifier.Error(fmt.Sprintf("刷新连续失败 %d 次: %v", n, err))
	}
}

func (s *Scheduler) armRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	if s.retryTimer != nil {
		s.retryTimer.Stop()
	}
	s.retryTimer = time.AfterFunc(s.cfg.RetryDelay, func() {
		s.runCycle(refresh.TriggerRetry, false)
	})
}
