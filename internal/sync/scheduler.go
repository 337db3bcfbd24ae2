package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type State string

const (
	StateIdle      State = "idle"
	StateScheduled State = "scheduled"
	StateRunning   State = "running"
)

// Status is a point-in-time snapshot for the sync status endpoint.
type Status struct {
	State     State     `json:"state"`
	LastRun   time.Time `json:"lastRun"`
	LastError string    `json:"lastError,omitempty"`
}

type cycleRunner interface {
	RunCycle(ctx context.Context) error
}

var errOffline = errors.New("offline")

// Scheduler drives periodic sync cycles with retry and an explicit
// connectivity gate. Being offline is a normal condition, not a failure: an
// offline tick is skipped without touching the retry budget or last-error.
type Scheduler struct {
	runner     cycleRunner
	period     time.Duration
	minBackoff time.Duration
	maxRetries uint64
	online     func() bool
	log        *slog.Logger

	trigger chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	state   State
	lastRun time.Time
	lastErr error
}

func NewScheduler(runner cycleRunner, period, minBackoff time.Duration, maxRetries uint64, online func() bool, log *slog.Logger) *Scheduler {
	if online == nil {
		online = func() bool { return true }
	}

	return &Scheduler{
		runner:     runner,
		period:     period,
		minBackoff: minBackoff,
		maxRetries: maxRetries,
		online:     online,
		log:        log,
		// One slot: a trigger during a running cycle means "run once more
		// afterwards", never a queue.
		trigger: make(chan struct{}, 1),
		state:   StateIdle,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.setState(StateScheduled)

	s.wg.Add(1)

	go s.loop(ctx)
}

// Stop deschedules future cycles and abandons any retry in progress. An
// in-flight push finishes on its own; re-sending it later is harmless since
// pushes overwrite by ID.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}

	s.wg.Wait()
	s.setState(StateIdle)
}

// TriggerNow requests an immediate cycle. Requests collapse into the single
// buffered slot, so hammering the endpoint cannot pile up cycles.
func (s *Scheduler) TriggerNow() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{State: s.state, LastRun: s.lastRun}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}

	return st
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		case <-s.trigger:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if !s.online() {
		s.log.Debug("skipping sync cycle, offline")

		return
	}

	s.setState(StateRunning)
	defer s.setState(StateScheduled)

	policy := backoff.WithContext(
		backoff.WithMaxRetries(s.newBackoff(), s.maxRetries), ctx)

	err := backoff.Retry(func() error {
		if !s.online() {
			// Connectivity dropped mid-run; stop retrying without
			// burning the budget.
			return backoff.Permanent(errOffline)
		}

		return s.runner.RunCycle(ctx)
	}, policy)

	s.mu.Lock()
	s.lastRun = time.Now()

	if errors.Is(err, errOffline) || errors.Is(err, context.Canceled) {
		err = nil
	}

	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.log.Error("sync cycle failed, waiting for next slot", "error", err)
	}
}

func (s *Scheduler) newBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.minBackoff

	return bo
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
