// Package loop drives a control session: it acquires the plant, resets it,
// then alternates strategy decisions and plant steps until the session is
// interrupted, reaches its tick limit or fails.
package loop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/isabella232/moabian/internal/control"
	"github.com/isabella232/moabian/internal/metrics"
	"github.com/isabella232/moabian/internal/plant"
	"github.com/rs/zerolog"
)

type Status int32

const (
	StatusUninitialized Status = iota
	StatusRunning
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusRunning:
		return "running"
	case StatusTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Observer sees the state each decision was made on and the resulting
// action, in tick order.
type Observer interface {
	Observe(tick int, s plant.State, a plant.Action)
}

type Config struct {
	// Name labels the session in logs and metrics.
	Name string
	Icon plant.Icon
	Text plant.Text
	// MaxTicks stops the session after that many ticks; zero runs until
	// the context is done.
	MaxTicks  int
	Observers []Observer
	Metrics   *metrics.Collector
	Logger    zerolog.Logger
}

// Scheduler runs one session. It is single use.
type Scheduler struct {
	open     plant.Opener
	strategy control.Strategy
	cfg      Config
	logger   zerolog.Logger

	started atomic.Bool
	status  atomic.Int32
	ticks   atomic.Int64
}

func New(open plant.Opener, strategy control.Strategy, cfg Config) *Scheduler {
	return &Scheduler{
		open:     open,
		strategy: strategy,
		cfg:      cfg,
		logger:   cfg.Logger.With().Str("component", "loop").Str("controller", cfg.Name).Logger(),
	}
}

func (s *Scheduler) Status() Status {
	return Status(s.status.Load())
}

// Ticks is the number of completed ticks.
func (s *Scheduler) Ticks() int {
	return int(s.ticks.Load())
}

// Run executes the session. Cancellation of ctx ends it without error; any
// other failure is returned as a *TickError. The environment, once opened,
// is closed on every path.
func (s *Scheduler) Run(ctx context.Context) (err error) {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}
	defer s.status.Store(int32(StatusTerminated))

	env, err := s.open()
	if err != nil {
		return s.fail(0, StageOpen, err)
	}
	defer func() {
		if cerr := env.Close(); cerr != nil {
			s.logger.Error().Err(cerr).Msg("environment close failed")
			if err == nil {
				err = s.fail(s.Ticks(), StageClose, cerr)
			}
		}
		s.logEnd(err)
	}()

	state, err := env.Reset(ctx, s.cfg.Icon, s.cfg.Text)
	if err != nil {
		if interrupted(ctx, StageReset, err) {
			return nil
		}
		return s.fail(0, StageReset, err)
	}
	s.status.Store(int32(StatusRunning))
	s.cfg.Metrics.SessionStarted(s.cfg.Name)
	defer s.cfg.Metrics.SessionEnded(s.cfg.Name)
	s.logger.Info().Int("max_ticks", s.cfg.MaxTicks).Msg("session started")

	for tick := 1; ; tick++ {
		if ctx.Err() != nil {
			return nil
		}
		if s.cfg.MaxTicks > 0 && tick > s.cfg.MaxTicks {
			return nil
		}

		start := time.Now()
		action, _, err := s.decide(ctx, state)
		if err != nil {
			if interrupted(ctx, StageStrategy, err) {
				return nil
			}
			return s.fail(tick, StageStrategy, err)
		}
		decided := time.Now()

		for _, o := range s.cfg.Observers {
			o.Observe(tick, state, action)
		}

		next, err := env.Step(ctx, action)
		if err != nil {
			if interrupted(ctx, StageStep, err) {
				return nil
			}
			return s.fail(tick, StageStep, err)
		}
		state = next
		s.ticks.Store(int64(tick))
		s.cfg.Metrics.Tick(decided.Sub(start), time.Since(decided), math.Hypot(state.BallX, state.BallY))
	}
}

func (s *Scheduler) decide(ctx context.Context, st plant.State) (a plant.Action, info plant.Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrStrategyPanic, r)
		}
	}()
	return s.strategy.Compute(ctx, st)
}

func (s *Scheduler) fail(tick int, stage Stage, err error) error {
	s.cfg.Metrics.TickError(string(stage))
	return &TickError{Tick: tick, Stage: stage, Err: err}
}

func (s *Scheduler) logEnd(err error) {
	ev := s.logger.Info()
	if err != nil {
		ev = s.logger.Error().Err(err)
	}
	ev.Int("ticks", s.Ticks()).Msg("session ended")
}

// interrupted reports whether err is the result of ctx ending rather than a
// fault. Only the environment's pacing refusal counts as reaching the
// deadline early; timeouts inside a stage are failures.
func interrupted(ctx context.Context, stage Stage, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return stage == StageStep && errors.Is(err, plant.ErrPacingDeadline)
}
