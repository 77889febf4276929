// Package sim provides a simulated Moab plate that satisfies
// plant.Environment. Step is paced by a token-bucket limiter at the
// configured frequency, so the control loop runs at the same rate it would
// against the hardware.
package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/isabella232/moabian/internal/display"
	"github.com/isabella232/moabian/internal/dynamo"
	"github.com/isabella232/moabian/internal/integrators"
	"github.com/isabella232/moabian/internal/physics"
	"github.com/isabella232/moabian/internal/plant"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxAngle = 22.0
	DefaultSubsteps = 4
)

type Config struct {
	Frequency      int
	Debug          bool
	UsePlateAngles bool
	MaxAngle       float64 // degrees
	InitialX       float64 // metres
	InitialY       float64
	Substeps       int
	// Params overrides physics.BallOnPlate parameters by name.
	Params map[string]float64
	// Unpaced runs steps as fast as they are called. Offline tuning only.
	Unpaced bool
}

func DefaultConfig() Config {
	return Config{
		Frequency: 30,
		MaxAngle:  DefaultMaxAngle,
		InitialX:  0.05,
		InitialY:  -0.03,
		Substeps:  DefaultSubsteps,
	}
}

// Env is a simulated plate. It is owned by a single loop and is not safe
// for concurrent use.
type Env struct {
	cfg       Config
	dt        float64
	model     *physics.BallOnPlate
	integ     *integrators.RK4
	limiter   *rate.Limiter
	indicator *display.Indicator
	logger    zerolog.Logger

	x        dynamo.State
	t        float64
	sumX     float64
	sumY     float64
	detected bool
	ready    bool
	closed   bool
}

func New(cfg Config, indicator *display.Indicator, logger zerolog.Logger) (*Env, error) {
	if cfg.Frequency <= 0 {
		return nil, fmt.Errorf("frequency must be positive, got %d", cfg.Frequency)
	}
	if cfg.MaxAngle <= 0 {
		cfg.MaxAngle = DefaultMaxAngle
	}
	if cfg.Substeps <= 0 {
		cfg.Substeps = DefaultSubsteps
	}

	model, err := physics.Configure(cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	if cfg.UsePlateAngles {
		model.ServoTau = 0
	}

	return &Env{
		cfg:       cfg,
		dt:        1.0 / float64(cfg.Frequency),
		model:     model,
		integ:     integrators.NewRK4(),
		indicator: indicator,
		logger:    logger.With().Str("component", "sim").Logger(),
	}, nil
}

// Opener defers construction until the loop acquires the environment.
func Opener(cfg Config, indicator *display.Indicator, logger zerolog.Logger) plant.Opener {
	return func() (plant.Environment, error) {
		return New(cfg, indicator, logger)
	}
}

func (e *Env) Reset(ctx context.Context, icon plant.Icon, text plant.Text) (plant.State, error) {
	if e.closed {
		return plant.State{}, plant.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return plant.State{}, err
	}

	e.x = dynamo.State{e.cfg.InitialX, e.cfg.InitialY, 0, 0, 0, 0}
	e.t = 0
	e.sumX, e.sumY = 0, 0
	e.detected = e.model.OnPlate(e.x)
	e.limiter = rate.NewLimiter(rate.Limit(e.cfg.Frequency), 1)
	e.ready = true

	if e.indicator != nil {
		if err := e.indicator.Show(icon, text); err != nil {
			e.logger.Warn().Err(err).Msg("indicator update failed")
		}
	}

	e.logger.Info().
		Int("frequency", e.cfg.Frequency).
		Bool("plate_angles", e.cfg.UsePlateAngles).
		Msg("plate reset")

	return e.observe(), nil
}

func (e *Env) Step(ctx context.Context, action plant.Action) (plant.State, error) {
	if e.closed {
		return plant.State{}, plant.ErrClosed
	}
	if !e.ready {
		return plant.State{}, plant.ErrNotReset
	}

	cmd := action.Clip(e.cfg.MaxAngle)
	u := dynamo.Control{radians(cmd.Pitch), radians(cmd.Roll)}
	if e.cfg.UsePlateAngles {
		e.x[physics.IdxPitch] = u[0]
		e.x[physics.IdxRoll] = u[1]
	}

	next := e.integ.Advance(e.model, e.x, u, e.t, e.dt, e.cfg.Substeps)
	if !next.IsValid() {
		return plant.State{}, fmt.Errorf("%w: %v", plant.ErrHardwareFault, dynamo.ErrInvalidState)
	}

	e.detected = e.model.OnPlate(next)
	if !e.detected {
		e.model.HoldAtRim(next)
	} else {
		e.sumX += next[physics.IdxX] * e.dt
		e.sumY += next[physics.IdxY] * e.dt
	}
	e.x = next
	e.t += e.dt

	if e.cfg.Debug {
		e.logger.Debug().
			Float64("pitch", cmd.Pitch).
			Float64("roll", cmd.Roll).
			Float64("x", e.x[physics.IdxX]).
			Float64("y", e.x[physics.IdxY]).
			Bool("detected", e.detected).
			Msg("step")
	}

	if e.cfg.Unpaced {
		if err := ctx.Err(); err != nil {
			return plant.State{}, err
		}
	} else if err := e.limiter.Wait(ctx); err != nil {
		return plant.State{}, pacingError(ctx, err)
	}

	return e.observe(), nil
}

// Close parks the plate and releases the indicator. Calling it twice is
// harmless.
func (e *Env) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.logger.Info().Float64("elapsed", e.t).Msg("plate released")
	if e.indicator != nil {
		return e.indicator.Hover()
	}
	return nil
}

func (e *Env) observe() plant.State {
	return plant.State{
		BallX:      e.x[physics.IdxX],
		BallY:      e.x[physics.IdxY],
		VelX:       e.x[physics.IdxVX],
		VelY:       e.x[physics.IdxVY],
		SumX:       e.sumX,
		SumY:       e.sumY,
		PlatePitch: degrees(e.x[physics.IdxPitch]),
		PlateRoll:  degrees(e.x[physics.IdxRoll]),
		Detected:   e.detected,
		Elapsed:    time.Duration(e.t * float64(time.Second)),
	}
}

// pacingError maps a limiter failure onto the context error. Wait refuses
// early when the next token is past the deadline, before ctx is done.
func pacingError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("%w: %v", plant.ErrPacingDeadline, err)
	}
	return fmt.Errorf("sim: pacing: %w", err)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
