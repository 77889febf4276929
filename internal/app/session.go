// Package app assembles a control session from configuration: it validates
// the settings, builds the strategy from the registry, optionally wraps it
// in the logging decorator and hands it to the loop scheduler. Nothing in
// the plant is touched until Run.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/isabella232/moabian/internal/config"
	"github.com/isabella232/moabian/internal/control"
	"github.com/isabella232/moabian/internal/display"
	"github.com/isabella232/moabian/internal/loop"
	"github.com/isabella232/moabian/internal/metrics"
	"github.com/isabella232/moabian/internal/physics"
	"github.com/isabella232/moabian/internal/plant"
	"github.com/isabella232/moabian/internal/sim"
	"github.com/isabella232/moabian/internal/storage"
	"github.com/rs/zerolog"
)

// ErrConfig marks failures detected before the session starts.
var ErrConfig = errors.New("configuration error")

type Session struct {
	cfg       *config.Config
	spec      control.Spec
	strategy  control.Strategy
	sink      *storage.CSVLog
	sinkErr   error
	observers []metrics.Observer
	sched     *loop.Scheduler
	logger    zerolog.Logger
}

// StrategyOptions maps the configuration onto the registry's option set.
func StrategyOptions(cfg *config.Config, logger zerolog.Logger) control.Options {
	opts := control.DefaultOptions()
	opts.Frequency = cfg.Frequency
	opts.MaxAngle = cfg.Plate.MaxAngle
	opts.PID = control.PIDGains{Kp: cfg.PID.Kp, Ki: cfg.PID.Ki, Kd: cfg.PID.Kd}
	opts.Endpoint = cfg.Inference.Endpoint
	opts.Timeout = cfg.Inference.Timeout
	opts.JoystickDevice = cfg.Joystick.Device
	opts.JoystickMaxAngle = cfg.Joystick.MaxAngle
	opts.Logger = logger
	return opts
}

func SimConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Frequency:      cfg.Frequency,
		Debug:          cfg.Debug,
		UsePlateAngles: cfg.UsePlateAngles,
		MaxAngle:       cfg.Plate.MaxAngle,
		InitialX:       cfg.Plate.InitialX,
		InitialY:       cfg.Plate.InitialY,
		Substeps:       sim.DefaultSubsteps,
		Params:         cfg.Physics,
	}
}

// SimOpener opens the simulated plate described by cfg.
func SimOpener(cfg *config.Config, indicator *display.Indicator, logger zerolog.Logger) plant.Opener {
	return sim.Opener(SimConfig(cfg), indicator, logger)
}

// NewSession validates cfg and builds the strategy. All failures are
// configuration errors wrapped with ErrConfig; open is not called.
func NewSession(cfg *config.Config, open plant.Opener, collector *metrics.Collector, logger zerolog.Logger, extra ...loop.Observer) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	strategy, spec, err := control.New(cfg.Controller, StrategyOptions(cfg, logger))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	// Validate has already checked the physics params.
	model, err := physics.Configure(cfg.Physics)
	if err != nil {
		control.Close(strategy)
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	s := &Session{
		cfg:       cfg,
		spec:      spec,
		strategy:  strategy,
		observers: metrics.DefaultObservers(model.Radius),
		logger:    logger.With().Str("controller", spec.Name).Logger(),
	}

	if cfg.EnableLogging {
		var opts []storage.Option
		if cfg.LogBlocking {
			opts = append(opts, storage.Blocking())
		}
		sink, err := storage.OpenCSVLog(cfg.LogFile, cfg.LogBuffer, logger, opts...)
		if err != nil {
			control.Close(strategy)
			return nil, fmt.Errorf("%w: logfile: %w", ErrConfig, err)
		}
		s.sink = sink
		s.strategy = control.WithLogging(strategy, sink)
	}

	observers := make([]loop.Observer, 0, len(s.observers)+len(extra))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	observers = append(observers, extra...)

	s.sched = loop.New(open, s.strategy, loop.Config{
		Name:      spec.Name,
		Icon:      spec.Icon,
		Text:      spec.Text,
		MaxTicks:  cfg.Ticks,
		Observers: observers,
		Metrics:   collector,
		Logger:    logger,
	})
	return s, nil
}

func (s *Session) Spec() control.Spec {
	return s.spec
}

func (s *Session) Scheduler() *loop.Scheduler {
	return s.sched
}

// Summary returns the session observers' values.
func (s *Session) Summary() map[string]float64 {
	return metrics.Summary(s.observers)
}

// Run drives the session to completion and releases the strategy and log.
// A failure to release the strategy is reported only if the loop itself
// succeeded. Log failures are logged and kept for LogReport; they never
// fail the session.
func (s *Session) Run(ctx context.Context) error {
	err := s.sched.Run(ctx)
	if cerr := control.Close(s.strategy); cerr != nil {
		s.logger.Error().Err(cerr).Msg("release failed")
		if err == nil {
			err = cerr
		}
	}
	if s.sink != nil {
		if serr := s.sink.Close(); serr != nil {
			s.sinkErr = serr
			s.logger.Error().Err(serr).Msg("session log incomplete")
		}
	}
	ev := s.logger.Info().Int("ticks", s.sched.Ticks())
	for name, v := range s.Summary() {
		ev = ev.Float64(name, v)
	}
	ev.Msg("session summary")

	if s.sink != nil {
		st := s.sink.Stats()
		s.logger.Info().
			Str("logfile", s.sink.Path()).
			Int64("written", st.Written).
			Int64("dropped", st.Dropped).
			Int64("failed", st.Failed).
			Msg("session log closed")
	}
	return err
}

// LogReport describes the session log after Run.
type LogReport struct {
	Path string
	storage.Stats
	Err error // first write or encoding failure
}

// LogReport returns false when logging is off.
func (s *Session) LogReport() (LogReport, bool) {
	if s.sink == nil {
		return LogReport{}, false
	}
	return LogReport{Path: s.sink.Path(), Stats: s.sink.Stats(), Err: s.sinkErr}, true
}

// Close releases the strategy and log of a session that will not be run.
func (s *Session) Close() error {
	err := control.Close(s.strategy)
	if s.sink != nil {
		err = errors.Join(err, s.sink.Close())
	}
	return err
}
