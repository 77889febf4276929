// Package automation runs scripted batches of simulated sessions.
package automation

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math/rand"
	"os"
	"time"

	"github.com/isabella232/moabian/internal/app"
	"github.com/isabella232/moabian/internal/config"
	"github.com/isabella232/moabian/internal/plant"
	"github.com/isabella232/moabian/internal/sim"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyScenario = errors.New("scenario has no steps")
	ErrIncompleteLog = errors.New("session log incomplete")
)

// Scenario defines a scripted sequence of sessions
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the base configuration for one session. Unset
// fields keep the base value.
type ScenarioStep struct {
	Controller string             `yaml:"controller"`
	Preset     string             `yaml:"preset"`
	Ticks      int                `yaml:"ticks"`
	InitialX   *float64           `yaml:"initial_x"`
	InitialY   *float64           `yaml:"initial_y"`
	PID        *config.PIDConfig  `yaml:"pid"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

type StepResult struct {
	Step       int
	Controller string
	Ticks      int
	LostTicks  int
	Logged     int64
	Metrics    map[string]float64
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyScenario)
	}
	return &scenario, nil
}

// apply returns a copy of base with the step's overrides.
func (s ScenarioStep) apply(base *config.Config) (*config.Config, error) {
	cfg := *base
	if s.Controller != "" {
		cfg.Controller = s.Controller
	}
	if s.Preset != "" && !cfg.ApplyPreset(s.Preset) {
		return nil, fmt.Errorf("%w: unknown preset %q", app.ErrConfig, s.Preset)
	}
	if s.Ticks > 0 {
		cfg.Ticks = s.Ticks
	}
	if s.InitialX != nil {
		cfg.Plate.InitialX = *s.InitialX
	}
	if s.InitialY != nil {
		cfg.Plate.InitialY = *s.InitialY
	}
	if s.PID != nil {
		cfg.PID = *s.PID
	}
	if len(s.Params) > 0 {
		cfg.Physics = maps.Clone(base.Physics)
		if cfg.Physics == nil {
			cfg.Physics = make(map[string]float64, len(s.Params))
		}
		maps.Copy(cfg.Physics, s.Params)
	}
	// Steps run unpaced, so a saved log must keep every row.
	cfg.EnableLogging = s.SaveAs != ""
	cfg.LogBlocking = cfg.EnableLogging
	if cfg.EnableLogging {
		cfg.LogFile = s.SaveAs
	}
	if cfg.Ticks <= 0 {
		return nil, fmt.Errorf("%w: scripted sessions need a tick limit", app.ErrConfig)
	}
	return &cfg, nil
}

// RunScenario executes all steps in order on the unpaced simulator and
// stops at the first failure.
func RunScenario(ctx context.Context, base *config.Config, scenario *Scenario, logger zerolog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.apply(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info().
			Int("step", i+1).
			Int("of", len(scenario.Steps)).
			Str("controller", cfg.Controller).
			Msg("running step")

		res, err := runOnce(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		res.Step = i + 1
		results = append(results, res)
	}

	return results, nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Trials int
	Spread float64 // metres either side of the centre on each axis
	Ticks  int
	Seed   int64
}

// MonteCarloResult holds the outcome of one trial
type MonteCarloResult struct {
	Trial    int
	InitialX float64
	InitialY float64
	Held     bool // ball never left the plate
	Metrics  map[string]float64
}

// RunMonteCarlo runs the base configuration from random starting positions.
func RunMonteCarlo(ctx context.Context, base *config.Config, mc MonteCarloConfig, logger zerolog.Logger) ([]MonteCarloResult, error) {
	if mc.Trials <= 0 || mc.Ticks <= 0 || mc.Spread < 0 {
		return nil, fmt.Errorf("%w: monte carlo needs positive trials and ticks and a non-negative spread", app.ErrConfig)
	}

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, mc.Trials)
	for trial := 0; trial < mc.Trials; trial++ {
		cfg := *base
		cfg.EnableLogging = false
		cfg.Ticks = mc.Ticks
		cfg.Plate.InitialX = (rng.Float64() - 0.5) * 2 * mc.Spread
		cfg.Plate.InitialY = (rng.Float64() - 0.5) * 2 * mc.Spread

		res, err := runOnce(ctx, &cfg)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		results = append(results, MonteCarloResult{
			Trial:    trial,
			InitialX: cfg.Plate.InitialX,
			InitialY: cfg.Plate.InitialY,
			Held:     res.LostTicks == 0,
			Metrics:  res.Metrics,
		})

		if (trial+1)%10 == 0 {
			logger.Info().Int("done", trial+1).Int("trials", mc.Trials).Msg("monte carlo progress")
		}
	}

	return results, nil
}

// MonteCarloStats counts trials that kept and dropped the ball.
func MonteCarloStats(results []MonteCarloResult) (held int, dropped int) {
	for _, r := range results {
		if r.Held {
			held++
		} else {
			dropped++
		}
	}
	return
}

type lostCounter struct{ n int }

func (l *lostCounter) Observe(tick int, s plant.State, a plant.Action) {
	if !s.Detected {
		l.n++
	}
}

func runOnce(ctx context.Context, cfg *config.Config) (StepResult, error) {
	simCfg := app.SimConfig(cfg)
	simCfg.Unpaced = true

	lost := &lostCounter{}
	nop := zerolog.Nop()
	session, err := app.NewSession(cfg, sim.Opener(simCfg, nil, nop), nil, nop, lost)
	if err != nil {
		return StepResult{}, err
	}
	if err := session.Run(ctx); err != nil {
		return StepResult{}, err
	}
	res := StepResult{
		Controller: session.Spec().Name,
		Ticks:      session.Scheduler().Ticks(),
		LostTicks:  lost.n,
		Metrics:    session.Summary(),
	}

	if log, ok := session.LogReport(); ok {
		res.Logged = log.Written
		if log.Err != nil {
			return res, log.Err
		}
		if log.Dropped > 0 || log.Written < int64(res.Ticks) {
			return res, fmt.Errorf("%w: %s kept %d of %d ticks", ErrIncompleteLog, log.Path, log.Written, res.Ticks)
		}
	}
	return res, nil
}
