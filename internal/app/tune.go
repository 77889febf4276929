package app

import (
	"context"
	"fmt"

	"github.com/isabella232/moabian/internal/config"
	"github.com/isabella232/moabian/internal/optim"
	"github.com/isabella232/moabian/internal/physics"
	"github.com/isabella232/moabian/internal/sim"
	"github.com/rs/zerolog"
)

// TuneGrid lists the PID gains to try.
type TuneGrid struct {
	Kp []float64
	Ki []float64
	Kd []float64
}

type TuneResult struct {
	Gains      config.PIDConfig
	Score      float64
	Candidates int
}

// TunePID runs an unpaced simulated session of ticks ticks for every gain
// combination and returns the one with the lowest score. The score is the
// RMS tracking error plus a plate radius for every tick the ball spent off
// target.
func TunePID(ctx context.Context, base *config.Config, grid TuneGrid, ticks int, logger zerolog.Logger) (TuneResult, error) {
	if ticks <= 0 {
		return TuneResult{}, fmt.Errorf("%w: tuning needs a positive tick count, got %d", ErrConfig, ticks)
	}
	search, err := optim.NewGridSearch(
		[]string{"kp", "ki", "kd"},
		[][]float64{grid.Kp, grid.Ki, grid.Kd},
	)
	if err != nil {
		return TuneResult{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	radius := physics.NewBallOnPlate().Radius
	eval := func(ctx context.Context, p map[string]float64) (float64, error) {
		cfg := *base
		cfg.Controller = "pid"
		cfg.EnableLogging = false
		cfg.Ticks = ticks
		cfg.PID = config.PIDConfig{Kp: p["kp"], Ki: p["ki"], Kd: p["kd"]}

		simCfg := SimConfig(&cfg)
		simCfg.Unpaced = true

		session, err := NewSession(&cfg, sim.Opener(simCfg, nil, zerolog.Nop()), nil, zerolog.Nop())
		if err != nil {
			return 0, err
		}
		if err := session.Run(ctx); err != nil {
			return 0, err
		}

		summary := session.Summary()
		score := summary["tracking_rms"] + (1-summary["stability"])*radius
		logger.Debug().Float64("kp", p["kp"]).Float64("ki", p["ki"]).Float64("kd", p["kd"]).Float64("score", score).Msg("candidate")
		return score, nil
	}

	best, score, err := search.Search(ctx, eval)
	if err != nil {
		return TuneResult{}, err
	}
	return TuneResult{
		Gains:      config.PIDConfig{Kp: best["kp"], Ki: best["ki"], Kd: best["kd"]},
		Score:      score,
		Candidates: search.Size(),
	}, nil
}
