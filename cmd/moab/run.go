package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/isabella232/moabian/internal/app"
	"github.com/isabella232/moabian/internal/config"
	"github.com/isabella232/moabian/internal/control"
	"github.com/isabella232/moabian/internal/display"
	"github.com/isabella232/moabian/internal/logging"
	"github.com/isabella232/moabian/internal/loop"
	"github.com/isabella232/moabian/internal/menu"
	"github.com/isabella232/moabian/internal/metrics"
	"github.com/isabella232/moabian/internal/physics"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func controllerNames() []string {
	return control.Names()
}

// resolveConfig layers flags over MOAB_* variables over the config file over
// defaults.
func (c *cli) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := c.v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", app.ErrConfig, err)
		}
		cfg = loaded
	}
	if name := c.v.GetString("preset"); name != "" {
		if !cfg.ApplyPreset(name) {
			return nil, fmt.Errorf("%w: unknown preset %q (available: %v)", app.ErrConfig, name, config.ListPresets())
		}
	}

	c.overlay(cfg)

	if cfg.Debug && !c.v.IsSet("log-level") {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// overlay copies every key set by a flag or environment variable into cfg.
func (c *cli) overlay(cfg *config.Config) {
	v := c.v
	if v.IsSet("controller") {
		cfg.Controller = v.GetString("controller")
	}
	if v.IsSet("debug") {
		cfg.Debug = v.GetBool("debug")
	}
	if v.IsSet("frequency") {
		cfg.Frequency = v.GetInt("frequency")
	}
	if v.IsSet("enable_logging") {
		cfg.EnableLogging = v.GetBool("enable_logging")
	}
	if v.IsSet("logfile") {
		cfg.LogFile = v.GetString("logfile")
	}
	if v.IsSet("use_plate_angles") {
		cfg.UsePlateAngles = v.GetBool("use_plate_angles")
	}
	if v.IsSet("endpoint") {
		cfg.Inference.Endpoint = v.GetString("endpoint")
	}
	if v.IsSet("ticks") {
		cfg.Ticks = v.GetInt("ticks")
	}
	if v.IsSet("metrics-addr") {
		cfg.MetricsAddr = v.GetString("metrics-addr")
	}
	if v.IsSet("log-level") {
		cfg.LogLevel = v.GetString("log-level")
	}
}

func (c *cli) logger(cfg *config.Config) (zerolog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("%w: %w", app.ErrConfig, err)
	}
	return logging.New(c.stderr, level, !c.v.GetBool("log-json")), nil
}

func (c *cli) runSession(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := c.logger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	indicator := display.New(c.stdout)
	var extra []loop.Observer
	if c.v.GetBool("live") {
		lv := display.NewLiveView(c.stdout, physics.NewBallOnPlate().Radius, 15)
		indicator = display.New(io.Discard)
		lv.Start()
		defer lv.Stop()
		extra = append(extra, lv)
	}

	collector := metrics.NewCollector()
	session, err := app.NewSession(cfg, app.SimOpener(cfg, indicator, logger), collector, logger, extra...)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := collector.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server failed")
			}
		}()
	}

	logger.Info().
		Str("controller", cfg.Controller).
		Int("frequency", cfg.Frequency).
		Bool("logging", cfg.EnableLogging).
		Int("ticks", cfg.Ticks).
		Msg("starting")

	if err := session.Run(ctx); err != nil {
		return err
	}
	logger.Info().Msg("stopped")
	return nil
}

func (c *cli) newMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "pick a controller interactively, then run it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd)
			if err != nil {
				return err
			}
			chosen, err := menu.Run(cfg)
			if err != nil || !chosen {
				return err
			}
			return c.runSession(cmd, cfg)
		},
	}
}
