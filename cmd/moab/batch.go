package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/isabella232/moabian/internal/automation"
	"github.com/spf13/cobra"
)

func (c *cli) newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulated sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := c.logger(cfg)
			if err != nil {
				return err
			}
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			results, err := automation.RunScenario(cmd.Context(), cfg, sc, logger)

			w := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tCONTROLLER\tTICKS\tLOST\tTRACKING_RMS\tSTABILITY")
			for _, r := range results {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%.4f\t%.2f\n",
					r.Step, r.Controller, r.Ticks, r.LostTicks,
					r.Metrics["tracking_rms"], r.Metrics["stability"])
			}
			if ferr := w.Flush(); err == nil {
				err = ferr
			}
			return err
		},
	}
}

func (c *cli) newMonteCarloCmd() *cobra.Command {
	var mc automation.MonteCarloConfig

	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run the controller from random starting positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := c.logger(cfg)
			if err != nil {
				return err
			}

			results, err := automation.RunMonteCarlo(cmd.Context(), cfg, mc, logger)
			if err != nil {
				return err
			}
			held, dropped := automation.MonteCarloStats(results)
			fmt.Fprintf(c.stdout, "trials: %d\nheld: %d\ndropped: %d\n", len(results), held, dropped)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&mc.Trials, "trials", 50, "number of trials")
	f.Float64Var(&mc.Spread, "spread", 0.08, "start within this many metres of the centre on each axis")
	f.IntVar(&mc.Ticks, "trial-ticks", 300, "ticks per trial")
	f.Int64Var(&mc.Seed, "seed", 0, "random seed (0 uses the clock)")
	return cmd
}
