package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/isabella232/moabian/internal/app"
	"github.com/spf13/cobra"
)

func (c *cli) newTuneCmd() *cobra.Command {
	var (
		grid  app.TuneGrid
		ticks int
	)

	cmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search PID gains on the simulated plate",
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

			res, err := app.TunePID(cmd.Context(), cfg, grid, ticks, logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "candidates\t%d\n", res.Candidates)
			fmt.Fprintf(w, "kp\t%g\n", res.Gains.Kp)
			fmt.Fprintf(w, "ki\t%g\n", res.Gains.Ki)
			fmt.Fprintf(w, "kd\t%g\n", res.Gains.Kd)
			fmt.Fprintf(w, "score\t%.5f\n", res.Score)
			return w.Flush()
		},
	}
	f := cmd.Flags()
	f.Float64SliceVar(&grid.Kp, "kp", []float64{50, 75, 100}, "proportional gains to try")
	f.Float64SliceVar(&grid.Ki, "ki", []float64{0, 0.5}, "integral gains to try")
	f.Float64SliceVar(&grid.Kd, "kd", []float64{30, 45, 60}, "derivative gains to try")
	f.IntVar(&ticks, "tune-ticks", 300, "ticks simulated per candidate")
	return cmd
}
