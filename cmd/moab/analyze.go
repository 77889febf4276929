package main

import (
	"errors"
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/isabella232/moabian/internal/analysis"
	"github.com/isabella232/moabian/internal/physics"
	"github.com/isabella232/moabian/internal/storage"
	"github.com/spf13/cobra"
)

func (c *cli) newAnalyzeCmd() *cobra.Command {
	var (
		band float64
		path bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [logfile]",
		Short: "report settling, oscillation and error figures for a session log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := storage.Load(args[0])
			if err != nil {
				return err
			}
			if len(records) < 2 {
				return fmt.Errorf("need at least 2 records, got %d", len(records))
			}
			return c.analyze(records, band, path)
		},
	}
	cmd.Flags().Float64Var(&band, "band", 0.01, "settling band around the centre in metres")
	cmd.Flags().BoolVar(&path, "path", false, "draw the ball path")
	return cmd
}

func (c *cli) analyze(records []storage.Record, band float64, drawPath bool) error {
	n := len(records)
	span := (records[n-1].Elapsed - records[0].Elapsed).Seconds()
	if span <= 0 {
		return fmt.Errorf("log spans no time")
	}
	dt := span / float64(n-1)
	rate := 1 / dt

	xs := make([]float64, n)
	ys := make([]float64, n)
	dist := make([]float64, n)
	points := make([]analysis.Point, 0, n)
	for i, r := range records {
		xs[i], ys[i] = r.State.BallX, r.State.BallY
		dist[i] = math.Hypot(r.State.BallX, r.State.BallY)
		if r.State.Detected {
			points = append(points, analysis.Point{X: r.State.BallX, Y: r.State.BallY})
		}
	}

	w := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ticks\t%d\n", n)
	fmt.Fprintf(w, "rate\t%.1f Hz\n", rate)
	fmt.Fprintf(w, "rms distance\t%.4f m\n", analysis.RMS(dist))

	peak, at := analysis.Peak(dist)
	fmt.Fprintf(w, "peak distance\t%.4f m at tick %d\n", peak, records[at].Tick)

	if t, ok := analysis.SettlingTime(dist, dt, band); ok {
		fmt.Fprintf(w, "settling time\t%.2f s\n", t)
	} else {
		fmt.Fprintf(w, "settling time\tnot settled\n")
	}

	for _, axis := range []struct {
		name    string
		samples []float64
	}{{"x", xs}, {"y", ys}} {
		hz, err := analysis.DominantFrequency(axis.samples, rate)
		switch {
		case errors.Is(err, analysis.ErrTooShort):
			fmt.Fprintf(w, "oscillation %s\t-\n", axis.name)
		case err != nil:
			return err
		default:
			fmt.Fprintf(w, "oscillation %s\t%.2f Hz\n", axis.name, hz)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if drawPath {
		fmt.Fprintln(c.stdout)
		fmt.Fprint(c.stdout, analysis.PathToASCII(points, physics.NewBallOnPlate().Radius, 41, 21))
	}
	return nil
}
