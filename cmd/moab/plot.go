package main

import (
	"fmt"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/isabella232/moabian/internal/storage"
	"github.com/spf13/cobra"
)

func (c *cli) newPlotCmd() *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "plot [logfile]",
		Short: "plot ball position and actions from a session log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := storage.Load(args[0])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no data to plot")
			}
			return c.plot(records, width, height)
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 10, "plot height")
	return cmd
}

func (c *cli) plot(records []storage.Record, width, height int) error {
	n := len(records)
	ballX := make([]float64, n)
	ballY := make([]float64, n)
	pitch := make([]float64, n)
	roll := make([]float64, n)
	detected := 0
	for i, r := range records {
		ballX[i] = r.State.BallX
		ballY[i] = r.State.BallY
		pitch[i] = r.Action.Pitch
		roll[i] = r.Action.Roll
		if r.State.Detected {
			detected++
		}
	}

	span := records[n-1].Elapsed - records[0].Elapsed
	fmt.Fprintf(c.stdout, "ticks: %d\n", n)
	fmt.Fprintf(c.stdout, "span: %s\n", span.Round(time.Millisecond))
	fmt.Fprintf(c.stdout, "detected: %.1f%%\n\n", 100*float64(detected)/float64(n))

	graphs := []struct {
		caption string
		series  [][]float64
	}{
		{"ball x, y (m)", [][]float64{ballX, ballY}},
		{"plate pitch, roll (deg)", [][]float64{pitch, roll}},
	}
	for _, g := range graphs {
		graph := asciigraph.PlotMany(g.series,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(g.caption),
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		)
		fmt.Fprintln(c.stdout, graph)
		fmt.Fprintln(c.stdout)
	}
	return nil
}
