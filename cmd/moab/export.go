package main

import (
	"fmt"
	"os"

	"github.com/isabella232/moabian/internal/metrics"
	"github.com/isabella232/moabian/internal/physics"
	"github.com/isabella232/moabian/internal/storage"
	"github.com/spf13/cobra"
)

func (c *cli) newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [logfile]",
		Short: "convert a session log to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := storage.Load(args[0])
			if err != nil {
				return err
			}

			obs := metrics.DefaultObservers(physics.NewBallOnPlate().Radius)
			for _, r := range records {
				for _, o := range obs {
					o.Observe(r.Tick, r.State, r.Action)
				}
			}
			summary := metrics.Summary(obs)

			if output == "" || output == "-" {
				return storage.ExportJSON(c.stdout, records, summary)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := storage.ExportJSON(f, records, summary); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "exported %d ticks to %s\n", len(records), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
