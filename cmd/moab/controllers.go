package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/isabella232/moabian/internal/control"
	"github.com/isabella232/moabian/internal/display"
	"github.com/spf13/cobra"
)

func (c *cli) newControllersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "controllers",
		Short: "list available controllers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tICON\tTEXT\tPORT")

			for _, s := range control.Specs() {
				port := "-"
				if s.Port != 0 {
					port = fmt.Sprint(s.Port)
				}
				text := s.Text.String()
				if text == "" {
					text = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, display.Glyph(s.Icon), text, port)
			}

			return w.Flush()
		},
	}
}
