package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/isabella232/moabian/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "MOAB"

type cli struct {
	stdout io.Writer
	stderr io.Writer
	v      *viper.Viper
}

// main is the entry point for the moab CLI. With no subcommand it runs the
// selected controller against the plate until interrupted.
func main() {
	root := newCLI(os.Stdout, os.Stderr).rootCmd()
	root.SetArgs(normalizeArgs(os.Args[1:]))
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{stdout: stdout, stderr: stderr, v: viper.New()}
}

func (c *cli) rootCmd() *cobra.Command {
	def := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "moab",
		Short: "ball-on-plate control loop",
		Long: `moab balances a ball on the Moab plate with the selected controller.

Settings come from flags, then MOAB_* environment variables, then the
--config file, then built-in defaults.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd)
			if err != nil {
				return err
			}
			return c.runSession(cmd, cfg)
		},
	}
	rootCmd.SetOut(c.stdout)
	rootCmd.SetErr(c.stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringP("controller", "c", def.Controller, "controller to run ("+strings.Join(controllerNames(), ", ")+")")
	pf.BoolP("debug", "d", def.Debug, "log every plate step")
	pf.IntP("frequency", "f", def.Frequency, "control loop frequency in Hz")
	pf.BoolP("enable_logging", "l", def.EnableLogging, "record every tick to the log file")
	pf.String("logfile", def.LogFile, "CSV file for recorded ticks (-lf)")
	pf.Bool("use_plate_angles", def.UsePlateAngles, "apply commanded plate angles directly (-pa)")
	pf.String("config", "", "config file path (yaml)")
	pf.String("preset", "", "starting ball position preset")
	pf.String("endpoint", def.Inference.Endpoint, "inference server host")
	pf.Int("ticks", def.Ticks, "stop after this many ticks (0 runs until interrupted)")
	pf.String("metrics-addr", def.MetricsAddr, "serve Prometheus metrics on this address")
	pf.String("log-level", def.LogLevel, "log level (debug, info, warn, error)")
	pf.Bool("log-json", false, "write logs as JSON")
	pf.Bool("live", false, "draw the plate while running")

	// Bind flags to viper for environment variable support
	c.v.BindPFlags(pf)
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	rootCmd.AddCommand(
		c.newMenuCmd(),
		c.newControllersCmd(),
		c.newPlotCmd(),
		c.newTuneCmd(),
		c.newAnalyzeCmd(),
		c.newExportCmd(),
		c.newScenarioCmd(),
		c.newMonteCarloCmd(),
	)
	return rootCmd
}
