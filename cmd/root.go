package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zyHan2077/montecarlo/mc"
	"github.com/zyHan2077/montecarlo/mc/ising"
)

var (
	// CLI flags for the simulation engine
	seed           int64  // Seed for the simulation's owned random generator
	sweeps         int    // Number of measurement sweeps
	thermalization int    // Number of thermalization sweeps excluded from measurement
	globalMoves    bool   // Enable the model's global-move hook
	globalRate     int    // Attempt a global move every globalRate-th sweep
	reportInterval int    // Sweeps between progress reports
	verbose        bool   // Emit periodic progress reports
	logLevel       string // Log verbosity level

	// CLI flags for the built-in Ising model
	preset   string  // Named parameter set from presets.yaml
	size     int     // Lattice side length
	beta     float64 // Inverse temperature
	coupling float64 // Nearest-neighbor coupling J
	field    float64 // External field H
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "montecarlo",
	Short: "Metropolis Monte Carlo simulation engine for lattice models",
}

// runCmd executes a simulation of the built-in Ising model using parameters
// from CLI flags or a named preset
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a Metropolis simulation of the 2D Ising model",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		// A preset overrides the individual model flags
		if preset != "" {
			p, err := GetPreset(PresetsFilepath, preset)
			if err != nil {
				logrus.Fatalf("Could not load preset %q: %v", preset, err)
			}
			size, beta, coupling, field = p.Size, p.Beta, p.Coupling, p.Field
		}

		model, err := ising.New(size, beta, coupling, field)
		if err != nil {
			logrus.Fatalf("Invalid model parameters: %v", err)
		}

		params := mc.NewParameters()
		params.GlobalMoves = globalMoves
		params.GlobalRate = globalRate
		params.Sweeps = sweeps
		params.Thermalization = thermalization
		params.ReportInterval = reportInterval

		logrus.Infof("Starting simulation: %dx%d lattice, beta=%.4f, J=%.2f, H=%.2f, %d sweeps (%d thermalization)",
			size, size, beta, coupling, field, sweeps, thermalization)

		sim := mc.New(model, mc.WithParameters(params))
		if err := sim.Init(seed); err != nil {
			logrus.Fatalf("Initialization failed: %v", err)
		}
		reg, err := sim.Run(mc.WithVerbose(verbose))
		if err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}

		printResults(sim, reg)
		logrus.Info("Simulation complete.")
	},
}

// printResults displays final acceptance statistics and observable means.
func printResults(sim *mc.Simulation, reg *mc.Registry) {
	stats := sim.Stats()
	fmt.Println("=== Simulation Results ===")
	fmt.Printf("Local acceptance     : %.1f%% (%d/%d)\n", 100*stats.AccRate, stats.AccLocal, stats.PropLocal)
	if globalMoves {
		fmt.Printf("Global acceptance    : %.1f%% (%d/%d)\n", 100*stats.AccRateGlobal, stats.AccGlobal, stats.PropGlobal)
	}
	fmt.Printf("Mean interval time   : %.3fs\n", stats.MeanIntervalDuration().Seconds())
	fmt.Printf("Final energy         : %.6f\n", sim.Energy())
	for _, name := range reg.Names() {
		obs := reg.Get(name)
		fmt.Printf("<%-4s>               : %.6f +/- %.6f (%d samples)\n", name, obs.Mean(), obs.StdErr(), obs.Count())
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the simulation's random generator")
	runCmd.Flags().IntVar(&sweeps, "sweeps", 1000, "Number of measurement sweeps")
	runCmd.Flags().IntVar(&thermalization, "thermalization", 0, "Number of thermalization sweeps")
	runCmd.Flags().BoolVar(&globalMoves, "global-moves", false, "Enable global moves")
	runCmd.Flags().IntVar(&globalRate, "global-rate", 5, "Attempt a global move every N-th sweep")
	runCmd.Flags().IntVar(&reportInterval, "report-interval", 1000, "Sweeps between progress reports")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "Emit periodic progress reports")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Ising model configs
	runCmd.Flags().StringVar(&preset, "preset", "", "Named parameter set from presets.yaml")
	runCmd.Flags().IntVar(&size, "size", 16, "Lattice side length")
	runCmd.Flags().Float64Var(&beta, "beta", 0.4407, "Inverse temperature")
	runCmd.Flags().Float64Var(&coupling, "coupling", 1.0, "Nearest-neighbor coupling J")
	runCmd.Flags().Float64Var(&field, "field", 0.0, "External field H")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
