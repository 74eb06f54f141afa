package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/factory-sim/factory-sim/sim"
)

var (
	// CLI flags for the plant configuration
	seed             int64    // Seed for machine failure sampling
	logLevel         string   // Log verbosity level
	configPath       string   // Optional YAML scenario file
	machineCount     int      // Machines per stage
	shiftLength      int      // Shift length in hours
	repairDelay      float64  // Time from failure to repair
	scenario         string   // Scenario to run
	adjustedMachines int      // Machine count for the adjusted scenario
	adjustedShift    int      // Shift length for the adjusted scenario
	haltOnFailure    bool     // Stop routing a material at its first deferred stage
	horizon          float64  // Simulation horizon (0 = unbounded)
	decommissioned   []string // Machines out of service
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "factory-sim",
	Short: "Discrete-event simulator for a linear production line",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
}

// runCmd executes the selected scenarios using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the production line simulation",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := sim.DefaultConfig()
		var sf *ScenarioFile
		if configPath != "" {
			loaded, err := LoadScenarioFile(configPath)
			if err != nil {
				return err
			}
			if err := loaded.Apply(&cfg); err != nil {
				return err
			}
			sf = loaded
		}
		// explicit flags win over the scenario file
		if sf == nil || cmd.Flags().Changed("machines") {
			cfg.MachineCount = machineCount
		}
		if sf == nil || cmd.Flags().Changed("shift-length") {
			cfg.ShiftLength = shiftLength
		}
		if sf == nil || cmd.Flags().Changed("repair-delay") {
			cfg.RepairDelay = repairDelay
		}

		logrus.Infof("Starting simulation: scenario=%s machines=%d shift=%d repairDelay=%.2f seed=%d",
			scenario, cfg.MachineCount, cfg.ShiftLength, cfg.RepairDelay, seed)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		opts := RunOptions{
			Scenario:         scenario,
			Config:           cfg,
			Products:         sf.ProductTypes(),
			Seed:             seed,
			AdjustedMachines: adjustedMachines,
			AdjustedShift:    adjustedShift,
			HaltOnFailure:    haltOnFailure,
			Horizon:          horizon,
			Decommissioned:   decommissioned,
		}
		if err := runScenarios(ctx, opts, cmd.OutOrStdout()); err != nil {
			return err
		}
		logrus.Info("Simulation complete.")
		return nil
	},
}

// productsCmd prints the product catalog that multi-product runs use
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the product types and their routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		var sf *ScenarioFile
		if configPath != "" {
			loaded, err := LoadScenarioFile(configPath)
			if err != nil {
				return err
			}
			sf = loaded
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Product\tSetup\tStages")
		for _, pt := range sf.ProductTypes() {
			if err := pt.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%.2f\t%v\n", pt.Name, pt.SetupTime, pt.Stages)
		}
		return tw.Flush()
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	loadDotEnv()

	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", getEnv(EnvConfig, ""), "YAML scenario file (plant parameters and product catalog)")

	runCmd.Flags().Int64Var(&seed, "seed", getEnvInt64(EnvSeed, 42), "Seed for machine failure sampling")
	runCmd.Flags().IntVar(&machineCount, "machines", getEnvInt(EnvMachines, sim.DefaultMachineCount), "Machine count")
	runCmd.Flags().IntVar(&shiftLength, "shift-length", getEnvInt(EnvShiftLength, sim.DefaultShiftLength), "Shift length")
	runCmd.Flags().Float64Var(&repairDelay, "repair-delay", sim.DefaultRepairDelay, "Time from machine failure to repair")
	runCmd.Flags().StringVar(&scenario, "scenario", ScenarioAll, "Scenario to run (single, multi, adjusted, all)")
	runCmd.Flags().IntVar(&adjustedMachines, "adjusted-machines", 12, "Machine count for the adjusted scenario")
	runCmd.Flags().IntVar(&adjustedShift, "adjusted-shift-length", 10, "Shift length for the adjusted scenario")
	runCmd.Flags().BoolVar(&haltOnFailure, "halt-on-failure", false, "Stop routing a material at its first deferred stage")
	runCmd.Flags().Float64Var(&horizon, "horizon", 0, "Simulation horizon (0 = run until idle)")
	runCmd.Flags().StringSliceVar(&decommissioned, "decommission", nil, "Machines out of service (comma-separated)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(productsCmd)
}
