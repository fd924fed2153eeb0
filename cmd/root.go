package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/offload-sim/offload-sim/sim"
)

var (
	logLevel   string // Log verbosity level
	configPath string // Optional YAML config file

	// Device overrides, applied on top of the config file when set
	queueCapacity int
	tuPackets     int
	cpuSections   int
	alpha         float64
	beta          float64
	localPower    float64
	transmitPower float64
	powerBudget   float64
	dropTolerance float64
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "offload-sim",
	Short: "Analytical scheduling policies for a computation-offloading device",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig loads the config file (or the defaults) and applies every
// device flag the user set explicitly.
func resolveConfig(flags *pflag.FlagSet, path string) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if path != "" {
		loaded, err := sim.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if flags.Changed("queue-capacity") {
		cfg.TaskQueueCapacity = queueCapacity
	}
	if flags.Changed("tu-packets") {
		cfg.TUNumberOfPackets = tuPackets
	}
	if flags.Changed("cpu-sections") {
		cfg.CPUNumberOfSections = cpuSections
	}
	if flags.Changed("alpha") {
		cfg.Alpha = alpha
	}
	if flags.Changed("beta") {
		cfg.Beta = beta
	}
	if flags.Changed("local-power") {
		cfg.LocalPower = localPower
	}
	if flags.Changed("transmit-power") {
		cfg.TransmitPower = transmitPower
	}
	if flags.Changed("power-budget") {
		cfg.PowerBudget = powerBudget
	}
	if flags.Changed("drop-tolerance") {
		cfg.DropTolerance = dropTolerance
	}
	return cfg, cfg.Validate()
}

// mustResolveConfig is resolveConfig for command handlers.
func mustResolveConfig(cmd *cobra.Command) sim.Config {
	cfg, err := resolveConfig(cmd.Flags(), configPath)
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	logrus.Infof("Device Q=%d T=%d C=%d alpha=%.4f beta=%.4f power_budget=%.4f drop_tolerance=%.4f",
		cfg.TaskQueueCapacity, cfg.TUNumberOfPackets, cfg.CPUNumberOfSections,
		cfg.Alpha, cfg.Beta, cfg.PowerBudget, cfg.DropTolerance)
	return cfg
}

// init sets up persistent flags and subcommands
func init() {
	defaults := sim.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	flags.StringVar(&configPath, "config", "", "YAML device configuration file")

	flags.IntVar(&queueCapacity, "queue-capacity", defaults.TaskQueueCapacity, "Task queue capacity")
	flags.IntVar(&tuPackets, "tu-packets", defaults.TUNumberOfPackets, "Packets per offloaded task")
	flags.IntVar(&cpuSections, "cpu-sections", defaults.CPUNumberOfSections, "Sections per locally executed task")
	flags.Float64Var(&alpha, "alpha", defaults.Alpha, "Task arrival probability per tick")
	flags.Float64Var(&beta, "beta", defaults.Beta, "Packet transmission probability per tick")
	flags.Float64Var(&localPower, "local-power", defaults.LocalPower, "Energy per tick of CPU activity")
	flags.Float64Var(&transmitPower, "transmit-power", defaults.TransmitPower, "Energy per tick of transmission")
	flags.Float64Var(&powerBudget, "power-budget", defaults.PowerBudget, "Max average power (0 = unconstrained)")
	flags.Float64Var(&dropTolerance, "drop-tolerance", defaults.DropTolerance, "Max dropped-arrival fraction (0 = unconstrained)")

	rootCmd.AddCommand(chainCmd, optimizeCmd, simulateCmd, evaluateCmd)
}
