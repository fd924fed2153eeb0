package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/offload-sim/offload-sim/sim"
	"github.com/offload-sim/offload-sim/sim/policy"
	"github.com/offload-sim/offload-sim/sim/stochastic"
	"github.com/offload-sim/offload-sim/sim/sweep"
)

var (
	precision int // Number of eta intervals; precision+1 programs are solved
	workers   int // Concurrent workers for sweeps
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Find the optimal stochastic policy",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustResolveConfig(cmd)
		finder := stochastic.NewFinder(cfg)
		finder.Workers = workers

		res, err := finder.FindOptimalPolicy(precision)
		if err != nil {
			logrus.Fatalf("Optimization failed: %v", err)
		}
		if !res.Found() {
			fmt.Println("No effective policy found; fall back to a baseline policy.")
			return
		}
		printPolicy(os.Stdout, cfg, res.Policy)
	},
}

func printPolicy(w io.Writer, cfg sim.Config, p *policy.Stochastic) {
	fmt.Fprintln(w, "=== Stochastic Policy ===")
	fmt.Fprintf(w, "Eta                  : %.4f\n", p.Eta)
	fmt.Fprintf(w, "Objective            : %.6f\n", p.Objective)
	fmt.Fprintf(w, "Average Delay        : %.6f\n", p.AverageDelay)
	fmt.Fprintf(w, "Average Power        : %.6f\n", p.AveragePower)
	fmt.Fprintf(w, "%-12s", "state")
	for _, a := range sim.AllActions {
		fmt.Fprintf(w, " %22s", a)
	}
	fmt.Fprintln(w)
	for _, s := range cfg.AllStates() {
		d := p.Distribution(s)
		fmt.Fprintf(w, "%-12s", s)
		for _, prob := range d {
			fmt.Fprintf(w, " %22.4f", prob)
		}
		fmt.Fprintln(w)
	}
}

func init() {
	optimizeCmd.Flags().IntVar(&precision, "precision", 10, "Eta sweep precision (precision+1 points in [0, 1])")
	optimizeCmd.Flags().IntVar(&workers, "workers", sweep.MaxWorkers, "Concurrent workers for the eta sweep")
}
