package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/offload-sim/offload-sim/sim"
	"github.com/offload-sim/offload-sim/sim/evaluation"
	"github.com/offload-sim/offload-sim/sim/policy"
	"github.com/offload-sim/offload-sim/sim/simulator"
	"github.com/offload-sim/offload-sim/sim/stochastic"
	"github.com/offload-sim/offload-sim/sim/sweep"
)

var (
	policyName string // Policy to simulate
	ticks      int64  // Simulated ticks
	seed       int64  // Seed for arrivals, transmissions and policy sampling
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate the device under one policy",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustResolveConfig(cmd)

		var p policy.Policy
		switch {
		case policyName == evaluation.StochasticName:
			finder := stochastic.NewFinder(cfg)
			finder.Workers = workers
			res, err := finder.FindOptimalPolicy(precision)
			if err != nil {
				logrus.Fatalf("Optimization failed: %v", err)
			}
			if !res.Found() {
				logrus.Fatalf("No effective stochastic policy for this configuration")
			}
			p = res.Policy
		case policy.ValidBaselines[policyName]:
			p = policy.NewBaseline(policyName, cfg)
		default:
			logrus.Fatalf("Unknown policy %q; valid policies: %v", policyName, evaluation.PolicyNames)
		}

		r := simulator.New(cfg, seed).Run(p, ticks)
		printReport(os.Stdout, cfg, r)
	},
}

func printReport(w io.Writer, cfg sim.Config, r simulator.Report) {
	fmt.Fprintf(w, "=== Simulation Report: %s ===\n", r.Policy)
	fmt.Fprintf(w, "Ticks                : %d\n", r.Ticks)
	fmt.Fprintf(w, "Arrivals             : %d\n", r.Arrivals)
	fmt.Fprintf(w, "Dropped              : %d (%.4f)\n", r.Dropped, r.DropRate())
	fmt.Fprintf(w, "Completed Local      : %d\n", r.CompletedLocal)
	fmt.Fprintf(w, "Completed Offloaded  : %d\n", r.CompletedOffloaded)
	fmt.Fprintf(w, "Average Delay        : %.4f ticks\n", r.AverageDelay())
	fmt.Fprintf(w, "Average Power        : %.4f\n", r.AveragePower())
	fmt.Fprintf(w, "Effective            : %t\n", r.IsEffective(cfg))
}

func init() {
	simulateCmd.Flags().StringVar(&policyName, "policy", "greedy-offload-first", "Policy: stochastic, local-only, transmit-only, greedy-local-first, greedy-offload-first")
	simulateCmd.Flags().Int64Var(&ticks, "ticks", 100000, "Number of simulated ticks")
	simulateCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for arrivals, transmissions and policy sampling")
	simulateCmd.Flags().IntVar(&precision, "precision", 10, "Eta sweep precision for the stochastic policy")
	simulateCmd.Flags().IntVar(&workers, "workers", sweep.MaxWorkers, "Concurrent workers for the eta sweep")
}
