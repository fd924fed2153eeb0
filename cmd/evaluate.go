package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/offload-sim/offload-sim/sim/evaluation"
	"github.com/offload-sim/offload-sim/sim/sweep"
)

var (
	alphaMin  float64
	alphaMax  float64
	alphaStep float64
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure policy effectiveness over a range of arrival probabilities",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustResolveConfig(cmd)
		alphas, err := evaluation.AlphaRange(alphaMin, alphaMax, alphaStep)
		if err != nil {
			logrus.Fatalf("Invalid alpha range: %v", err)
		}

		h := &evaluation.Harness{
			Base:      cfg,
			Alphas:    alphas,
			Precision: precision,
			Ticks:     ticks,
			Seed:      seed,
			Workers:   workers,
		}
		res, err := h.Run()
		if err != nil {
			logrus.Fatalf("Evaluation failed: %v", err)
		}
		printEvaluation(os.Stdout, res)
	},
}

func printEvaluation(w io.Writer, res evaluation.Result) {
	fmt.Fprintf(w, "=== Policy Effectiveness (%d arrival rates) ===\n", len(res.Outcomes))
	for _, name := range evaluation.PolicyNames {
		fmt.Fprintf(w, "%-22s: %6.2f%%\n", name, res.EffectivePercent[name])
	}
}

func init() {
	evaluateCmd.Flags().Float64Var(&alphaMin, "alpha-min", 0.05, "Smallest arrival probability")
	evaluateCmd.Flags().Float64Var(&alphaMax, "alpha-max", 0.5, "Largest arrival probability")
	evaluateCmd.Flags().Float64Var(&alphaStep, "alpha-step", 0.05, "Arrival probability step")
	evaluateCmd.Flags().IntVar(&precision, "precision", 10, "Eta sweep precision for the stochastic policy")
	evaluateCmd.Flags().Int64Var(&ticks, "ticks", 100000, "Simulated ticks per policy")
	evaluateCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for arrivals, transmissions and policy sampling")
	evaluateCmd.Flags().IntVar(&workers, "workers", sweep.MaxWorkers, "Concurrent workers over arrival rates")
}
