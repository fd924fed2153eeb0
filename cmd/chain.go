package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/offload-sim/offload-sim/sim"
	"github.com/offload-sim/offload-sim/sim/dtmc"
)

var showEdges bool

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Build the symbolic Markov chain and check its probabilities",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustResolveConfig(cmd)
		ch := dtmc.NewCreator(cfg).Build()
		if err := ch.Validate(1e-9); err != nil {
			logrus.Fatalf("Chain validation failed: %v", err)
		}
		printChain(os.Stdout, ch, showEdges)
	},
}

func printChain(w io.Writer, ch *dtmc.Chain, edges bool) {
	fmt.Fprintln(w, "=== Markov Chain ===")
	fmt.Fprintf(w, "States               : %d\n", len(ch.Adjacency))
	fmt.Fprintf(w, "Edges                : %d\n", ch.EdgeCount())
	fmt.Fprintf(w, "Decision Variables   : %d\n", ch.Config.VariableCount())
	if !edges {
		return
	}
	c := dtmc.NewCreator(ch.Config)
	for _, s := range ch.Config.AllStates() {
		for _, a := range sim.AdmissibleActions(s) {
			for _, t := range c.Transitions(s, a) {
				fmt.Fprintln(w, t)
			}
		}
	}
}

func init() {
	chainCmd.Flags().BoolVar(&showEdges, "edges", false, "Print every elementary transition with its symbolic terms")
}
