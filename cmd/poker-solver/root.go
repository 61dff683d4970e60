package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/behrlich/poker-solver/internal/obs"
)

var (
	devMode bool
	verbose bool
	log     *logrus.Logger
)

// rootCmd is the base command when poker-solver is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "poker-solver",
	Short: "A game-theory-optimal solver for heads-up no-limit hold'em subgames",
	Long: `poker-solver builds and trains a game tree for a heads-up no-limit
hold'em subgame (flop, turn, or river) given two ranges, a board, and a
pot, and reports the resulting near-equilibrium strategies.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = obs.InitLogger(devMode)
	},
}

// Execute adds all child commands to rootCmd and runs it. It is called by
// main.main() once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "enable debug-level, colorized logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show additional detail in command output")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(validateConfigCmd)
	rootCmd.AddCommand(statusCmd)
}
