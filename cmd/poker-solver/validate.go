package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/behrlich/poker-solver/pkg/analyzer"
	"github.com/behrlich/poker-solver/pkg/notation"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Estimate the cost of a bet-sizing configuration before solving",
	Long: `validate-config runs the same bet-size menu and per-street caps a
solve would use through the computational-cost estimator, printing
warnings and a recommended iteration count without building a tree.`,
	RunE: runValidateConfig,
}

func init() {
	flags := validateConfigCmd.Flags()
	flags.StringVar(&betSizesFlag, "bet-sizes", "0.5,0.75,1.0", "comma-separated pot fractions")
	flags.StringVar(&maxBetsFlag, "max-bets", "preflop=4,flop=3,turn=2,river=1", "comma-separated street=count pairs")
	flags.StringVar(&presetName, "preset", "", "named bet-abstraction preset to validate instead of the flags above")
	flags.StringVar(&presetFile, "preset-file", "", "path to a bet-abstraction preset YAML file to validate")
}

func runValidateConfig(cmd *cobra.Command, args []string) error {
	var betSizes []float64
	var maxBets map[notation.Street]int

	if presetName != "" || presetFile != "" {
		preset, err := loadPreset()
		if err != nil {
			return err
		}
		betSizes = preset.BetSizes
		maxBets = preset.MaxBetsPerStreetMap()
	} else {
		var err error
		betSizes, err = parseFloatList(betSizesFlag)
		if err != nil {
			return fmt.Errorf("bet-sizes: %w", err)
		}
		maxBets, err = parseStreetCaps(maxBetsFlag)
		if err != nil {
			return err
		}
	}

	estimate := analyzer.EstimateCost(betSizes, maxBets)

	fmt.Printf("Estimated nodes: %d\n", estimate.EstimatedNodes)
	fmt.Printf("Estimated training time: %.1fs\n", estimate.EstimatedTrainingTime)
	fmt.Printf("Recommended iterations: %d\n", estimate.RecommendedIterations)
	if estimate.IsValid {
		fmt.Println("Configuration is valid.")
	} else {
		fmt.Println("Configuration is INVALID.")
	}
	for _, w := range estimate.Warnings {
		fmt.Printf("  - %s\n", w)
	}
	if !estimate.IsValid {
		return fmt.Errorf("invalid bet-abstraction configuration")
	}
	return nil
}
