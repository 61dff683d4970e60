package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/behrlich/poker-solver/internal/config"
	"github.com/behrlich/poker-solver/internal/session"
	"github.com/behrlich/poker-solver/pkg/notation"
	"github.com/behrlich/poker-solver/pkg/solver"
)

var (
	oopRange             string
	ipRange              string
	board                string
	pot                  float64
	startingStack        float64
	betSizesFlag         string
	maxBetsFlag          string
	allowAllIn           bool
	minRaiseFraction     float64
	iterations           int
	checkInterval        int
	convergenceThreshold float64
	seed                 int64
	workers              int
	buckets              int
	presetName           string
	presetFile           string
	saveFile             string
	loadFile             string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a heads-up subgame and print equilibrium strategies",
	Long: `solve builds a game tree from two ranges, a board, and a pot, trains
it with CFR or MCCFR depending on street, and prints the resulting
per-hand strategies.`,
	RunE: runSolve,
}

func init() {
	flags := solveCmd.Flags()
	flags.StringVar(&oopRange, "oop-range", "", "out-of-position player's range (required)")
	flags.StringVar(&ipRange, "ip-range", "", "in-position player's range (required)")
	flags.StringVar(&board, "board", "", "community board, e.g. Kh9s4c (flop), Kh9s4c7d (turn), Kh9s4c7d2s (river)")
	flags.Float64Var(&pot, "pot", 0, "pot size in big blinds (required)")
	flags.Float64Var(&startingStack, "stack", 100, "starting stack in big blinds, each player")
	flags.StringVar(&betSizesFlag, "bet-sizes", "", "comma-separated pot fractions, e.g. 0.5,0.75,1.0 (defaults to the street's preset)")
	flags.StringVar(&maxBetsFlag, "max-bets", "", "comma-separated street=count pairs, e.g. flop=3,turn=2,river=1")
	flags.BoolVar(&allowAllIn, "allow-all-in", true, "include an all-in sizing at each decision")
	flags.Float64Var(&minRaiseFraction, "min-raise-fraction", 0, "minimum raise size as a pot fraction (0 uses the street default)")
	flags.IntVar(&iterations, "iterations", 100000, "maximum CFR/MCCFR iterations")
	flags.IntVar(&checkInterval, "check-interval", 0, "iterations between convergence checkpoints (0 picks iterations/10)")
	flags.Float64Var(&convergenceThreshold, "convergence-threshold", 0, "stop early once avg strategy L1 change falls below this (0 disables, river only)")
	flags.Int64Var(&seed, "seed", 42, "PRNG seed for MCCFR sampling and shard splitting")
	flags.IntVar(&workers, "workers", 1, "parallel MCCFR shards to train and merge (flop/turn only)")
	flags.IntVar(&buckets, "buckets", 0, "card-abstraction bucket count (0 disables bucketing)")
	flags.StringVar(&presetName, "preset", "", "named bet-abstraction preset (resolved against presets/<name>.yml)")
	flags.StringVar(&presetFile, "preset-file", "", "path to a bet-abstraction preset YAML file")
	flags.StringVar(&saveFile, "save", "", "save the raw strategy profile to a JSON file")
	flags.StringVar(&loadFile, "load", "", "load a strategy profile from a JSON file and skip solving")
}

func runSolve(cmd *cobra.Command, args []string) error {
	if loadFile != "" {
		profile, err := solver.LoadFromFile(loadFile)
		if err != nil {
			return fmt.Errorf("loading strategy: %w", err)
		}
		fmt.Printf("Loaded strategy profile with %d information sets\n\n", profile.NumInfoSets())
		printProfile(profile, verbose)
		return nil
	}

	req, err := buildSolveRequest()
	if err != nil {
		return err
	}

	sess := session.New(log, seed)

	if saveFile != "" {
		profile, _, _, err := sess.SolveProfile(context.Background(), req)
		if err != nil {
			return err
		}
		if err := profile.SaveToFile(saveFile); err != nil {
			return fmt.Errorf("saving strategy: %w", err)
		}
		fmt.Printf("Strategy saved to %s (%d information sets)\n\n", saveFile, profile.NumInfoSets())
	}

	resp, err := sess.Solve(context.Background(), req)
	if err != nil {
		return err
	}
	printSolveResponse(resp, verbose)
	return nil
}

func buildSolveRequest() (session.SolveRequest, error) {
	req := session.SolveRequest{
		OOPRange:             oopRange,
		IPRange:              ipRange,
		Board:                board,
		Pot:                  pot,
		StartingStack:        startingStack,
		AllowAllIn:           allowAllIn,
		MinRaiseFraction:     minRaiseFraction,
		Iterations:           iterations,
		CheckInterval:        checkInterval,
		ConvergenceThreshold: convergenceThreshold,
		Seed:                 seed,
		Workers:              workers,
		Buckets:              buckets,
	}

	if presetName != "" || presetFile != "" {
		preset, err := loadPreset()
		if err != nil {
			return req, err
		}
		req.BetSizes = preset.BetSizes
		req.MaxBetsPerStreet = preset.MaxBetsPerStreetMap()
		req.AllowAllIn = preset.AllowAllIn
		req.MinRaiseFraction = preset.MinRaiseFraction
		if buckets == 0 {
			req.Buckets = preset.Buckets
		}
	}

	if betSizesFlag != "" {
		sizes, err := parseFloatList(betSizesFlag)
		if err != nil {
			return req, fmt.Errorf("%w: bet-sizes: %v", notation.ErrInvalidConfig, err)
		}
		req.BetSizes = sizes
	}

	if maxBetsFlag != "" {
		caps, err := parseStreetCaps(maxBetsFlag)
		if err != nil {
			return req, err
		}
		req.MaxBetsPerStreet = caps
	}

	return req, nil
}

func loadPreset() (*config.AbstractionPreset, error) {
	if presetFile != "" {
		return config.LoadPresetFromFile(presetFile)
	}
	return config.LoadPresetFromName(presetName)
}

func parseFloatList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	result := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, nil
}

func parseStreetCaps(s string) (map[notation.Street]int, error) {
	result := make(map[notation.Street]int)
	for _, pair := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("%w: max-bets: expected street=count, got %q", notation.ErrInvalidConfig, pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: max-bets: %v", notation.ErrInvalidConfig, err)
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "preflop":
			result[notation.Preflop] = n
		case "flop":
			result[notation.Flop] = n
		case "turn":
			result[notation.Turn] = n
		case "river":
			result[notation.River] = n
		default:
			return nil, fmt.Errorf("%w: max-bets: unrecognized street %q", notation.ErrInvalidConfig, kv[0])
		}
	}
	return result, nil
}
