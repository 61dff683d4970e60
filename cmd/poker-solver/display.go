package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/behrlich/poker-solver/internal/session"
	"github.com/behrlich/poker-solver/pkg/solver"
)

// printSolveResponse renders a SolveSession's aggregated strategies,
// grouped by player then by decision point, in the same layout the
// original flag-based CLI used for range-vs-range output.
func printSolveResponse(resp *session.SolveResponse, verbose bool) {
	fmt.Printf("=== STRATEGIES ===\n\n")

	printPlayerStrategies("OOP", resp.OOPStrategy, verbose)
	printPlayerStrategies("IP", resp.IPStrategy, verbose)

	fmt.Printf("Nodes: %d   Iterations: %d\n", resp.NodesCount, resp.IterationsPerformed)
	if len(resp.ConvergenceHistory) > 0 {
		status := "cap reached"
		if resp.Converged {
			status = "converged"
		}
		fmt.Printf("Convergence: %s (final avg delta %.6f)\n", status, resp.FinalConvergence)
	}
}

func printPlayerStrategies(player string, byKey map[string]map[string]float64, verbose bool) {
	if len(byKey) == 0 {
		return
	}
	fmt.Printf("%s:\n", player)

	type entry struct {
		history  string
		handType string
		board    string
		probs    map[string]float64
	}
	entries := make([]entry, 0, len(byKey))
	for key, probs := range byKey {
		history, handType, board := splitAggKey(key)
		entries = append(entries, entry{history, handType, board, probs})
	}

	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].history) != len(entries[j].history) {
			return len(entries[i].history) < len(entries[j].history)
		}
		if entries[i].handType != entries[j].handType {
			return entries[i].handType < entries[j].handType
		}
		return entries[i].history < entries[j].history
	})

	for _, e := range entries {
		situation := "acts first"
		if e.history != "" {
			situation = fmt.Sprintf("facing %s", e.history)
		}
		fmt.Printf("  %s (%s):\n", e.handType, situation)

		actions := make([]string, 0, len(e.probs))
		for action := range e.probs {
			actions = append(actions, action)
		}
		sort.Strings(actions)
		for _, action := range actions {
			prob := e.probs[action]
			if prob > 0.01 {
				fmt.Printf("    %s: %.1f%%\n", action, prob*100)
			}
		}
		if verbose {
			fmt.Printf("    (board %s)\n", e.board)
		}
	}
	fmt.Printf("\n")
}

// splitAggKey reverses the "history|handType|board" key strategyByHand
// builds.
func splitAggKey(key string) (history, handType, board string) {
	parts := strings.SplitN(key, "|", 3)
	switch len(parts) {
	case 3:
		return parts[0], parts[1], parts[2]
	case 2:
		return parts[0], parts[1], ""
	default:
		return "", key, ""
	}
}

// printProfile renders a raw StrategyProfile loaded from disk (the
// --load path, which has no SolveResponse to reduce it to).
func printProfile(profile *solver.StrategyProfile, verbose bool) {
	fmt.Printf("=== ALL STRATEGIES ===\n\n")

	allStrats := profile.All()
	infoSets := make([]string, 0, len(allStrats))
	for infoSet := range allStrats {
		infoSets = append(infoSets, infoSet)
	}
	sort.Strings(infoSets)

	for _, infoSet := range infoSets {
		strat := allStrats[infoSet]
		avgStrat := strat.GetAverageStrategy()

		fmt.Printf("InfoSet: %s\n", infoSet)
		for i, action := range strat.Actions {
			prob := avgStrat[i]
			if prob > 0.001 {
				fmt.Printf("  %s: %.1f%%\n", action.String(), prob*100)
			}
		}
		if verbose {
			fmt.Printf("  Regrets: ")
			for i, regret := range strat.RegretSum {
				if i > 0 {
					fmt.Printf(", ")
				}
				fmt.Printf("%.2f", regret)
			}
			fmt.Printf("\n")
		}
		fmt.Printf("\n")
	}
}
