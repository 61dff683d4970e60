package analyzer

import (
	"strings"

	"github.com/behrlich/poker-solver/pkg/notation"
)

// CostEstimate is advisory analytics over a candidate bet-size menu
// and per-street bet caps: it has no effect on solving, it only warns
// the caller when a configuration is likely to be slow or enormous.
type CostEstimate struct {
	Warnings              []string
	EstimatedNodes        int
	EstimatedTrainingTime float64 // seconds, at an assumed 1000 nodes/sec
	RecommendedIterations int
	IsValid               bool
}

// EstimateCost estimates the computational cost of solving with the
// given bet-size menu and per-street bet caps. The node-count formula
// is intentionally rough — (avg bet sizes * avg max bets)^3, three
// streets deep — matching the heuristic this analysis is grounded on,
// not a precise tree-size count.
func EstimateCost(betSizes []float64, maxBetsPerStreet map[notation.Street]int) CostEstimate {
	var warnings []string

	if len(betSizes) == 0 {
		warnings = append(warnings, "no bet sizes provided")
	} else if len(betSizes) > 10 {
		warnings = append(warnings, "too many bet sizes may slow down training")
	}

	totalMaxBets := 0
	for _, n := range maxBetsPerStreet {
		totalMaxBets += n
	}
	if totalMaxBets > 10 {
		warnings = append(warnings, "high total max bets may create very large game trees")
	}

	nodes := estimateNodes(betSizes, maxBetsPerStreet)
	trainingTime := float64(nodes) / 1000.0
	iterations := recommendIterations(nodes)

	// A config is still valid if every warning is merely advisory
	// ("may slow down") rather than a hard defect like a missing
	// bet-size menu.
	isValid := true
	for _, w := range warnings {
		if !strings.Contains(w, "may") {
			isValid = false
			break
		}
	}

	return CostEstimate{
		Warnings:              warnings,
		EstimatedNodes:        nodes,
		EstimatedTrainingTime: trainingTime,
		RecommendedIterations: iterations,
		IsValid:               isValid,
	}
}

func estimateNodes(betSizes []float64, maxBetsPerStreet map[notation.Street]int) int {
	if len(maxBetsPerStreet) == 0 {
		return 0
	}

	avgBetSizes := float64(len(betSizes))
	var totalMaxBets float64
	for _, n := range maxBetsPerStreet {
		totalMaxBets += float64(n)
	}
	avgMaxBets := totalMaxBets / float64(len(maxBetsPerStreet))

	branching := avgBetSizes * avgMaxBets
	nodes := int(branching * branching * branching) // 3 streets deep

	const cap = 1000000
	if nodes > cap {
		nodes = cap
	}
	return nodes
}

func recommendIterations(nodes int) int {
	base := 100000
	switch {
	case nodes > 500000:
		base = 500000
	case nodes > 100000:
		base = 200000
	}
	const cap = 1000000
	if base > cap {
		base = cap
	}
	return base
}
