package solver

import (
	"context"
	"math"

	"github.com/behrlich/poker-solver/pkg/cards"
	"github.com/behrlich/poker-solver/pkg/equity"
	"github.com/behrlich/poker-solver/pkg/notation"
	"github.com/behrlich/poker-solver/pkg/tree"
)

// CFR implements the full-width Counterfactual Regret Minimization
// driver: every iteration visits every chance outcome (each combo-pair
// matchup, weighted by its probability) and recurses over every action;
// no matchup and no action is sampled. Any showdown reached before
// the board is complete (flop/turn) is resolved once via Monte Carlo
// equity and cached on the node, since within a single matchup the
// expected value of an unresolved runout is fixed.
type CFR struct {
	profile *StrategyProfile
	Equity  *equity.Calculator
}

// NewCFR creates a new CFR solver
func NewCFR() *CFR {
	return &CFR{
		profile: NewStrategyProfile(),
		Equity:  equity.NewCalculator(),
	}
}

// Train runs CFR for the specified number of iterations
// Returns the strategy profile after training
func (c *CFR) Train(root *tree.TreeNode, iterations int) *StrategyProfile {
	for i := 0; i < iterations; i++ {
		c.Iterate(root)
	}
	return c.profile
}

// ConvergenceResult reports how TrainWithConvergence finished: how many
// iterations it actually ran, the convergence trace (average L1 change
// in per-infoset average strategy, one entry per checkInterval
// checkpoint), and whether it stopped because the trace dropped below
// threshold rather than hitting maxIterations.
type ConvergenceResult struct {
	IterationsPerformed int
	History             []float64
	Converged           bool
}

// TrainWithConvergence runs CFR up to maxIterations, checking ctx for
// cancellation before each iteration and computing the convergence
// metric every checkInterval iterations. It stops early once that
// metric drops below threshold (threshold <= 0 disables early stop).
// On cancellation it returns the best-so-far profile with no error.
func (c *CFR) TrainWithConvergence(ctx context.Context, root *tree.TreeNode, maxIterations int, checkInterval int, threshold float64) (*StrategyProfile, ConvergenceResult) {
	if checkInterval < 1 {
		checkInterval = 1
	}

	var history []float64
	prevAvg := c.profile.GetAverageStrategies()
	converged := false

	i := 0
	for ; i < maxIterations; i++ {
		select {
		case <-ctx.Done():
			return c.profile, ConvergenceResult{IterationsPerformed: i, History: history, Converged: false}
		default:
		}

		c.Iterate(root)

		if (i+1)%checkInterval == 0 {
			currAvg := c.profile.GetAverageStrategies()
			delta := averageL1Change(prevAvg, currAvg)
			history = append(history, delta)
			prevAvg = currAvg

			if threshold > 0 && delta < threshold {
				converged = true
				i++
				break
			}
		}
	}

	return c.profile, ConvergenceResult{IterationsPerformed: i, History: history, Converged: converged}
}

// averageL1Change averages the per-infoset L1 distance between two
// average-strategy snapshots. Infosets absent from prev (newly visited
// since the last checkpoint) are compared against an all-zero prior
// strategy, counting their full magnitude as change.
func averageL1Change(prev, curr map[string][]float64) float64 {
	if len(curr) == 0 {
		return 0
	}

	var total float64
	for key, currStrat := range curr {
		prevStrat, ok := prev[key]
		if !ok {
			prevStrat = make([]float64, len(currStrat))
		}
		var l1 float64
		for i := range currStrat {
			l1 += math.Abs(currStrat[i] - prevStrat[i])
		}
		total += l1
	}
	return total / float64(len(curr))
}

// Iterate runs a single CFR iteration
// This is useful for progress tracking in WASM/UI contexts
func (c *CFR) Iterate(root *tree.TreeNode) {
	c.cfr(root, 1.0, 1.0)
}

// cfr recursively traverses the game tree and updates regrets
// reachProb0 is the probability that player 0 reaches this node
// reachProb1 is the probability that player 1 reaches this node
// Returns the expected value for each player
func (c *CFR) cfr(node *tree.TreeNode, reachProb0, reachProb1 float64) [2]float64 {
	// Terminal node: return payoffs, resolving a pending rollout first
	if node.IsTerminal {
		if node.NeedsRollout {
			node.Payoff = c.resolveRollout(node)
			node.NeedsRollout = false
		}
		return node.Payoff
	}

	// Chance node: compute expected value over all outcomes
	if node.IsChance {
		nodeValue := [2]float64{0, 0}
		for childKey, child := range node.Children {
			prob := node.ChanceProbabilities[childKey]
			childValue := c.cfr(child, reachProb0*prob, reachProb1*prob)
			nodeValue[0] += prob * childValue[0]
			nodeValue[1] += prob * childValue[1]
		}
		return nodeValue
	}

	// Decision node: compute counterfactual values
	player := node.Player
	infoSet := node.InfoSet

	// Get or create strategy for this infoset
	strategy := c.profile.GetOrCreate(infoSet, node.Actions)

	// Get current strategy using regret matching
	currentStrategy := strategy.GetStrategy()

	// Track counterfactual values for each action
	numActions := len(node.Actions)
	actionValues := make([][2]float64, numActions)
	nodeValue := [2]float64{0, 0}

	// Recursively compute values for each action
	for i, action := range node.Actions {
		actionKey := tree.ActionKey(action)
		child, exists := node.Children[actionKey]
		if !exists {
			// Should not happen if tree is built correctly
			continue
		}

		// Update reach probabilities based on who's acting
		var childValue [2]float64
		if player == 0 {
			childValue = c.cfr(child, reachProb0*currentStrategy[i], reachProb1)
		} else {
			childValue = c.cfr(child, reachProb0, reachProb1*currentStrategy[i])
		}

		actionValues[i] = childValue
		// Accumulate expected value weighted by strategy
		nodeValue[0] += currentStrategy[i] * childValue[0]
		nodeValue[1] += currentStrategy[i] * childValue[1]
	}

	// Compute regrets and update strategy
	regrets := make([]float64, numActions)
	cfValue := nodeValue[player] // Counterfactual value at this node

	for i := 0; i < numActions; i++ {
		// Regret = value of action - value of current strategy
		actionCFValue := actionValues[i][player]
		regrets[i] = actionCFValue - cfValue
	}

	// Update regrets weighted by opponent's reach probability
	// (opponent's reach prob = probability this is a counterfactual scenario)
	var cfReachProb float64
	if player == 0 {
		cfReachProb = reachProb1
	} else {
		cfReachProb = reachProb0
	}

	scaledRegrets := make([]float64, numActions)
	for i := 0; i < numActions; i++ {
		scaledRegrets[i] = regrets[i] * cfReachProb
	}
	strategy.UpdateRegrets(scaledRegrets)

	// Update strategy sum weighted by own reach probability
	var ownReachProb float64
	if player == 0 {
		ownReachProb = reachProb0
	} else {
		ownReachProb = reachProb1
	}
	strategy.UpdateStrategy(currentStrategy, ownReachProb)

	return nodeValue
}

// resolveRollout estimates the expected payoff of a showdown reached
// before the board is complete: hero's Monte Carlo equity against the
// villain's single concrete combo, scaled to the pot and netted against
// each player's own invested chips (spec §4.4) so the rollout stays
// zero-sum with the rest of the tree.
func (c *CFR) resolveRollout(node *tree.TreeNode) [2]float64 {
	combo0, combo1 := node.PlayerCombos[0], node.PlayerCombos[1]
	hero := []cards.Card{combo0.Card1, combo0.Card2}
	villain := notation.Combo{Card1: combo1.Card1, Card2: combo1.Card2}

	result := c.Equity.CalculateEquity(hero, node.Board, []notation.Combo{villain})
	return [2]float64{
		result.Equity*node.Pot - node.Invested[0],
		(1-result.Equity)*node.Pot - node.Invested[1],
	}
}

// GetProfile returns the current strategy profile
func (c *CFR) GetProfile() *StrategyProfile {
	return c.profile
}
