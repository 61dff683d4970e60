package tree

import (
	"fmt"
	"strings"

	"github.com/behrlich/poker-solver/pkg/cards"
	"github.com/behrlich/poker-solver/pkg/notation"
)

// TreeNode represents a single node in the game tree
type TreeNode struct {
	// InfoSet is the information set key: what this player knows
	// Format: "board|history|>player|cards"
	// Example: "Kh9s4c7d2s|B10.0|>BB|AhKh"
	InfoSet string

	// Player index (0 or 1) whose turn it is to act
	// Only meaningful for non-terminal nodes
	Player int

	// Current pot size in BB
	Pot float64

	// Legal actions available from this node
	Actions []notation.Action

	// Children nodes indexed by action taken
	Children map[string]*TreeNode

	// Terminal node flags
	IsTerminal bool       // True if this is a terminal node (showdown or fold)
	IsFold     bool       // True if this terminal was reached by a fold, not a showdown
	Payoff     [2]float64 // Net payoffs for each player at terminal nodes (pot share minus own invested chips)
	Invested   [2]float64 // Each player's chips put into the pot during this subgame (startingStack - Stacks)

	// IsChance marks the root of a range-vs-range tree: each child is
	// one sampled combo-pair matchup, weighted by ChanceProbabilities.
	IsChance            bool
	ChanceProbabilities map[string]float64

	// NeedsRollout marks a terminal reached before the board is
	// complete (showdown on the flop or turn). Payoff is not yet known;
	// PlayerCombos plus Board identify the matchup and runout so far,
	// and a driver resolves the expected payoff by sampling or
	// estimating the remaining cards before treating the node as a
	// normal terminal.
	NeedsRollout bool
	PlayerCombos [2]notation.Combo

	// Game state information
	Board  []cards.Card // Community cards
	Stacks [2]float64   // Remaining stacks for each player
}

// ActionKey returns a string key for an action (for use in Children map)
func ActionKey(action notation.Action) string {
	return action.String()
}

// GetInfoSet generates the information set key for a game state and specific hole cards
// InfoSet format: "board|action_history|>acting_player|hole_cards"
// This represents what a single player knows at a decision point
func GetInfoSet(board []cards.Card, history []notation.Action, actingPlayer notation.Position, holeCards []cards.Card) string {
	var parts []string

	// Board cards
	boardStr := ""
	for _, card := range board {
		boardStr += card.String()
	}
	parts = append(parts, boardStr)

	// Action history (empty string if no actions)
	historyStr := ""
	for _, action := range history {
		historyStr += action.String()
	}
	parts = append(parts, historyStr)

	// Acting player indicator
	parts = append(parts, ">"+string(actingPlayer))

	// Hole cards (what this player knows)
	holeCardsStr := ""
	for _, card := range holeCards {
		holeCardsStr += card.String()
	}
	parts = append(parts, holeCardsStr)

	return strings.Join(parts, "|")
}

// NewTerminalNode creates a terminal node (showdown or fold)
func NewTerminalNode(pot float64, payoffs [2]float64, board []cards.Card, stacks [2]float64) *TreeNode {
	return &TreeNode{
		InfoSet:    "", // Terminal nodes don't have info sets
		Player:     -1,
		Pot:        pot,
		Actions:    nil,
		Children:   nil,
		IsTerminal: true,
		Payoff:     payoffs,
		Board:      board,
		Stacks:     stacks,
	}
}

// NewChanceNode creates the root of a range-vs-range tree. Callers add
// one child per valid combo pair and populate ChanceProbabilities with
// that child's weight before handing the tree to a solver.
func NewChanceNode(pot float64, board []cards.Card, stacks [2]float64) *TreeNode {
	return &TreeNode{
		Player:              -1,
		Pot:                 pot,
		Children:            make(map[string]*TreeNode),
		ChanceProbabilities: make(map[string]float64),
		IsChance:            true,
		Board:               board,
		Stacks:              stacks,
	}
}

// NewRolloutNode creates a terminal node whose payoff depends on cards
// not yet dealt (the street's action reached showdown but the board
// has only 3 or 4 cards). It carries the two players' hole cards and
// invested amounts so a driver can resolve the expected payoff later:
// either by sampling a concrete runout (outcome-sampling MCCFR) or by
// estimating it once via Monte Carlo equity and caching it on the node
// (vanilla CFR).
func NewRolloutNode(pot float64, board []cards.Card, stacks [2]float64, combos [2]notation.Combo, invested [2]float64) *TreeNode {
	return &TreeNode{
		Player:       -1,
		Pot:          pot,
		IsTerminal:   true,
		NeedsRollout: true,
		PlayerCombos: combos,
		Board:        board,
		Stacks:       stacks,
		Invested:     invested,
	}
}

// NewDecisionNode creates a decision node where a player must act
func NewDecisionNode(infoSet string, player int, pot float64, actions []notation.Action, board []cards.Card, stacks [2]float64) *TreeNode {
	return &TreeNode{
		InfoSet:    infoSet,
		Player:     player,
		Pot:        pot,
		Actions:    actions,
		Children:   make(map[string]*TreeNode),
		IsTerminal: false,
		Payoff:     [2]float64{0, 0},
		Board:      board,
		Stacks:     stacks,
	}
}

// String returns a human-readable representation of the node
func (n *TreeNode) String() string {
	if n.IsTerminal {
		return fmt.Sprintf("Terminal{pot=%.1fbb, payoffs=[%.1f, %.1f]}", n.Pot, n.Payoff[0], n.Payoff[1])
	}
	return fmt.Sprintf("Decision{player=%d, pot=%.1fbb, actions=%d, infoset=%s}", n.Player, n.Pot, len(n.Actions), n.InfoSet)
}

// IsShowdown returns true if this is a terminal showdown node (as
// opposed to a fold, where exactly one player takes the whole pot).
func (n *TreeNode) IsShowdown() bool {
	return n.IsTerminal && !n.IsFold
}

// NumChildren returns the number of child nodes
func (n *TreeNode) NumChildren() int {
	return len(n.Children)
}

// CountNodes returns the total number of nodes (decision, chance, and
// terminal) reachable from root, inclusive.
func CountNodes(root *TreeNode) int {
	if root == nil {
		return 0
	}
	count := 1
	for _, child := range root.Children {
		count += CountNodes(child)
	}
	return count
}
