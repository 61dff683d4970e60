package tree

import (
	"github.com/behrlich/poker-solver/pkg/notation"
)

// ActionConfig specifies what actions are available at each decision point
type ActionConfig struct {
	// BetSizes are pot-relative bet (and raise) sizes (e.g., 0.5 = 50% pot)
	BetSizes []float64

	// AllowCheck is true if checking is a legal action
	AllowCheck bool

	// AllowCall is true if calling is a legal action (facing a bet)
	AllowCall bool

	// AllowFold is true if folding is a legal action (facing a bet)
	AllowFold bool

	// AllowAllIn appends an all-in size whenever it isn't already present
	AllowAllIn bool

	// MaxBets caps the number of bet/raise actions on this street;
	// bet_count >= MaxBets suppresses any further raise, leaving only
	// fold/call.
	MaxBets int

	// MinRaiseFraction is the minimum raise size, expressed as a
	// fraction of the current pot added on top of the call amount.
	MinRaiseFraction float64
}

// GenerateActions generates all legal actions for a given game state.
// betCount is the number of bet/raise actions already made on this
// street; it gates whether facing a bet still permits a raise.
func GenerateActions(pot float64, stack float64, lastAction *notation.Action, betCount int, config ActionConfig) []notation.Action {
	var actions []notation.Action

	// Facing a bet: fold, call, and - if the street's bet cap allows it -
	// raise sizes built from the configured pot fractions.
	if lastAction != nil && (lastAction.Type == notation.Bet || lastAction.Type == notation.Raise) {
		toCall := lastAction.Amount
		if toCall > stack {
			toCall = stack
		}

		if config.AllowFold {
			actions = append(actions, notation.Action{Type: notation.Fold})
		}
		if config.AllowCall {
			actions = append(actions, notation.Action{Type: notation.Call})
		}

		if betCount >= config.MaxBets {
			return actions
		}

		effectiveStack := stack
		postCallPot := pot + toCall
		minRaiseTotal := toCall + config.MinRaiseFraction*pot

		seenAmounts := make(map[float64]bool)
		for _, fraction := range config.BetSizes {
			raiseOnTop := fraction * postCallPot
			total := toCall + raiseOnTop
			if total > effectiveStack {
				total = effectiveStack
			}
			if total < minRaiseTotal || total <= toCall+0.01 {
				continue
			}
			if seenAmounts[total] {
				continue
			}
			seenAmounts[total] = true
			actions = append(actions, notation.Action{Type: notation.Raise, Amount: total})
		}

		if config.AllowAllIn && effectiveStack > toCall+0.01 && !seenAmounts[effectiveStack] {
			actions = append(actions, notation.Action{Type: notation.Raise, Amount: effectiveStack})
		}

		return actions
	}

	// Nobody has bet yet: check or bet.
	if config.AllowCheck {
		actions = append(actions, notation.Action{Type: notation.Check})
	}

	if betCount >= config.MaxBets {
		return actions
	}

	seenAmounts := make(map[float64]bool)
	for _, sizeFraction := range config.BetSizes {
		betAmount := pot * sizeFraction

		if betAmount >= stack {
			betAmount = stack
		}
		if betAmount < 0.01 || seenAmounts[betAmount] {
			continue
		}
		seenAmounts[betAmount] = true

		actions = append(actions, notation.Action{
			Type:   notation.Bet,
			Amount: betAmount,
		})
	}

	if config.AllowAllIn && stack > 0.01 && !seenAmounts[stack] {
		actions = append(actions, notation.Action{
			Type:   notation.Bet,
			Amount: stack,
		})
	}

	return actions
}

// DefaultRiverConfig returns a reasonable default action config for river play
// Allows check or bet with 2-3 standard sizes
func DefaultRiverConfig() ActionConfig {
	return ActionConfig{
		BetSizes:         []float64{0.5, 0.75, 1.5}, // 50%, 75%, 150% pot
		AllowCheck:       true,
		AllowCall:        true,
		AllowFold:        true,
		AllowAllIn:       true,
		MaxBets:          1,
		MinRaiseFraction: 0.5,
	}
}

// DefaultConfigForStreet returns the default bet-size menu and per-street
// cap from the external interface defaults (bet_sizes, max_bets_per_street).
func DefaultConfigForStreet(street notation.Street) ActionConfig {
	cfg := ActionConfig{
		BetSizes:         []float64{0.33, 0.5, 0.75, 1.0, 1.5, 2.0},
		AllowCheck:       true,
		AllowCall:        true,
		AllowFold:        true,
		AllowAllIn:       true,
		MinRaiseFraction: 0.5,
	}
	switch street {
	case notation.Preflop:
		cfg.MaxBets = 4
	case notation.Flop:
		cfg.MaxBets = 3
	case notation.Turn:
		cfg.MaxBets = 2
	case notation.River:
		cfg.MaxBets = 1
	default:
		cfg.MaxBets = 1
	}
	return cfg
}

// GetLastAction returns the last action from action history, or nil if empty
func GetLastAction(history []notation.Action) *notation.Action {
	if len(history) == 0 {
		return nil
	}
	return &history[len(history)-1]
}
