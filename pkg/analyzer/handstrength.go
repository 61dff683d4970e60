package analyzer

import (
	"github.com/behrlich/poker-solver/pkg/cards"
	"github.com/behrlich/poker-solver/pkg/equity"
	"github.com/behrlich/poker-solver/pkg/notation"
)

// HandStrength is a detailed strength report for one hero hand on a
// board, against an opponent range. Field names follow the
// HandStrength record this analysis is grounded on.
type HandStrength struct {
	AbsoluteStrength float64  // hand category / best category, 0-1
	RelativeStrength float64  // fraction of opponentRange hero beats outright on the cards seen so far
	EquityVsRange    float64  // Monte Carlo equity vs opponentRange, including runouts
	NutPotential     float64  // probability hand strength improves (flop only; 0 on turn/river)
	BoardInteraction float64  // how directly hero's cards connect with the board, 0-1
	Blockers         []string // hero cards that reduce the opponent's strong combos
}

// Analyzer bundles an equity calculator so handstrength analysis can
// reuse C3's Monte Carlo machinery instead of re-implementing it.
type Analyzer struct {
	Equity *equity.Calculator
}

// NewAnalyzer creates an Analyzer backed by a fresh equity Calculator.
func NewAnalyzer() *Analyzer {
	return &Analyzer{Equity: equity.NewCalculator()}
}

// Analyze computes a full HandStrength report for hero's two cards
// against opponentRange on the given board (0, 3, 4, or 5 cards).
func (a *Analyzer) Analyze(hero []cards.Card, board []cards.Card, opponentRange []notation.Combo) HandStrength {
	hs := HandStrength{
		Blockers: blockers(hero, board),
	}

	if len(board) >= 3 {
		hs.AbsoluteStrength = absoluteStrength(hero, board)
		hs.RelativeStrength = relativeStrength(hero, board, opponentRange)
		hs.BoardInteraction = boardInteraction(hero, board)
	}

	if len(opponentRange) > 0 {
		hs.EquityVsRange = a.Equity.CalculateEquity(hero, board, opponentRange).Equity
		hs.NutPotential = a.Equity.CalculatePotential(hero, board, opponentRange).ImprovePct
	}

	return hs
}

// absoluteStrength normalizes the hero's best 5-card category to 0-1
// (high card = 0, straight flush = 1).
func absoluteStrength(hero []cards.Card, board []cards.Card) float64 {
	all := append(append([]cards.Card{}, hero...), board...)
	value := cards.EvaluateAny(all)
	return float64(value.Rank) / float64(cards.StraightFlush)
}

// relativeStrength is the fraction of opponentRange hero's current
// made hand beats outright on the cards dealt so far — a snapshot
// measure, distinct from EquityVsRange which also averages over
// future runouts.
func relativeStrength(hero []cards.Card, board []cards.Card, opponentRange []notation.Combo) float64 {
	if len(opponentRange) == 0 {
		return 0.5
	}
	heroValue := cards.EvaluateAny(append(append([]cards.Card{}, hero...), board...))

	var beats, total int
	for _, combo := range opponentRange {
		if collides(combo, hero) || collides(combo, board) {
			continue
		}
		oppCards := append([]cards.Card{combo.Card1, combo.Card2}, board...)
		oppValue := cards.EvaluateAny(oppCards)
		if heroValue.Compare(oppValue) > 0 {
			beats++
		}
		total++
	}
	if total == 0 {
		return 0.5
	}
	return float64(beats) / float64(total)
}

func collides(combo notation.Combo, cs []cards.Card) bool {
	for _, c := range cs {
		if combo.Card1 == c || combo.Card2 == c {
			return true
		}
	}
	return false
}

// boardInteraction scores how directly hero's hole cards connect with
// the board: a rank match (pair/trips with the board) counts heavily,
// a suit match toward a flush counts partially.
func boardInteraction(hero []cards.Card, board []cards.Card) float64 {
	var score float64
	for _, h := range hero {
		for _, b := range board {
			if h.Rank == b.Rank {
				score += 0.5
			}
			if h.Suit == b.Suit {
				score += 0.15
			}
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// blockers identifies hero cards likely to reduce the combos of a
// strong opponent hand: broadway cards (blocking big pairs and
// broadway-to-broadway holdings) and any card matching the board's
// highest rank (blocking top pair / top set).
func blockers(hero []cards.Card, board []cards.Card) []string {
	var topBoardRank cards.Rank
	hasBoard := len(board) > 0
	for _, b := range board {
		if b.Rank > topBoardRank {
			topBoardRank = b.Rank
		}
	}

	var result []string
	for _, h := range hero {
		if h.Rank >= cards.Jack || (hasBoard && h.Rank == topBoardRank) {
			result = append(result, h.String())
		}
	}
	return result
}
