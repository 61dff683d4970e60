// Package analyzer provides board-texture classification,
// hand-strength/blocker analytics, and computational-cost estimation
// on top of the core solver components. None of it feeds back into
// CFR training — it is read-only analysis of a board, a hand, or a
// GameConfig.
package analyzer

import (
	"github.com/behrlich/poker-solver/pkg/cards"
)

// BoardTexture classifies how a board interacts with ranges.
type BoardTexture uint8

const (
	// Dry boards have no pair, flush, or obvious straight draw.
	Dry BoardTexture = iota
	HighCards
	Connected
	Monotone
	Paired
)

// String returns the texture's name.
func (t BoardTexture) String() string {
	switch t {
	case Paired:
		return "paired"
	case Monotone:
		return "monotone"
	case Connected:
		return "connected"
	case HighCards:
		return "high_cards"
	case Dry:
		return "dry"
	default:
		return "unknown"
	}
}

// ClassifyTexture classifies a board of 3 or more cards by first-match
// precedence: paired, monotone, connected, high-cards, else dry.
// Boards with fewer than 3 cards have no texture and return Dry.
func ClassifyTexture(board []cards.Card) BoardTexture {
	if len(board) < 3 {
		return Dry
	}

	ranks := make(map[cards.Rank]int, len(board))
	suits := make(map[cards.Suit]int, len(board))
	for _, c := range board {
		ranks[c.Rank]++
		suits[c.Suit]++
	}

	for _, count := range ranks {
		if count > 1 {
			return Paired
		}
	}
	if len(suits) == 1 {
		return Monotone
	}
	if isConnected(board) {
		return Connected
	}
	if hasHighCard(board) {
		return HighCards
	}
	return Dry
}

// isConnected reports whether any two board ranks sit within 2 of each
// other in rank order.
func isConnected(board []cards.Card) bool {
	idx := make([]int, len(board))
	for i, c := range board {
		idx[i] = int(c.Rank)
	}
	for i := 0; i < len(idx); i++ {
		for j := i + 1; j < len(idx); j++ {
			diff := idx[i] - idx[j]
			if diff < 0 {
				diff = -diff
			}
			if diff <= 2 {
				return true
			}
		}
	}
	return false
}

// hasHighCard reports whether any board card is a jack or better.
func hasHighCard(board []cards.Card) bool {
	for _, c := range board {
		if c.Rank >= cards.Jack {
			return true
		}
	}
	return false
}
