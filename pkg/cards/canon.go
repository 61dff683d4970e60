package cards

// CanonicalHand reduces two hole cards to one of the 169 starting-hand
// symbols: "RR" for a pocket pair, "R1R2s" for suited, "R1R2o" for
// offsuit, with R1 always the higher rank.
func CanonicalHand(c1, c2 Card) string {
	hi, lo := c1, c2
	if lo.Rank > hi.Rank {
		hi, lo = lo, hi
	}

	if hi.Rank == lo.Rank {
		return hi.Rank.String() + lo.Rank.String()
	}
	if hi.Suit == lo.Suit {
		return hi.Rank.String() + lo.Rank.String() + "s"
	}
	return hi.Rank.String() + lo.Rank.String() + "o"
}
