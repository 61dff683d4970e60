package notation

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// rangeRanks orders the 13 ranks from high to low, matching the
// canonical-hand ordering used throughout the range grammar below
// ("A" is index 0, "2" is index 12).
var rangeRanks = []string{"A", "K", "Q", "J", "T", "9", "8", "7", "6", "5", "4", "3", "2"}

func rangeRankIndex(r string) (int, bool) {
	for i, rr := range rangeRanks {
		if rr == r {
			return i, true
		}
	}
	return -1, false
}

// WeightedHand pairs a canonical hand symbol with its range weight.
type WeightedHand struct {
	Hand   string
	Weight float64
}

// Range is a weighted distribution over the 169 canonical starting
// hands. All 169 keys are always present; weights need not sum to 1 —
// Sample normalizes over whatever non-zero weight exists.
type Range struct {
	weights map[string]float64
}

// NewRange returns a Range with all 169 canonical hands present and
// weighted zero.
func NewRange() *Range {
	r := &Range{weights: make(map[string]float64, 169)}
	for _, hand := range allCanonicalHands() {
		r.weights[hand] = 0.0
	}
	return r
}

// allCanonicalHands generates the 169 canonical hand symbols: 13
// pairs, then 78 suited and 78 offsuit combinations, high rank first.
func allCanonicalHands() []string {
	hands := make([]string, 0, 169)
	for _, rank := range rangeRanks {
		hands = append(hands, rank+rank)
	}
	for i, rank1 := range rangeRanks {
		for _, rank2 := range rangeRanks[i+1:] {
			hands = append(hands, rank1+rank2+"s")
			hands = append(hands, rank1+rank2+"o")
		}
	}
	return hands
}

// ParseRangeString parses a range string into a weighted Range.
// Grammar (comma-separated tokens, unknown tokens skipped silently):
//   - single hand: "AKs", "AA"
//   - shorthand: "AK" (sets both AKs and AKo)
//   - weighted hand: "AA:0.5"
//   - pair range: "AA-JJ"
//   - combo range: "AKs-ATs"
//   - plus range: "AKo+"
func ParseRangeString(rangeStr string) (*Range, error) {
	r := NewRange()
	rangeStr = strings.TrimSpace(rangeStr)
	if rangeStr == "" {
		return r, nil
	}

	for _, part := range strings.Split(rangeStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		switch {
		case strings.Contains(part, ":"):
			if err := r.addWeightedHand(part); err != nil {
				return nil, fmt.Errorf("error parsing weighted hand %q: %w", part, err)
			}
		case strings.Contains(part, "-") && !strings.HasSuffix(part, "s") && !strings.HasSuffix(part, "o"):
			r.addPairRange(part)
		case strings.Contains(part, "-"):
			r.addComboRange(part)
		case strings.HasSuffix(part, "+"):
			r.addPlusRange(part)
		default:
			r.addSingleHand(part)
		}
	}

	return r, nil
}

func (r *Range) addWeightedHand(part string) error {
	pieces := strings.SplitN(part, ":", 2)
	if len(pieces) != 2 {
		return fmt.Errorf("invalid weighted hand %q", part)
	}
	hand := strings.TrimSpace(pieces[0])
	weight, err := strconv.ParseFloat(strings.TrimSpace(pieces[1]), 64)
	if err != nil {
		return fmt.Errorf("invalid weight in %q: %w", part, err)
	}
	if _, ok := r.weights[hand]; ok {
		r.weights[hand] = weight
	}
	return nil
}

// addPairRange adds a pocket-pair range like "AA-JJ".
func (r *Range) addPairRange(rangeStr string) {
	parts := strings.SplitN(rangeStr, "-", 2)
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) == 0 {
		return
	}
	startIdx, ok1 := rangeRankIndex(string(parts[0][0]))
	endIdx, ok2 := rangeRankIndex(string(parts[1][0]))
	if !ok1 || !ok2 {
		return
	}
	for i := startIdx; i <= endIdx; i++ {
		pair := rangeRanks[i] + rangeRanks[i]
		if _, ok := r.weights[pair]; ok {
			r.weights[pair] = 1.0
		}
	}
}

// addComboRange adds a non-pair range like "AKs-ATs".
func (r *Range) addComboRange(rangeStr string) {
	parts := strings.SplitN(rangeStr, "-", 2)
	if len(parts) != 2 {
		return
	}
	start, end := parts[0], parts[1]
	if !strings.HasSuffix(start, "s") && !strings.HasSuffix(start, "o") {
		return
	}

	suitType := start[len(start)-1:]
	startHand := start[:len(start)-1]
	endHand := end
	if strings.HasSuffix(endHand, "s") || strings.HasSuffix(endHand, "o") {
		endHand = endHand[:len(endHand)-1]
	}
	if len(startHand) < 2 || len(endHand) < 2 {
		return
	}

	firstRank := string(startHand[0])
	startSecond, ok1 := rangeRankIndex(string(startHand[1]))
	endSecond, ok2 := rangeRankIndex(string(endHand[1]))
	if !ok1 || !ok2 {
		return
	}

	for i := startSecond; i <= endSecond; i++ {
		hand := firstRank + rangeRanks[i] + suitType
		if _, ok := r.weights[hand]; ok {
			r.weights[hand] = 1.0
		}
	}
}

// addPlusRange adds a plus-notation range like "AKo+".
func (r *Range) addPlusRange(rangeStr string) {
	base := strings.TrimSuffix(rangeStr, "+")
	if len(base) < 2 {
		return
	}

	firstRank := string(base[0])
	secondRank := string(base[1])
	suitType := "o"
	if len(base) > 2 {
		suitType = base[2:]
	}

	firstIdx, ok1 := rangeRankIndex(firstRank)
	secondIdx, ok2 := rangeRankIndex(secondRank)
	if !ok1 || !ok2 {
		return
	}

	for i := 0; i <= secondIdx; i++ {
		if i == firstIdx {
			continue
		}
		hand := firstRank + rangeRanks[i] + suitType
		if _, ok := r.weights[hand]; ok {
			r.weights[hand] = 1.0
		}
	}
}

// addSingleHand adds one hand, or both suited/offsuit variants of a
// two-rank shorthand like "AK".
func (r *Range) addSingleHand(hand string) {
	if _, ok := r.weights[hand]; ok {
		r.weights[hand] = 1.0
		return
	}
	if len(hand) != 2 {
		return
	}
	if _, ok := r.weights[hand+"s"]; ok {
		r.weights[hand+"s"] = 1.0
	}
	if _, ok := r.weights[hand+"o"]; ok {
		r.weights[hand+"o"] = 1.0
	}
}

// WeightedCombo pairs a concrete two-card combination with the range
// weight of the canonical hand it belongs to.
type WeightedCombo struct {
	Combo  Combo
	Weight float64
}

// Combos expands every non-zero-weighted canonical hand in the range
// into its concrete combinations, each carrying that hand's weight.
// This is how a parsed Range (e.g. "AA:0.7,KK:0.3") becomes the
// combo/weight pairs a tree builder's chance node samples over.
func (r *Range) Combos() ([]WeightedCombo, error) {
	var combos []WeightedCombo
	for _, wh := range r.NonZero() {
		expanded, err := ExpandHand(wh.Hand)
		if err != nil {
			return nil, fmt.Errorf("error expanding hand %q: %w", wh.Hand, err)
		}
		for _, c := range expanded {
			combos = append(combos, WeightedCombo{Combo: c, Weight: wh.Weight})
		}
	}
	return combos, nil
}

// NonZero returns every hand with positive weight.
func (r *Range) NonZero() []WeightedHand {
	hands := make([]WeightedHand, 0, len(r.weights))
	for _, hand := range allCanonicalHands() {
		if w := r.weights[hand]; w > 0 {
			hands = append(hands, WeightedHand{Hand: hand, Weight: w})
		}
	}
	return hands
}

// ComboCount returns the sum of the range's weights. This matches
// the Python original's get_total_combos, which sums raw weights
// rather than counting concrete card combinations — see
// ConcreteComboCount for the textbook combinatorial count.
func (r *Range) ComboCount() float64 {
	var total float64
	for _, w := range r.weights {
		total += w
	}
	return total
}

// ConcreteComboCount returns the weighted count of concrete two-card
// combinations the range represents: 6 per pair, 4 per suited hand,
// 12 per offsuit hand.
func (r *Range) ConcreteComboCount() float64 {
	var total float64
	for hand, w := range r.weights {
		if w <= 0 {
			continue
		}
		switch {
		case len(hand) == 2:
			total += w * 6
		case strings.HasSuffix(hand, "s"):
			total += w * 4
		case strings.HasSuffix(hand, "o"):
			total += w * 12
		}
	}
	return total
}

// Weight returns the raw weight assigned to a canonical hand (0 if
// the hand is unknown or unweighted).
func (r *Range) Weight(hand string) float64 {
	return r.weights[hand]
}

// Sample draws one canonical hand from the range's non-zero weights,
// normalized to a probability distribution. Returns an error if the
// range has no positive weight.
func (r *Range) Sample(rng *rand.Rand) (string, error) {
	nonZero := r.NonZero()
	if len(nonZero) == 0 {
		return "", fmt.Errorf("%w: range has no non-zero weights", ErrEmptyRange)
	}

	var total float64
	for _, wh := range nonZero {
		total += wh.Weight
	}

	target := rng.Float64() * total
	var cumulative float64
	for _, wh := range nonZero {
		cumulative += wh.Weight
		if target <= cumulative {
			return wh.Hand, nil
		}
	}
	return nonZero[len(nonZero)-1].Hand, nil
}
