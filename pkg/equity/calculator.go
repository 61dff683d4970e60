package equity

import (
	"context"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/behrlich/poker-solver/pkg/cards"
	"github.com/behrlich/poker-solver/pkg/notation"
)

// EquityResult represents the outcome of an equity calculation
type EquityResult struct {
	WinPct float64 // Percentage of times hero wins
	TiePct float64 // Percentage of times hero ties
	Equity float64 // Overall equity (win% + tie%/2)
}

// PotentialResult represents hand volatility: the variance of hero's
// equity across sampled turn cards, divided by 0.25 and capped at 1
type PotentialResult struct {
	PositivePot float64 // Normalized variance when mean equity is below 0.5, else 0
	NegativePot float64 // Normalized variance when mean equity is above 0.5, else 0
	ImprovePct  float64 // Normalized variance, whatever the mean equity
}

// CardSet is a 52-bit set of cards, indexed by rank*4+suit. Bitset
// membership tests are the hot path of Monte Carlo sampling, so this
// avoids a map allocation per trial.
type CardSet uint64

func cardIndex(c cards.Card) uint {
	return uint(c.Rank)*4 + uint(c.Suit)
}

func (cs *CardSet) add(c cards.Card) {
	*cs |= 1 << cardIndex(c)
}

func (cs CardSet) contains(c cards.Card) bool {
	return cs&(1<<cardIndex(c)) != 0
}

func newCardSet(cardLists ...[]cards.Card) CardSet {
	var cs CardSet
	for _, list := range cardLists {
		for _, c := range list {
			cs.add(c)
		}
	}
	return cs
}

// Calculator computes hand equity via Monte Carlo sampling of board
// runouts. Trials below ParallelThreshold run on the calling
// goroutine; at or above it, work is split across GOMAXPROCS workers (at most 8)
// with an errgroup and per-worker independently seeded *rand.Rand.
type Calculator struct {
	Trials            int
	ParallelThreshold int
	Rand              *rand.Rand
}

// NewCalculator creates a new equity calculator with production-sized
// defaults: enough trials to keep sampling error well under a
// percentage point on turn/river spots, parallelized once a single
// calculation would otherwise do more than ~2000 evaluations.
func NewCalculator() *Calculator {
	return &Calculator{
		Trials:            20000,
		ParallelThreshold: 2000,
		Rand:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CalculateEquity estimates hero's equity against opponentRange by
// Monte Carlo sampling a uniformly chosen opponent combo and a random
// completion of the board, Trials times. When the board is already
// complete (river), no sampling is needed: every opponent combo is
// evaluated exactly once.
func (c *Calculator) CalculateEquity(hero []cards.Card, board []cards.Card, opponentRange []notation.Combo) EquityResult {
	if len(opponentRange) == 0 {
		return EquityResult{Equity: 0.5}
	}

	if len(board) == 5 {
		return c.calculateRiverEquity(hero, board, opponentRange)
	}

	trials := c.Trials
	if trials <= 0 {
		trials = 20000
	}

	var wins, ties, valid int
	if trials >= c.ParallelThreshold {
		wins, ties, valid = c.runParallel(hero, board, opponentRange, trials)
	} else {
		wins, ties, valid = c.runTrials(hero, board, opponentRange, trials, c.Rand)
	}

	if valid == 0 {
		return EquityResult{Equity: 0.5}
	}

	winPct := float64(wins) / float64(valid)
	tiePct := float64(ties) / float64(valid)
	return EquityResult{
		WinPct: winPct,
		TiePct: tiePct,
		Equity: winPct + tiePct/2.0,
	}
}

// calculateRiverEquity handles a completed board: no runout to
// sample, so every opponent combo is resolved exactly once.
func (c *Calculator) calculateRiverEquity(hero []cards.Card, board []cards.Card, opponentRange []notation.Combo) EquityResult {
	heroHand := cards.Evaluate(append(append([]cards.Card{}, hero...), board...))

	var wins, ties, total int
	for _, combo := range opponentRange {
		oppCards := []cards.Card{combo.Card1, combo.Card2}
		if combo.Card1 == hero[0] || combo.Card1 == hero[1] || combo.Card2 == hero[0] || combo.Card2 == hero[1] {
			continue
		}
		oppHand := cards.Evaluate(append(append([]cards.Card{}, oppCards...), board...))

		cmp := heroHand.Compare(oppHand)
		switch {
		case cmp > 0:
			wins++
		case cmp == 0:
			ties++
		}
		total++
	}

	if total == 0 {
		return EquityResult{Equity: 0.5}
	}

	winPct := float64(wins) / float64(total)
	tiePct := float64(ties) / float64(total)
	return EquityResult{
		WinPct: winPct,
		TiePct: tiePct,
		Equity: winPct + tiePct/2.0,
	}
}

// runTrials runs numSamples Monte Carlo trials sequentially against
// the calling goroutine's rng.
func (c *Calculator) runTrials(hero []cards.Card, board []cards.Card, opponentRange []notation.Combo, numSamples int, rng *rand.Rand) (wins, ties, valid int) {
	used := newCardSet(hero, board)
	available := availableCards(used)

	needed := 5 - len(board)
	finalBoard := make([]cards.Card, 5)
	copy(finalBoard, board)

	for i := 0; i < numSamples; i++ {
		combo := opponentRange[rng.Intn(len(opponentRange))]
		if used.contains(combo.Card1) || used.contains(combo.Card2) {
			continue
		}

		tempUsed := used
		tempUsed.add(combo.Card1)
		tempUsed.add(combo.Card2)

		if !sampleBoard(available, tempUsed, rng, finalBoard[len(board):len(board)+needed]) {
			continue
		}

		heroHand := cards.Evaluate(append(append([]cards.Card{}, hero...), finalBoard...))
		oppHand := cards.Evaluate(append([]cards.Card{combo.Card1, combo.Card2}, finalBoard...))

		cmp := heroHand.Compare(oppHand)
		switch {
		case cmp > 0:
			wins++
		case cmp == 0:
			ties++
		}
		valid++
	}

	return wins, ties, valid
}

// runParallel splits numSamples across GOMAXPROCS workers (at most 8), each with
// its own *rand.Rand seeded from the calculator's rng so runs stay
// reproducible when the calculator's source is seeded deterministically.
func (c *Calculator) runParallel(hero []cards.Card, board []cards.Card, opponentRange []notation.Combo, numSamples int) (wins, ties, valid int) {
	workers := runtime.GOMAXPROCS(0)
	if workers > 8 {
		workers = 8
	}
	if workers < 1 {
		workers = 1
	}

	perWorker := numSamples / workers
	remainder := numSamples % workers

	type partial struct{ wins, ties, valid int }
	results := make([]partial, workers)

	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		w := w
		samples := perWorker
		if w < remainder {
			samples++
		}
		seed := c.Rand.Int63()

		g.Go(func() error {
			workerRng := rand.New(rand.NewSource(seed))
			wWins, wTies, wValid := c.runTrials(hero, board, opponentRange, samples, workerRng)
			results[w] = partial{wWins, wTies, wValid}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		wins += r.wins
		ties += r.ties
		valid += r.valid
	}
	return wins, ties, valid
}

// availableCards returns all 52 cards not present in used, in a fixed
// deterministic order so index-based sampling is reproducible given a
// seeded rng.
func availableCards(used CardSet) []cards.Card {
	avail := make([]cards.Card, 0, 52)
	for suit := cards.Spades; suit <= cards.Clubs; suit++ {
		for rank := cards.Two; rank <= cards.Ace; rank++ {
			c := cards.Card{Rank: rank, Suit: suit}
			if !used.contains(c) {
				avail = append(avail, c)
			}
		}
	}
	return avail
}

// sampleBoard fills dst with len(dst) cards drawn without replacement
// from available, skipping any already in excl. Returns false if
// available doesn't have enough unused cards left.
func sampleBoard(available []cards.Card, excl CardSet, rng *rand.Rand, dst []cards.Card) bool {
	if len(dst) == 0 {
		return true
	}

	candidates := make([]cards.Card, 0, len(available))
	for _, c := range available {
		if !excl.contains(c) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) < len(dst) {
		return false
	}

	for i := range dst {
		idx := rng.Intn(len(candidates) - i)
		dst[i] = candidates[idx]
		candidates[idx] = candidates[len(candidates)-1-i]
	}
	return true
}

// CalculatePotential estimates hand improvement potential on the flop
// by sampling random turn cards and measuring how hero's Monte Carlo
// equity varies across them. A drawing hand swings wildly turn to
// turn (high variance); a solid made hand barely moves. Only
// meaningful on the flop (3 board cards) - turn and river return a
// zero result since there's no further runout to vary over.
func (c *Calculator) CalculatePotential(hero []cards.Card, board []cards.Card, opponentRange []notation.Combo) PotentialResult {
	if len(board) != 3 {
		return PotentialResult{}
	}

	used := newCardSet(hero, board)
	available := availableCards(used)

	const sampleTurns = 15
	if len(available) < sampleTurns {
		return PotentialResult{}
	}

	turns := make([]cards.Card, sampleTurns)
	if !sampleBoard(available, CardSet(0), c.Rand, turns) {
		return PotentialResult{}
	}

	var equities []float64
	for _, turn := range turns {
		turnBoard := append(append([]cards.Card{}, board...), turn)
		result := c.CalculateEquity(hero, turnBoard, opponentRange)
		equities = append(equities, result.Equity)
	}

	if len(equities) == 0 {
		return PotentialResult{}
	}

	mean := 0.0
	for _, eq := range equities {
		mean += eq
	}
	mean /= float64(len(equities))

	variance := 0.0
	for _, eq := range equities {
		diff := eq - mean
		variance += diff * diff
	}
	variance /= float64(len(equities))

	// Max theoretical variance (coin-flip equities bouncing between 0
	// and 1 every runout) is 0.25; normalize against that ceiling.
	normalizedVar := variance / 0.25
	if normalizedVar > 1.0 {
		normalizedVar = 1.0
	}

	var positivePot, negativePot float64
	if mean < 0.5 {
		positivePot = normalizedVar
	}
	if mean > 0.5 {
		negativePot = normalizedVar
	}

	return PotentialResult{
		PositivePot: positivePot,
		NegativePot: negativePot,
		ImprovePct:  normalizedVar,
	}
}
