// Package session wires the card, range, tree, and CFR packages into a
// single named solve: it owns the per-solve PRNG, a cooperative
// cancellation context, and session-scoped logging, so the CLI and any
// future callers never touch the solver packages directly.
package session

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/behrlich/poker-solver/pkg/abstraction"
	"github.com/behrlich/poker-solver/pkg/notation"
	"github.com/behrlich/poker-solver/pkg/solver"
	"github.com/behrlich/poker-solver/pkg/tree"
)

// SolveRequest is the external solve contract (spec §6): two ranges in
// the existing range-string grammar (single hand, shorthand, weighted,
// pair/combo/plus ranges, comma-separated), a board, the money already
// in play, and the bet-sizing menu to build the subtree with.
type SolveRequest struct {
	OOPRange             string
	IPRange              string
	Board                string
	Pot                  float64
	StartingStack        float64
	BetSizes             []float64
	MaxBetsPerStreet     map[notation.Street]int
	AllowAllIn           bool
	MinRaiseFraction     float64
	Iterations           int
	CheckInterval        int
	ConvergenceThreshold float64
	Seed                 int64
	Workers              int
	Buckets              int
}

// SolveResponse is the external solve result (spec §6): per-hand
// average strategies plus convergence and tree-size diagnostics.
type SolveResponse struct {
	OOPStrategy         map[string]map[string]float64
	IPStrategy          map[string]map[string]float64
	IterationsPerformed int
	NodesCount          int
	ConvergenceHistory  []float64
	FinalConvergence    float64
	Converged           bool
}

// SolveSession is a named, loggable wrapper around one solve: every log
// line it emits carries a session id so concurrent solves' logs can be
// told apart.
type SolveSession struct {
	ID  string
	log *logrus.Entry
	rng *rand.Rand
}

// New creates a SolveSession logging through logger, seeded for
// reproducible shard RNGs.
func New(logger *logrus.Logger, seed int64) *SolveSession {
	id := uuid.NewString()
	return &SolveSession{
		ID:  id,
		log: logger.WithField("session", id),
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Solve resolves req into a game tree and drives it to convergence or
// its iteration cap, whichever comes first, honoring ctx cancellation
// between iterations, returning the aggregated per-hand response.
func (s *SolveSession) Solve(ctx context.Context, req SolveRequest) (*SolveResponse, error) {
	profile, gs, root, result, err := s.run(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &SolveResponse{
		OOPStrategy:         strategyByHand(profile, string(gs.Players[0].Position)),
		IPStrategy:          strategyByHand(profile, string(gs.Players[1].Position)),
		IterationsPerformed: result.IterationsPerformed,
		NodesCount:          tree.CountNodes(root),
		ConvergenceHistory:  result.History,
		Converged:           result.Converged,
	}
	if n := len(result.History); n > 0 {
		resp.FinalConvergence = result.History[n-1]
	}
	return resp, nil
}

// SolveProfile runs the same orchestration as Solve but returns the raw
// StrategyProfile and resolved GameState rather than the aggregated
// SolveResponse, for callers that need full per-infoset regret/strategy
// state (e.g. the CLI's --save flag, which persists the profile
// verbatim via pkg/solver/serialization.go).
func (s *SolveSession) SolveProfile(ctx context.Context, req SolveRequest) (*solver.StrategyProfile, *notation.GameState, solver.ConvergenceResult, error) {
	profile, gs, _, result, err := s.run(ctx, req)
	return profile, gs, result, err
}

// run does the actual tree-build-and-train work shared by Solve and SolveProfile.
func (s *SolveSession) run(ctx context.Context, req SolveRequest) (*solver.StrategyProfile, *notation.GameState, *tree.TreeNode, solver.ConvergenceResult, error) {
	s.log.WithFields(logrus.Fields{
		"oop_range": req.OOPRange,
		"ip_range":  req.IPRange,
		"board":     req.Board,
		"pot":       req.Pot,
	}).Info("solve start")

	if err := validateRangeString(req.OOPRange); err != nil {
		return nil, nil, nil, solver.ConvergenceResult{}, fmt.Errorf("oop_range: %w", err)
	}
	if err := validateRangeString(req.IPRange); err != nil {
		return nil, nil, nil, solver.ConvergenceResult{}, fmt.Errorf("ip_range: %w", err)
	}

	gs, err := s.buildState(req)
	if err != nil {
		return nil, nil, nil, solver.ConvergenceResult{}, err
	}

	cfg := actionConfigFor(req, gs.Street)
	builder := tree.NewBuilder(cfg)

	if req.Buckets > 0 {
		oppIdx := 1 - gs.ToAct
		bucketer := abstraction.NewBucketer(gs.Board, gs.Players[oppIdx].Range, req.Buckets)
		builder.SetBucketer(bucketer)
		s.log.WithField("buckets", req.Buckets).Debug("card abstraction enabled")
	}

	root, err := builder.BuildRange(gs, gs.Players[0].Range, gs.Players[1].Range)
	if err != nil {
		return nil, nil, nil, solver.ConvergenceResult{}, fmt.Errorf("%w: %v", notation.ErrConflictingBoard, err)
	}
	s.log.WithField("nodes", tree.CountNodes(root)).Debug("tree built")

	iterations := req.Iterations
	if iterations <= 0 {
		iterations = 100000
	}
	checkInterval := req.CheckInterval
	if checkInterval <= 0 {
		checkInterval = iterations / 10
		if checkInterval < 1 {
			checkInterval = 1
		}
	}

	var profile *solver.StrategyProfile
	var result solver.ConvergenceResult

	switch gs.Street {
	case notation.River:
		cfr := solver.NewCFR()
		profile, result = cfr.TrainWithConvergence(ctx, root, iterations, checkInterval, req.ConvergenceThreshold)
	default:
		profile, result = s.solveMCCFR(ctx, root, iterations, req.Workers)
	}

	if result.Converged {
		s.log.WithField("iterations", result.IterationsPerformed).Info("converged")
	} else {
		s.log.WithField("iterations", result.IterationsPerformed).Info("cap reached")
	}

	return profile, gs, root, result, nil
}

// solveMCCFR runs outcome-sampling MCCFR. When req.Workers > 1 it
// splits the iteration budget across independently-seeded shards
// coordinated by errgroup and merges their regret/strategy sums back
// into one profile, since CFR's additive updates are order-insensitive
// within a sampling scheme.
func (s *SolveSession) solveMCCFR(ctx context.Context, root *tree.TreeNode, iterations int, workers int) (*solver.StrategyProfile, solver.ConvergenceResult) {
	if workers < 1 {
		workers = 1
	}

	if workers == 1 {
		mccfr := solver.NewMCCFR(s.rng.Int63())
		profile := trainCancelable(ctx, mccfr, root, iterations)
		return profile, solver.ConvergenceResult{IterationsPerformed: iterations}
	}

	perWorker := iterations / workers
	remainder := iterations % workers

	profiles := make([]*solver.StrategyProfile, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		shardIters := perWorker
		if w < remainder {
			shardIters++
		}
		seed := s.rng.Int63()

		g.Go(func() error {
			mccfr := solver.NewMCCFR(seed)
			profiles[w] = trainCancelable(gctx, mccfr, root, shardIters)
			return nil
		})
	}
	_ = g.Wait()

	merged := solver.NewStrategyProfile()
	for _, p := range profiles {
		if p != nil {
			merged.Merge(p)
		}
	}
	s.log.WithField("workers", workers).Debug("merged parallel shards")
	return merged, solver.ConvergenceResult{IterationsPerformed: iterations}
}

// trainCancelable runs MCCFR iteration-by-iteration so a cancelled ctx
// stops training early instead of always running the full count.
func trainCancelable(ctx context.Context, m *solver.MCCFR, root *tree.TreeNode, iterations int) *solver.StrategyProfile {
	for i := 0; i < iterations; i++ {
		select {
		case <-ctx.Done():
			return m.GetProfile()
		default:
		}
		m.Iterate(root)
	}
	return m.GetProfile()
}

// buildState parses req into a GameState, with OOP always seated first
// (acting first at every root, per the inherited preflop-actor
// convention). Ranges go through notation.ParseRangeString, the same
// weighted grammar validateRangeString already checked them against, so
// a request that passes validation is guaranteed to build (spec §4.2).
func (s *SolveSession) buildState(req SolveRequest) (*notation.GameState, error) {
	board, err := notation.ParseBoard(req.Board)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", notation.ErrInvalidConfig, err)
	}

	oop, err := playerRangeFromString(notation.BTN, req.OOPRange, req.StartingStack)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", notation.ErrInvalidConfig, err)
	}
	ip, err := playerRangeFromString(notation.BB, req.IPRange, req.StartingStack)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", notation.ErrInvalidConfig, err)
	}

	return &notation.GameState{
		Players: []notation.PlayerRange{oop, ip},
		Pot:     req.Pot,
		Board:   board,
		ToAct:   0,
		Street:  notation.GetStreet(len(board)),
	}, nil
}

// playerRangeFromString resolves a request's range string into combos
// plus their weights. A concrete combo (e.g. "AsKd") pins an exact
// suited matchup; anything else goes through the weighted canonical-hand
// grammar so the tree builder's chance node can skew sampling toward the
// heavier-weighted hands (spec §4.2) instead of treating every combo as
// equally likely. This is the same two-step check validateRangeString
// uses, so a request that passes validation is guaranteed to build.
func playerRangeFromString(pos notation.Position, rangeStr string, stack float64) (notation.PlayerRange, error) {
	if combo, matched, err := notation.ParseCombo(rangeStr); matched {
		if err != nil {
			return notation.PlayerRange{}, err
		}
		return notation.PlayerRange{
			Position: pos,
			Range:    []notation.Combo{combo},
			Stack:    stack,
		}, nil
	}

	r, err := notation.ParseRangeString(rangeStr)
	if err != nil {
		return notation.PlayerRange{}, err
	}

	weighted, err := r.Combos()
	if err != nil {
		return notation.PlayerRange{}, err
	}
	if len(weighted) == 0 {
		return notation.PlayerRange{}, notation.ErrEmptyRange
	}

	combos := make([]notation.Combo, len(weighted))
	weights := make(map[notation.Combo]float64, len(weighted))
	for i, wc := range weighted {
		combos[i] = wc.Combo
		weights[wc.Combo] = wc.Weight
	}

	return notation.PlayerRange{
		Position: pos,
		Range:    combos,
		Stack:    stack,
		Weights:  weights,
	}, nil
}

func actionConfigFor(req SolveRequest, street notation.Street) tree.ActionConfig {
	defaults := tree.DefaultConfigForStreet(street)

	betSizes := req.BetSizes
	if len(betSizes) == 0 {
		betSizes = defaults.BetSizes
	}

	maxBets := defaults.MaxBets
	if req.MaxBetsPerStreet != nil {
		if n, ok := req.MaxBetsPerStreet[street]; ok && n > 0 {
			maxBets = n
		}
	}

	minRaiseFraction := req.MinRaiseFraction
	if minRaiseFraction <= 0 {
		minRaiseFraction = defaults.MinRaiseFraction
	}

	return tree.ActionConfig{
		BetSizes:         betSizes,
		AllowCheck:       true,
		AllowCall:        true,
		AllowFold:        true,
		AllowAllIn:       req.AllowAllIn,
		MaxBets:          maxBets,
		MinRaiseFraction: minRaiseFraction,
	}
}

// validateRangeString rejects a range that resolves to no non-zero
// weighted hands, checking the exact same grammar playerRangeFromString
// later builds the tree from (a concrete combo, or else C2's weighted
// canonical-hand range grammar) so a request that passes validation is
// guaranteed to build.
func validateRangeString(rangeStr string) error {
	if _, matched, err := notation.ParseCombo(rangeStr); matched {
		return err
	}

	r, err := notation.ParseRangeString(rangeStr)
	if err != nil {
		return err
	}
	if len(r.NonZero()) == 0 {
		return notation.ErrEmptyRange
	}
	return nil
}

// strategyByHand reduces a profile to canonical-hand -> action ->
// probability for one player position, averaging over every combo that
// maps to the same canonical hand and decision point.
func strategyByHand(profile *solver.StrategyProfile, position string) map[string]map[string]float64 {
	type accum struct {
		sums  map[string]float64
		count int
	}
	byKey := make(map[string]*accum)

	for infoSet, strat := range profile.All() {
		parts, ok := solver.ParseInfoSet(infoSet)
		if !ok || parts.Player != position {
			continue
		}

		handType := solver.CanonicalHandType(parts.Cards)
		key := fmt.Sprintf("%s|%s|%s", parts.History, handType, parts.Board)

		a, exists := byKey[key]
		if !exists {
			a = &accum{sums: make(map[string]float64)}
			byKey[key] = a
		}

		avgStrat := strat.GetAverageStrategy()
		for i, action := range strat.Actions {
			a.sums[action.String()] += avgStrat[i]
		}
		a.count++
	}

	result := make(map[string]map[string]float64, len(byKey))
	for key, a := range byKey {
		probs := make(map[string]float64, len(a.sums))
		for action, sum := range a.sums {
			probs[action] = sum / float64(a.count)
		}
		result[key] = probs
	}
	return result
}
