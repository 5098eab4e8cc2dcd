// Package rank implements the Ranker (C8): multi-criterion weighted
// scoring of candidate questions, seeded jitter for reproducible
// tie-breaking, mixed-strategy merging, and the cold-start bypass.
// Grounded on simple_system.py's RecommendationSystem.recommend_questions
// and its strategy dispatch.
package rank

import (
	"hash/fnv"
	"math/rand"
	"sort"

	"github.com/reimu/recommind/candidate"
	"github.com/reimu/recommind/kg"
)

// Weights are the per-criterion coefficients applied to a candidate's
// coverage/relevance/diversity/adaptability score components.
type Weights struct {
	Coverage     float64
	Relevance    float64
	Diversity    float64
	Adaptability float64
}

var strategyWeights = map[string]Weights{
	"gap_filling":   {Coverage: 0.5, Relevance: 0.2, Diversity: 0.1, Adaptability: 0.2},
	"expansion":     {Coverage: 0.3, Relevance: 0.2, Diversity: 0.3, Adaptability: 0.2},
	"consolidation": {Coverage: 0.4, Relevance: 0.3, Diversity: 0.1, Adaptability: 0.2},
	"balanced":      {Coverage: 0.4, Relevance: 0.25, Diversity: 0.15, Adaptability: 0.2},
}

const (
	jitterLo = 0.95
	jitterHi = 0.05 // half the range width; jitter = jitterLo + rand()*jitterHi*2, see jitter below
)

// RecommendedQuestion is the Ranker's external output shape, matching the
// RecommendedQuestion item described in spec.md §6.
type RecommendedQuestion struct {
	QuestionID      string
	Prompt          string
	Options         [4]string
	KPWeights       map[string]float64
	Difficulty      float64
	StrategySource  string
	IsMixedStrategy bool
	Score           float64
}

// Seed derives a deterministic PRNG seed from a learner id, batch count,
// and a per-call nonce, per spec.md §4.8.
func Seed(learnerID string, batchCount int, callNonce uint64) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(learnerID))
	return int64(h.Sum64() ^ uint64(batchCount) ^ callNonce)
}

// score computes a candidate's base weighted score (no jitter).
func score(c candidate.Candidate, strategyName string) float64 {
	w, ok := strategyWeights[strategyName]
	if !ok {
		w = strategyWeights["balanced"]
	}
	return w.Coverage*c.Coverage + w.Relevance*c.Relevance + w.Diversity*c.Diversity + w.Adaptability*c.Adaptability
}

// jitter returns the next multiplier in [0.95, 1.05) drawn from rng, so the
// sequence is deterministic for a given seed.
func jitter(rng *rand.Rand) float64 {
	return jitterLo + rng.Float64()*0.1
}

// rankOne scores, jitters, sorts (descending), and de-duplicates by qid,
// returning up to n items from a single-strategy candidate pool.
func rankOne(cands []candidate.Candidate, strategyName string, rng *rand.Rand, n int, mixed bool) []RecommendedQuestion {
	type scoredItem struct {
		cand  candidate.Candidate
		score float64
	}
	scored := make([]scoredItem, len(cands))
	for i, c := range cands {
		scored[i] = scoredItem{cand: c, score: score(c, strategyName) * jitter(rng)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	seen := make(map[string]bool)
	out := make([]RecommendedQuestion, 0, n)
	for _, s := range scored {
		if len(out) >= n {
			break
		}
		if seen[s.cand.Question.ID] {
			continue
		}
		seen[s.cand.Question.ID] = true
		out = append(out, RecommendedQuestion{
			QuestionID:      s.cand.Question.ID,
			Prompt:          s.cand.Question.Prompt,
			Options:         s.cand.Question.Options,
			KPWeights:       s.cand.Question.KPWeights,
			Difficulty:      s.cand.Question.Difficulty,
			StrategySource:  strategyName,
			IsMixedStrategy: mixed,
			Score:           s.score,
		})
	}
	return out
}

// Single ranks a single-strategy candidate pool and returns the top n,
// de-duplicated by qid.
func Single(cands []candidate.Candidate, strategyName string, seed int64, n int) []RecommendedQuestion {
	rng := rand.New(rand.NewSource(seed))
	return rankOne(cands, strategyName, rng, n, false)
}

// mixRatios is the allocation-fraction table keyed by primary strategy,
// then by the strategy being allocated a share. A missing entry means a
// zero ratio (not run).
var mixRatios = map[string]map[string]float64{
	"gap_filling": {
		"gap_filling":   0.6,
		"consolidation": 0.3,
		"balanced":      0.1,
	},
	"expansion": {
		"gap_filling": 0.2,
		"expansion":   0.6,
		"balanced":    0.2,
	},
	"consolidation": {
		"gap_filling":   0.3,
		"consolidation": 0.5,
		"expansion":     0.2,
	},
	"balanced": {
		"gap_filling":   0.2,
		"consolidation": 0.3,
		"expansion":     0.1,
		"balanced":      0.4,
	},
}

// mergeOrder fixes the iteration order used when merging per-strategy
// allocations, independent of which strategy is primary.
var mergeOrder = []string{"gap_filling", "consolidation", "expansion", "balanced"}

// Allocations computes each strategy's integer share of n slots for the
// given primary strategy, per spec.md §4.8's ratio table: each non-zero
// ratio gets at least 1 slot while slots remain, and any rounding
// remainder is assigned to primary.
func Allocations(primary string, n int) map[string]int {
	ratios := mixRatios[primary]
	out := make(map[string]int, len(ratios))
	if n <= 0 || len(ratios) == 0 {
		return out
	}

	nonzero := 0
	for _, r := range ratios {
		if r > 0 {
			nonzero++
		}
	}

	sum := 0
	for _, name := range mergeOrder {
		r, ok := ratios[name]
		if !ok || r <= 0 {
			continue
		}
		a := int(r*float64(n) + 0.5)
		if a == 0 && nonzero <= n {
			a = 1
		}
		out[name] = a
		sum += a
	}

	remainder := n - sum
	if remainder != 0 {
		out[primary] += remainder
		if out[primary] < 0 {
			out[primary] = 0
		}
	}
	return out
}

// Mixed merges per-strategy candidate pools according to primary's
// allocation table, de-duplicating by qid (first occurrence wins) in a
// fixed merge order, then tops up with balanced candidates if short of n.
func Mixed(pools map[string][]candidate.Candidate, primary string, learnerID string, batchCount int, callNonce uint64, n int) []RecommendedQuestion {
	allocations := Allocations(primary, n)
	seed := Seed(learnerID, batchCount, callNonce)
	rng := rand.New(rand.NewSource(seed))

	seen := make(map[string]bool)
	var out []RecommendedQuestion
	for _, name := range mergeOrder {
		count := allocations[name]
		if count <= 0 {
			continue
		}
		ranked := rankOne(pools[name], name, rng, count, true)
		for _, r := range ranked {
			if seen[r.QuestionID] {
				continue
			}
			seen[r.QuestionID] = true
			out = append(out, r)
		}
	}

	if len(out) < n {
		topUp := rankOne(pools["balanced"], "balanced", rng, n-len(out)+len(seen), true)
		for _, r := range topUp {
			if len(out) >= n {
				break
			}
			if seen[r.QuestionID] {
				continue
			}
			seen[r.QuestionID] = true
			out = append(out, r)
		}
	}
	return out
}

// ColdStart returns up to n questions touching any introductory KP, bank
// order, excluding already-attempted qids.
func ColdStart(cat *kg.Catalog, introductory []string, attempted map[string]bool, n int) []RecommendedQuestion {
	introSet := make(map[string]bool, len(introductory))
	for _, kp := range introductory {
		introSet[kp] = true
	}

	var out []RecommendedQuestion
	seen := make(map[string]bool)
	for _, q := range cat.AllQuestions() {
		if len(out) >= n {
			break
		}
		if attempted[q.ID] || seen[q.ID] {
			continue
		}
		touches := false
		for kp := range q.KPWeights {
			if introSet[kp] {
				touches = true
				break
			}
		}
		if !touches {
			continue
		}
		seen[q.ID] = true
		out = append(out, RecommendedQuestion{
			QuestionID: q.ID,
			Prompt:     q.Prompt,
			Options:    q.Options,
			KPWeights:  q.KPWeights,
			Difficulty: q.Difficulty,
		})
	}
	return out
}
