package candidate

import (
	"math"

	"github.com/reimu/recommind/kg"
)

// difficultyRange holds the optimal difficulty window for an ability level,
// before strategy offset is applied.
var difficultyRange = map[string][2]float64{
	"struggling":   {0.2, 0.4},
	"beginner":     {0.3, 0.5},
	"intermediate": {0.4, 0.7},
	"advanced":     {0.6, 0.9},
}

var strategyOffset = map[string]float64{
	"gap_filling": -0.1,
	"expansion":   0.1,
}

// EstimateDifficulty estimates a question's effective difficulty against a
// learner's current mastery, per spec.md §4.7.
func EstimateDifficulty(q kg.Question, mastery map[string]float64) float64 {
	var weighted, totalWeight float64
	for kp, w := range q.KPWeights {
		weighted += (1 - mastery[kp]) * w
		totalWeight += w
	}
	base := 0.5
	if totalWeight > 0 {
		base = weighted / totalWeight
	}
	breadth := float64(len(q.KPWeights)) / 3
	if breadth > 1 {
		breadth = 1
	}
	d := base + breadth*0.2
	return clamp01(d)
}

// DifficultyMatch scores how well difficulty fits the ability-level's
// optimal range, adjusted by a per-strategy offset.
func DifficultyMatch(difficulty float64, ability, strategyName string) float64 {
	rng, ok := difficultyRange[ability]
	if !ok {
		rng = difficultyRange["intermediate"]
	}
	offset := strategyOffset[strategyName]
	lo, hi := clamp01(rng[0]+offset), clamp01(rng[1]+offset)
	if lo > hi {
		lo, hi = hi, lo
	}

	if difficulty >= lo && difficulty <= hi {
		center := (lo + hi) / 2
		halfWidth := (hi - lo) / 2
		if halfWidth == 0 {
			return 1
		}
		dist := math.Abs(difficulty - center)
		return 1 - dist/halfWidth
	}

	var distToRange float64
	if difficulty < lo {
		distToRange = lo - difficulty
	} else {
		distToRange = difficulty - hi
	}
	match := 1 - 2*distToRange
	if match < 0 {
		return 0
	}
	return match
}

// MasteredOverlap is the mean of a question's KP weights over every one of
// the learner's mastered KPs (KPs the question doesn't touch count as 0),
// or 0 if the learner has no mastered KPs.
func MasteredOverlap(q kg.Question, mastered map[string]float64) float64 {
	if len(mastered) == 0 {
		return 0
	}
	var sum float64
	for kp := range mastered {
		sum += q.KPWeights[kp]
	}
	return sum / float64(len(mastered))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
