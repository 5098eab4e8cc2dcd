// Package candidate implements the Candidate Generator (C7): given a
// learner's learning state and a selected strategy, it produces a target
// knowledge-point set and, per target, a scored pool of eligible
// questions. Grounded on simple_system.py's
// RecommendationSystem._consolidation_recommend / _gap_filling_recommend /
// _expansion_recommend / _balanced_recommend and
// _estimate_question_difficulty / _calculate_difficulty_match.
package candidate

import (
	"sort"

	"github.com/reimu/recommind/analysis"
	"github.com/reimu/recommind/kg"
)

const questionsPerTarget = 3

// Candidate is one (question, target knowledge point) pairing along with
// the scoring inputs the Ranker (C8) needs.
type Candidate struct {
	Question       kg.Question
	TargetKP       string
	Coverage       float64
	Relevance      float64
	Diversity      float64
	Adaptability   float64
	StrategySource string
}

// Generate produces the candidate pool for strategyName against state and
// mastery, excluding any qid already in attempted.
func Generate(strategyName string, state analysis.LearningState, mastery map[string]float64, cat *kg.Catalog, rel *kg.RelationVectors, attempted map[string]bool) []Candidate {
	targets := TargetKPs(strategyName, state, mastery, cat, rel)
	masteredSet := make(map[string]float64, len(state.MasteredPoints))
	for _, m := range state.MasteredPoints {
		masteredSet[m.KP] = m.Score
	}

	var out []Candidate
	for _, kp := range targets {
		pool := cat.QuestionsWith(kp)
		scored := make([]scoredQuestion, 0, len(pool))
		for _, q := range pool {
			if attempted[q.ID] {
				continue
			}
			difficulty := EstimateDifficulty(q, mastery)
			match := DifficultyMatch(difficulty, state.AbilityLevel, strategyName)
			overlap := MasteredOverlap(q, masteredSet)
			scored = append(scored, scoredQuestion{
				question:         q,
				kpWeight:         q.KPWeights[kp],
				difficultyMatch:  match,
				masteredOverlap:  overlap,
			})
		}
		sort.SliceStable(scored, func(i, j int) bool {
			a, b := scored[i], scored[j]
			if a.kpWeight != b.kpWeight {
				return a.kpWeight > b.kpWeight
			}
			if a.difficultyMatch != b.difficultyMatch {
				return a.difficultyMatch > b.difficultyMatch
			}
			return a.masteredOverlap > b.masteredOverlap
		})
		if len(scored) > questionsPerTarget {
			scored = scored[:questionsPerTarget]
		}
		for _, s := range scored {
			out = append(out, Candidate{
				Question:       s.question,
				TargetKP:       kp,
				Coverage:       s.kpWeight,
				Relevance:      s.masteredOverlap,
				Diversity:      0.1 * float64(len(s.question.KPWeights)),
				Adaptability:   s.difficultyMatch,
				StrategySource: strategyName,
			})
		}
	}
	return out
}

type scoredQuestion struct {
	question        kg.Question
	kpWeight        float64
	difficultyMatch float64
	masteredOverlap float64
}
