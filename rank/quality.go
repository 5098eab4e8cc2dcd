package rank

import (
	"github.com/reimu/recommind/analysis"
	"github.com/reimu/recommind/candidate"
	"github.com/reimu/recommind/kg"
)

const (
	qualityCoverageWeight      = 0.3
	qualityDifficultyWeight    = 0.3
	qualityProgressionWeight   = 0.2
	qualityPersonalizationWeight = 0.2
)

// QualityReport is the composite quality score for one recommended batch,
// grounded on simple_system.py's evaluate_recommendation_quality.
type QualityReport struct {
	CoverageDiversity       float64
	DifficultyAppropriate   float64
	LearningProgression     float64
	Personalization         float64
	Overall                 float64
}

// EvaluateQuality scores a recommended batch against a learner's learning
// state. mastery is the learner's current mastery map, used to re-derive
// each question's adaptive difficulty estimate.
func EvaluateQuality(recs []RecommendedQuestion, state analysis.LearningState, mastery map[string]float64) QualityReport {
	if len(recs) == 0 {
		return QualityReport{}
	}

	report := QualityReport{
		CoverageDiversity:     coverageDiversity(recs, state),
		DifficultyAppropriate: difficultyAppropriateness(recs, state, mastery),
		LearningProgression:   learningProgression(recs),
		Personalization:       personalization(recs, mastery),
	}
	report.Overall = qualityCoverageWeight*report.CoverageDiversity +
		qualityDifficultyWeight*report.DifficultyAppropriate +
		qualityProgressionWeight*report.LearningProgression +
		qualityPersonalizationWeight*report.Personalization
	return report
}

func coverageDiversity(recs []RecommendedQuestion, state analysis.LearningState) float64 {
	target := make(map[string]bool, len(state.WeakPoints)+len(state.ModeratePoints))
	for _, w := range state.WeakPoints {
		target[w.KP] = true
	}
	for _, m := range state.ModeratePoints {
		target[m.KP] = true
	}
	if len(target) == 0 {
		return 0
	}

	touched := make(map[string]bool)
	for _, r := range recs {
		for kp := range r.KPWeights {
			if target[kp] {
				touched[kp] = true
			}
		}
	}
	return float64(len(touched)) / float64(len(target))
}

func difficultyAppropriateness(recs []RecommendedQuestion, state analysis.LearningState, mastery map[string]float64) float64 {
	var sum float64
	for _, r := range recs {
		q := kg.Question{KPWeights: r.KPWeights}
		d := candidate.EstimateDifficulty(q, mastery)
		sum += candidate.DifficultyMatch(d, state.AbilityLevel, r.StrategySource)
	}
	return sum / float64(len(recs))
}

func learningProgression(recs []RecommendedQuestion) float64 {
	n := len(recs)
	if n < 2 {
		return 0
	}
	var shared int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if sharesKP(recs[i], recs[j]) {
				shared++
			}
		}
	}
	totalPairs := n * (n - 1) / 2
	return float64(shared) / float64(totalPairs)
}

func sharesKP(a, b RecommendedQuestion) bool {
	for kp := range a.KPWeights {
		if _, ok := b.KPWeights[kp]; ok {
			return true
		}
	}
	return false
}

const (
	personalizationWeakThreshold     = 0.4
	personalizationMasteredThreshold = 0.8
	personalizationWeakWeight        = 0.5
	personalizationDiversityWeight   = 0.3
	personalizationAvoidanceWeight   = 0.2
)

// personalization recomputes weak/mastered sets at this metric's own
// thresholds (0.4/0.8), distinct from analysis's weak/moderate/mastered
// partition thresholds (0.3/0.5), matching evaluate_recommendation_quality.
func personalization(recs []RecommendedQuestion, mastery map[string]float64) float64 {
	weak := make(map[string]bool, len(mastery))
	mastered := make(map[string]bool, len(mastery))
	for kp, score := range mastery {
		if score < personalizationWeakThreshold {
			weak[kp] = true
		}
		if score >= personalizationMasteredThreshold {
			mastered[kp] = true
		}
	}

	var weakHits int
	var nonMasteredOnly int
	strategies := make(map[string]bool)
	for _, r := range recs {
		touchesWeak := false
		allMastered := len(r.KPWeights) > 0
		for kp := range r.KPWeights {
			if weak[kp] {
				touchesWeak = true
			}
			if !mastered[kp] {
				allMastered = false
			}
		}
		if touchesWeak {
			weakHits++
		}
		if !allMastered {
			nonMasteredOnly++
		}
		strategies[r.StrategySource] = true
	}

	weakTargeting := float64(weakHits) / float64(len(recs))
	avoidance := float64(nonMasteredOnly) / float64(len(recs))
	diversity := float64(len(strategies)) / 4

	score := personalizationWeakWeight*weakTargeting +
		personalizationDiversityWeight*diversity +
		personalizationAvoidanceWeight*avoidance
	if score > 1.0 {
		return 1.0
	}
	return score
}
