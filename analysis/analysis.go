// Package analysis implements the State Analyzer (C5): it derives a
// LearningState snapshot from a learner's raw mastery/history/vector data,
// grounded on simple_system.py's
// RecommendationSystem._analyze_student_learning_state and its helpers
// (_calculate_learning_trend, _estimate_ability_level,
// _analyze_knowledge_connectivity).
package analysis

import (
	"math"
	"sort"

	"github.com/reimu/recommind/kg"
	"github.com/reimu/recommind/learner"
	"github.com/reimu/recommind/vecmath"
)

const (
	weakThreshold     = 0.3
	masteredThreshold = 0.5

	// DefaultRecentWindow is the number of most recent answers used to
	// compute recent_accuracy. Configurable through Options.RecentWindow
	// (see DESIGN.md, Open Question decision (c)); must default to 5.
	DefaultRecentWindow = 5

	trendMinHistory  = 6
	trendDeltaBound  = 0.1
	connectivityCos  = 0.3
	expansionCos     = 0.4
	expansionTopN    = 5
	abilityAdvanced  = 0.8
	abilityIntermed  = 0.6
	abilityBeginner  = 0.4
)

// KPSource is the read-only catalog surface the analyzer needs: embedding
// lookup plus the full knowledge-point universe (for expansion candidate
// discovery).
type KPSource interface {
	Embedding(kp string) ([]float64, error)
	KnowledgePoints() []kg.KnowledgePoint
}

// Options configures Analyze. The zero value uses spec defaults.
type Options struct {
	RecentWindow int
}

func (o Options) recentWindow() int {
	if o.RecentWindow > 0 {
		return o.RecentWindow
	}
	return DefaultRecentWindow
}

// Analyze derives a LearningState from a learner state snapshot.
func Analyze(s learner.State, src KPSource, opts Options) LearningState {
	weak := s.Weak(weakThreshold)
	moderate := s.Moderate()
	mastered := sortedMastered(s.Mastery, masteredThreshold)

	avg, variance := masteryStats(s.Mastery)
	recent := recentAccuracy(s.AnswerHistory, opts.recentWindow())
	trend := learningTrend(s.AnswerHistory, s.VectorHistory)
	ability := abilityLevel(avg, recent)
	connectivity := analyzeConnectivity(weak, mastered, src)

	return LearningState{
		WeakPoints:      weak,
		ModeratePoints:  moderate,
		MasteredPoints:  mastered,
		AvgMastery:      avg,
		MasteryVariance: variance,
		RecentAccuracy:  recent,
		LearningTrend:   trend,
		AbilityLevel:    ability,
		Connectivity:    connectivity,
	}
}

func sortedMastered(mastery map[string]float64, threshold float64) []learner.KPScore {
	out := make([]learner.KPScore, 0, len(mastery))
	for kp, score := range mastery {
		if score >= threshold {
			out = append(out, learner.KPScore{KP: kp, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].KP < out[j].KP
	})
	return out
}

func masteryStats(mastery map[string]float64) (avg, variance float64) {
	if len(mastery) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range mastery {
		sum += v
	}
	avg = sum / float64(len(mastery))

	var sq float64
	for _, v := range mastery {
		d := v - avg
		sq += d * d
	}
	variance = sq / float64(len(mastery))
	return avg, variance
}

func recentAccuracy(history []learner.AnsweredRecord, window int) float64 {
	if len(history) == 0 {
		return 0
	}
	start := len(history) - window
	if start < 0 {
		start = 0
	}
	recent := history[start:]
	var correct int
	for _, a := range recent {
		if a.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(recent))
}

func learningTrend(history []learner.AnsweredRecord, vectors [][]float64) Trend {
	trend := TrendInsufficientData
	if len(history) >= trendMinHistory {
		mid := len(history) / 2
		firstAcc := accuracyOf(history[:mid])
		secondAcc := accuracyOf(history[mid:])
		diff := secondAcc - firstAcc
		switch {
		case diff > trendDeltaBound:
			trend = TrendImproving
		case diff < -trendDeltaBound:
			trend = TrendDeclining
		default:
			trend = TrendStable
		}
	}

	return Trend{Trend: trend, Momentum: momentum(vectors)}
}

func accuracyOf(history []learner.AnsweredRecord) float64 {
	if len(history) == 0 {
		return 0
	}
	var correct int
	for _, a := range history {
		if a.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(history))
}

func momentum(vectors [][]float64) float64 {
	n := len(vectors)
	if n < 2 {
		return 0
	}
	start := n - 3
	if start < 0 {
		start = 0
	}
	window := vectors[start:]
	if len(window) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(window); i++ {
		sum += vecmath.Distance(window[i-1], window[i])
	}
	return sum / float64(len(window)-1)
}

func abilityLevel(avgMastery, recentAccuracy float64) string {
	combined := (avgMastery + recentAccuracy) / 2
	switch {
	case combined >= abilityAdvanced:
		return AbilityAdvanced
	case combined >= abilityIntermed:
		return AbilityIntermediate
	case combined >= abilityBeginner:
		return AbilityBeginner
	default:
		return AbilityStruggling
	}
}

func analyzeConnectivity(weak, mastered []learner.KPScore, src KPSource) Connectivity {
	if src == nil || len(mastered) == 0 {
		isolated := make([]string, len(weak))
		for i, w := range weak {
			isolated[i] = w.KP
		}
		return Connectivity{IsolatedWeak: isolated}
	}

	masteredEmb := make([][]float64, 0, len(mastered))
	for _, m := range mastered {
		if v, err := src.Embedding(m.KP); err == nil {
			masteredEmb = append(masteredEmb, v)
		}
	}

	var connected, isolated []string
	for _, w := range weak {
		v, err := src.Embedding(w.KP)
		if err != nil {
			isolated = append(isolated, w.KP)
			continue
		}
		if maxCosine(v, masteredEmb) > connectivityCos {
			connected = append(connected, w.KP)
		} else {
			isolated = append(isolated, w.KP)
		}
	}

	weakSet := make(map[string]bool, len(weak))
	for _, w := range weak {
		weakSet[w.KP] = true
	}
	masteredSet := make(map[string]bool, len(mastered))
	for _, m := range mastered {
		masteredSet[m.KP] = true
	}

	type scored struct {
		kp    string
		score float64
	}
	var candidates []scored
	for _, kp := range src.KnowledgePoints() {
		if weakSet[kp.ID] || masteredSet[kp.ID] {
			continue
		}
		v, err := src.Embedding(kp.ID)
		if err != nil {
			continue
		}
		s := maxCosine(v, masteredEmb)
		if s > expansionCos {
			candidates = append(candidates, scored{kp: kp.ID, score: s})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].kp < candidates[j].kp
	})
	if len(candidates) > expansionTopN {
		candidates = candidates[:expansionTopN]
	}
	expansion := make([]string, len(candidates))
	for i, c := range candidates {
		expansion[i] = c.kp
	}

	return Connectivity{
		ConnectedWeak:       connected,
		IsolatedWeak:        isolated,
		ExpansionCandidates: expansion,
	}
}

func maxCosine(v []float64, against [][]float64) float64 {
	max := math.Inf(-1)
	for _, a := range against {
		if c := vecmath.Cosine(v, a); c > max {
			max = c
		}
	}
	if math.IsInf(max, -1) {
		return 0
	}
	return max
}
