// Package strategy implements the Strategy Selector (C6): it scores the
// four candidate-generation strategies against a LearningState and picks
// the primary one, plus whether mixed-strategy merging applies. Grounded
// on simple_system.py's
// RecommendationSystem._determine_recommendation_strategy.
package strategy

import "github.com/reimu/recommind/analysis"

// Strategy labels, in the priority order used to break scoring ties:
// gap_filling > expansion > consolidation > balanced.
const (
	GapFilling     = "gap_filling"
	Expansion      = "expansion"
	Consolidation  = "consolidation"
	Balanced       = "balanced"
	balancedBase   = 0.2
	mixedThreshold = 3
)

// priority lists strategies from highest to lowest tie-break priority.
var priority = []string{GapFilling, Expansion, Consolidation, Balanced}

// Selection is the Strategy Selector's output.
type Selection struct {
	Primary string
	Mixed   bool
	Scores  map[string]float64
}

// Select scores each strategy against state and batchCount, returning the
// argmax (ties broken by priority) and whether mixed mode applies.
func Select(state analysis.LearningState, batchCount int) Selection {
	scores := map[string]float64{
		GapFilling:    0,
		Expansion:     0,
		Consolidation: 0,
		Balanced:      balancedBase,
	}

	w := len(state.WeakPoints)
	m := len(state.MasteredPoints)
	o := len(state.ModeratePoints)
	total := w + m + o

	mixed := batchCount > mixedThreshold

	if total == 0 {
		return Selection{Primary: Balanced, Mixed: false, Scores: scores}
	}

	wRatio := float64(w) / float64(total)
	mRatio := float64(m) / float64(total)
	oRatio := float64(o) / float64(total)

	switch {
	case wRatio > 0.4:
		scores[GapFilling] += 0.4
	case wRatio > 0.2:
		scores[GapFilling] += 0.2
	}

	switch {
	case mRatio > 0.6:
		scores[Expansion] += 0.4
	case mRatio > 0.4:
		scores[Expansion] += 0.2
	}

	switch {
	case oRatio > 0.4:
		scores[Consolidation] += 0.4
	case oRatio > 0.2:
		scores[Consolidation] += 0.2
	}

	switch {
	case state.RecentAccuracy < 0.4:
		scores[GapFilling] += 0.3
	case state.RecentAccuracy > 0.8:
		scores[Expansion] += 0.3
	default:
		scores[Consolidation] += 0.2
	}

	switch state.LearningTrend.Trend {
	case analysis.TrendDeclining:
		scores[GapFilling] += 0.2
		scores[Consolidation] += 0.1
	case analysis.TrendImproving:
		scores[Expansion] += 0.2
		scores[Consolidation] += 0.1
	}

	switch state.AbilityLevel {
	case analysis.AbilityStruggling:
		scores[GapFilling] += 0.3
	case analysis.AbilityAdvanced:
		scores[Expansion] += 0.3
	case analysis.AbilityBeginner, analysis.AbilityIntermediate:
		scores[Consolidation] += 0.2
	}

	if len(state.Connectivity.IsolatedWeak) > 2 {
		scores[GapFilling] += 0.2
	}
	if len(state.Connectivity.ExpansionCandidates) > 3 {
		scores[Expansion] += 0.2
	}
	if len(state.Connectivity.ConnectedWeak) > 1 {
		scores[Consolidation] += 0.1
	}

	return Selection{Primary: argmax(scores), Mixed: mixed, Scores: scores}
}

func argmax(scores map[string]float64) string {
	best := priority[0]
	bestScore := scores[best]
	for _, s := range priority[1:] {
		if scores[s] > bestScore {
			best = s
			bestScore = scores[s]
		}
	}
	return best
}
