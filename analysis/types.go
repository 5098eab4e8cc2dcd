package analysis

import "github.com/reimu/recommind/learner"

// Ability levels, in ascending order.
const (
	AbilityStruggling   = "struggling"
	AbilityBeginner     = "beginner"
	AbilityIntermediate = "intermediate"
	AbilityAdvanced     = "advanced"
)

// Learning trend labels.
const (
	TrendInsufficientData = "insufficient_data"
	TrendImproving        = "improving"
	TrendStable           = "stable"
	TrendDeclining        = "declining"
)

// Trend describes the direction and magnitude of a learner's recent
// progress.
type Trend struct {
	Trend    string
	Momentum float64
}

// Connectivity reports how a learner's weak knowledge points relate to
// their mastered ones in embedding space.
type Connectivity struct {
	ConnectedWeak       []string
	IsolatedWeak        []string
	ExpansionCandidates []string
}

// LearningState is the State Analyzer's (C5) output: a derived read-only
// view of a LearnerState used by the Strategy Selector and Candidate
// Generator.
type LearningState struct {
	WeakPoints     []learner.KPScore
	ModeratePoints []learner.KPScore
	MasteredPoints []learner.KPScore

	AvgMastery      float64
	MasteryVariance float64
	RecentAccuracy  float64

	LearningTrend Trend
	AbilityLevel  string

	Connectivity Connectivity
}
