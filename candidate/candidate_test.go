package candidate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reimu/recommind/analysis"
	"github.com/reimu/recommind/candidate"
	"github.com/reimu/recommind/kg"
	"github.com/reimu/recommind/learner"
)

func buildCatalog(t *testing.T) *kg.Catalog {
	t.Helper()
	cat, err := kg.BuildCatalog(
		[]kg.KnowledgePoint{
			{ID: "K1", Embedding: []float64{1, 0, 0}},
			{ID: "K2", Embedding: []float64{0, 1, 0}},
			{ID: "K3", Embedding: []float64{0, 0, 1}},
		},
		nil,
		[]kg.Question{
			{ID: "Q1", Options: [4]string{"a", "b", "c", "d"}, CorrectOption: "a", Difficulty: 0.3, KPWeights: map[string]float64{"K1": 1.0}},
			{ID: "Q2", Options: [4]string{"a", "b", "c", "d"}, CorrectOption: "a", Difficulty: 0.5, KPWeights: map[string]float64{"K1": 0.5}},
		},
	)
	require.NoError(t, err)
	return cat
}

func TestGenerateExcludesAttempted(t *testing.T) {
	cat := buildCatalog(t)
	state := analysis.LearningState{
		ModeratePoints: []learner.KPScore{{KP: "K1", Score: 0.4}},
		AbilityLevel:   analysis.AbilityBeginner,
	}
	cands := candidate.Generate("consolidation", state, map[string]float64{"K1": 0.4}, cat, nil, map[string]bool{"Q1": true})
	for _, c := range cands {
		assert.NotEqual(t, "Q1", c.Question.ID)
	}
}

func TestGeneratePrefersHigherKPWeight(t *testing.T) {
	cat := buildCatalog(t)
	state := analysis.LearningState{
		ModeratePoints: []learner.KPScore{{KP: "K1", Score: 0.4}},
		AbilityLevel:   analysis.AbilityBeginner,
	}
	cands := candidate.Generate("consolidation", state, map[string]float64{"K1": 0.4}, cat, nil, nil)
	require.NotEmpty(t, cands)
	assert.Equal(t, "Q1", cands[0].Question.ID)
}

func TestEstimateDifficultyClampedToUnitRange(t *testing.T) {
	q := kg.Question{KPWeights: map[string]float64{"K1": 1.0, "K2": 1.0, "K3": 1.0, "K4": 1.0}}
	d := candidate.EstimateDifficulty(q, map[string]float64{})
	assert.LessOrEqual(t, d, 1.0)
	assert.GreaterOrEqual(t, d, 0.0)
}

func TestDifficultyMatchCenterIsPerfect(t *testing.T) {
	m := candidate.DifficultyMatch(0.3, "struggling", "consolidation")
	assert.InDelta(t, 1.0, m, 1e-9)
}

func TestDifficultyMatchOutsideRangeDecays(t *testing.T) {
	m := candidate.DifficultyMatch(0.9, "struggling", "consolidation")
	assert.Less(t, m, 1.0)
}

func TestMasteredOverlapNoOverlapIsZero(t *testing.T) {
	q := kg.Question{KPWeights: map[string]float64{"K1": 1.0}}
	assert.Equal(t, 0.0, candidate.MasteredOverlap(q, map[string]float64{"K2": 0.9}))
}
