package rank_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reimu/recommind/analysis"
	"github.com/reimu/recommind/learner"
	"github.com/reimu/recommind/rank"
)

func TestEvaluateQualityEmptyBatch(t *testing.T) {
	report := rank.EvaluateQuality(nil, analysis.LearningState{}, nil)
	assert.Equal(t, rank.QualityReport{}, report)
}

func TestEvaluateQualityOverallWithinRange(t *testing.T) {
	state := analysis.LearningState{
		WeakPoints:   []learner.KPScore{{KP: "K1", Score: 0.1}},
		AbilityLevel: analysis.AbilityBeginner,
	}
	recs := []rank.RecommendedQuestion{
		{QuestionID: "Q1", KPWeights: map[string]float64{"K1": 1.0}, StrategySource: "gap_filling"},
		{QuestionID: "Q2", KPWeights: map[string]float64{"K1": 0.5}, StrategySource: "consolidation"},
	}
	report := rank.EvaluateQuality(recs, state, map[string]float64{"K1": 0.1})
	assert.GreaterOrEqual(t, report.Overall, 0.0)
	assert.LessOrEqual(t, report.Overall, 1.0)
	assert.Greater(t, report.CoverageDiversity, 0.0)
}
