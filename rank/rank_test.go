package rank_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reimu/recommind/candidate"
	"github.com/reimu/recommind/kg"
	"github.com/reimu/recommind/rank"
)

func TestScenarioDExpansionWeights(t *testing.T) {
	cands := []candidate.Candidate{
		{Question: kg.Question{ID: "Q1"}, Coverage: 0.9, Relevance: 0.4, Diversity: 0.2, Adaptability: 0.7, StrategySource: "expansion"},
	}
	// seed chosen so jitter lands at 1.0 is impractical to hand-pick; verify
	// the unjittered weighted sum directly via Single with a seed, then
	// check the result is within the jitter band of the expected 0.55.
	out := rank.Single(cands, "expansion", 42, 1)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.55, out[0].Score, 0.55*0.06)
}

func TestSingleDeduplicatesByQID(t *testing.T) {
	cands := []candidate.Candidate{
		{Question: kg.Question{ID: "Q1"}, TargetKP: "K1", Coverage: 0.9},
		{Question: kg.Question{ID: "Q1"}, TargetKP: "K2", Coverage: 0.5},
		{Question: kg.Question{ID: "Q2"}, TargetKP: "K1", Coverage: 0.8},
	}
	out := rank.Single(cands, "balanced", 1, 10)
	assert.Len(t, out, 2)
}

func TestSingleDeterministicGivenSeed(t *testing.T) {
	cands := []candidate.Candidate{
		{Question: kg.Question{ID: "Q1"}, Coverage: 0.9},
		{Question: kg.Question{ID: "Q2"}, Coverage: 0.5},
	}
	a := rank.Single(cands, "balanced", 7, 2)
	b := rank.Single(cands, "balanced", 7, 2)
	assert.Equal(t, a, b)
}

func TestAllocationsSumToN(t *testing.T) {
	for _, primary := range []string{"gap_filling", "expansion", "consolidation", "balanced"} {
		allocs := rank.Allocations(primary, 10)
		var sum int
		for _, v := range allocs {
			sum += v
		}
		assert.Equal(t, 10, sum, "primary=%s", primary)
	}
}

func TestAllocationsGapFillingRatios(t *testing.T) {
	allocs := rank.Allocations("gap_filling", 10)
	assert.Equal(t, 6, allocs["gap_filling"])
	assert.Equal(t, 3, allocs["consolidation"])
	assert.Equal(t, 1, allocs["balanced"])
	assert.Equal(t, 0, allocs["expansion"])
}

func TestColdStartExcludesAttemptedAndNonIntro(t *testing.T) {
	cat, err := kg.BuildCatalog(
		[]kg.KnowledgePoint{{ID: "K1", Embedding: []float64{1, 0}}, {ID: "K8", Embedding: []float64{0, 1}}},
		nil,
		[]kg.Question{
			{ID: "Q1", Options: [4]string{"a", "b", "c", "d"}, CorrectOption: "a", KPWeights: map[string]float64{"K1": 1.0}},
			{ID: "Q7", Options: [4]string{"a", "b", "c", "d"}, CorrectOption: "a", KPWeights: map[string]float64{"K8": 1.0}},
		},
	)
	require.NoError(t, err)

	out := rank.ColdStart(cat, []string{"K1", "K2", "K3"}, nil, 3)
	require.Len(t, out, 1)
	assert.Equal(t, "Q1", out[0].QuestionID)
}
