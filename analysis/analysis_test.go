package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reimu/recommind/analysis"
	"github.com/reimu/recommind/kg"
	"github.com/reimu/recommind/learner"
)

func buildCatalog(t *testing.T) *kg.Catalog {
	t.Helper()
	cat, err := kg.BuildCatalog(
		[]kg.KnowledgePoint{
			{ID: "K1", Embedding: []float64{1, 0, 0}},
			{ID: "K2", Embedding: []float64{0.9, 0.1, 0}},
			{ID: "K3", Embedding: []float64{0, 1, 0}},
			{ID: "K4", Embedding: []float64{0, 0, 1}},
		},
		nil,
		[]kg.Question{
			{ID: "Q1", Options: [4]string{"a", "b", "c", "d"}, CorrectOption: "a", KPWeights: map[string]float64{"K1": 1.0}},
		},
	)
	require.NoError(t, err)
	return cat
}

func TestAvgMasteryAndVariance(t *testing.T) {
	s := learner.New("L1", map[string]float64{"K1": 0.2, "K3": 0.8})
	result := analysis.Analyze(s.Snapshot(), buildCatalog(t), analysis.Options{})
	assert.InDelta(t, 0.5, result.AvgMastery, 1e-9)
	assert.InDelta(t, 0.09, result.MasteryVariance, 1e-9)
}

func TestRecentAccuracyWindow(t *testing.T) {
	s := learner.New("L2", map[string]float64{"K1": 0.9})
	require.NoError(t, s.InitializeVectorFromMastery(3, fakeSrc{}))
	for i := 0; i < 6; i++ {
		correct := i%2 == 0
		batch := []learner.GradedAnswer{{QuestionID: "Q1", IsCorrect: correct, KPWeights: map[string]float64{"K1": 1.0}}}
		require.NoError(t, s.UpdateFromAnswers(batch, 3, fakeSrc{}))
	}
	result := analysis.Analyze(s.Snapshot(), buildCatalog(t), analysis.Options{RecentWindow: 5})
	assert.InDelta(t, 0.4, result.RecentAccuracy, 1e-9)
}

func TestConnectivityFindsConnectedWeak(t *testing.T) {
	s := learner.New("L3", map[string]float64{"K1": 0.6, "K2": 0.05})
	result := analysis.Analyze(s.Snapshot(), buildCatalog(t), analysis.Options{})
	assert.Contains(t, result.Connectivity.ConnectedWeak, "K2")
}

func TestExpansionCandidatesTopFive(t *testing.T) {
	s := learner.New("L4", map[string]float64{"K1": 0.9})
	result := analysis.Analyze(s.Snapshot(), buildCatalog(t), analysis.Options{})
	assert.Contains(t, result.Connectivity.ExpansionCandidates, "K2")
	assert.NotContains(t, result.Connectivity.ExpansionCandidates, "K4")
}

type fakeSrc struct{}

func (fakeSrc) Embedding(kp string) ([]float64, error) {
	switch kp {
	case "K1":
		return []float64{1, 0, 0}, nil
	default:
		return []float64{0, 1, 0}, nil
	}
}
