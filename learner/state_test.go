package learner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reimu/recommind/learner"
	"github.com/reimu/recommind/vecmath"
)

type fakeSource map[string][]float64

func (f fakeSource) Embedding(kp string) ([]float64, error) {
	v, ok := f[kp]
	if !ok {
		return nil, assertErr{kp}
	}
	return v, nil
}

type assertErr struct{ kp string }

func (e assertErr) Error() string { return "unknown kp " + e.kp }

func src() fakeSource {
	return fakeSource{
		"K1": vecmath.Normalize([]float64{1, 0, 0}),
		"K2": vecmath.Normalize([]float64{0, 1, 0}),
	}
}

func TestInitializeVectorFromMastery(t *testing.T) {
	s := learner.New("L1", map[string]float64{"K1": 0.9})
	require.NoError(t, s.InitializeVectorFromMastery(3, src()))
	assert.InDelta(t, 1.0, vecmath.Norm(s.Vector), 1e-9)
	assert.Len(t, s.VectorHistory, 1)
}

func TestInitializeVectorColdFallback(t *testing.T) {
	s := learner.New("L2", nil)
	require.NoError(t, s.InitializeVectorFromMastery(3, src()))
	assert.Len(t, s.VectorHistory, 1)
}

func TestScenarioABoundedMastery(t *testing.T) {
	s := learner.New("L3", map[string]float64{"K1": 0.9})
	require.NoError(t, s.InitializeVectorFromMastery(3, src()))

	batch := []learner.GradedAnswer{
		{QuestionID: "Q1", IsCorrect: true, KPWeights: map[string]float64{"K1": 1.0}, SelectedLetter: "A", CorrectOptionText: "x"},
	}
	require.NoError(t, s.UpdateFromAnswers(batch, 3, src()))

	assert.InDelta(t, 1.0, s.Mastery["K1"], 1e-9)
	assert.Equal(t, 1, s.BatchCount)
	assert.Len(t, s.VectorHistory, 2)
	assert.Len(t, s.AnswerHistory, 1)
}

func TestMasteryNeverExceedsOne(t *testing.T) {
	s := learner.New("L4", map[string]float64{"K1": 0.95})
	require.NoError(t, s.InitializeVectorFromMastery(3, src()))
	for i := 0; i < 5; i++ {
		batch := []learner.GradedAnswer{
			{QuestionID: "Q1", IsCorrect: true, KPWeights: map[string]float64{"K1": 1.0}},
		}
		require.NoError(t, s.UpdateFromAnswers(batch, 3, src()))
	}
	assert.LessOrEqual(t, s.Mastery["K1"], 1.0)
}

func TestUpdateFromAnswersEmptyBatch(t *testing.T) {
	s := learner.New("L5", nil)
	require.NoError(t, s.InitializeVectorFromMastery(3, src()))
	err := s.UpdateFromAnswers(nil, 3, src())
	assert.ErrorIs(t, err, learner.ErrEmptyBatch)
}

func TestVectorHistoryBoundedRetention(t *testing.T) {
	s := learner.New("L6", nil)
	s.MaxVectorHistory = 3
	require.NoError(t, s.InitializeVectorFromMastery(3, src()))
	for i := 0; i < 5; i++ {
		batch := []learner.GradedAnswer{
			{QuestionID: "Q1", IsCorrect: true, KPWeights: map[string]float64{"K1": 1.0}},
		}
		require.NoError(t, s.UpdateFromAnswers(batch, 3, src()))
	}
	assert.Equal(t, 5, s.BatchCount)
	assert.Len(t, s.VectorHistory, 3)
}

func TestWeakModerateMasteredPartition(t *testing.T) {
	s := learner.New("L7", map[string]float64{
		"K1": 0.1,
		"K2": 0.35,
		"K3": 0.6,
	})
	weak := s.Weak(0.3)
	require.Len(t, weak, 1)
	assert.Equal(t, "K1", weak[0].KP)

	mod := s.Moderate()
	require.Len(t, mod, 1)
	assert.Equal(t, "K2", mod[0].KP)

	mastered := s.Mastered(0.5)
	assert.Contains(t, mastered, "K3")
}
