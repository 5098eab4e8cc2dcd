package kg_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reimu/recommind/kg"
)

func samplePoints() []kg.KnowledgePoint {
	return []kg.KnowledgePoint{
		{ID: "K1", Name: "Sets", Embedding: []float64{1, 0, 0}},
		{ID: "K2", Name: "Relations", Embedding: []float64{0, 1, 0}},
		{ID: "K3", Name: "Graphs", Embedding: []float64{0, 0, 2}},
	}
}

func sampleQuestions() []kg.Question {
	return []kg.Question{
		{ID: "Q1", Prompt: "p1", Options: [4]string{"x", "y", "z", "w"}, CorrectOption: "x", Difficulty: 0.3, KPWeights: map[string]float64{"K1": 1.0}},
		{ID: "Q2", Prompt: "p2", Options: [4]string{"a", "b", "c", "d"}, CorrectOption: "b", Difficulty: 0.5, KPWeights: map[string]float64{"K2": 0.8}},
		{ID: "Q7", Prompt: "p7", Options: [4]string{"a", "b", "c", "d"}, CorrectOption: "a", Difficulty: 0.7, KPWeights: map[string]float64{"K8": 0.5}},
	}
}

func TestBuildCatalogNormalizesEmbeddings(t *testing.T) {
	cat, err := kg.BuildCatalog(samplePoints(), nil, sampleQuestions())
	require.NoError(t, err)

	v, err := cat.Embedding("K3")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v[2], 1e-9)
	assert.InDelta(t, 0.0, v[0], 1e-9)
}

func TestBuildCatalogRejectsRaggedEmbeddings(t *testing.T) {
	pts := samplePoints()
	pts[1].Embedding = []float64{0, 1}
	_, err := kg.BuildCatalog(pts, nil, sampleQuestions())
	require.Error(t, err)
	var ragged *kg.CorruptCatalogError
	assert.ErrorAs(t, err, &ragged)
}

func TestBuildCatalogRejectsQuestionWithNoKPs(t *testing.T) {
	qs := sampleQuestions()
	qs[0].KPWeights = nil
	_, err := kg.BuildCatalog(samplePoints(), nil, qs)
	require.Error(t, err)
}

func TestUnknownKP(t *testing.T) {
	cat, err := kg.BuildCatalog(samplePoints(), nil, sampleQuestions())
	require.NoError(t, err)
	_, err = cat.Embedding("K999")
	assert.ErrorIs(t, err, kg.ErrUnknownKP)
}

func TestUnknownQuestion(t *testing.T) {
	cat, err := kg.BuildCatalog(samplePoints(), nil, sampleQuestions())
	require.NoError(t, err)
	_, err = cat.Question("Q999")
	assert.ErrorIs(t, err, kg.ErrUnknownQuestion)
}

func TestQuestionsWithPreservesBankOrder(t *testing.T) {
	qs := []kg.Question{
		{ID: "Q3", Prompt: "p", Options: [4]string{"a", "b", "c", "d"}, CorrectOption: "a", KPWeights: map[string]float64{"K1": 0.5}},
		{ID: "Q1", Prompt: "p", Options: [4]string{"a", "b", "c", "d"}, CorrectOption: "a", KPWeights: map[string]float64{"K1": 1.0}},
	}
	cat, err := kg.BuildCatalog(samplePoints(), nil, qs)
	require.NoError(t, err)

	got := cat.QuestionsWith("K1")
	require.Len(t, got, 2)
	assert.Equal(t, "Q3", got[0].ID)
	assert.Equal(t, "Q1", got[1].ID)
}

func TestNameFallsBackToID(t *testing.T) {
	cat, err := kg.BuildCatalog(samplePoints(), nil, sampleQuestions())
	require.NoError(t, err)
	assert.Equal(t, "Sets", cat.Name("K1"))
	assert.Equal(t, "K999", cat.Name("K999"))
}

func TestLoadQuestionsJSON(t *testing.T) {
	body := `{"questions":[{"qid":"Q1","content":"What?","options":["x","y","z","w"],"answer":"x","knowledge_points":{"K1":1.0},"difficulty":0.3}]}`
	qs, err := kg.LoadQuestionsJSON(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Q1", qs[0].ID)
	assert.Equal(t, "x", qs[0].CorrectOption)
}

func TestLoadEmbeddingsCSV(t *testing.T) {
	body := "kp_id,d0,d1\nK1,1,0\nK2,0,1\n"
	pts, err := kg.LoadEmbeddingsCSV(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, "K1", pts[0].ID)
	assert.Equal(t, []float64{1, 0}, pts[0].Embedding)
}

func TestRelationVectorsDeterministic(t *testing.T) {
	a := kg.NewRelationVectors(50, kg.DefaultRelationSeed)
	b := kg.NewRelationVectors(50, kg.DefaultRelationSeed)

	va, ok := a.Vector(kg.RelationPrerequisite)
	require.True(t, ok)
	vb, ok := b.Vector(kg.RelationPrerequisite)
	require.True(t, ok)
	assert.Equal(t, va, vb)
}

func TestRelationVectorsUnitNorm(t *testing.T) {
	rv := kg.NewRelationVectors(50, kg.DefaultRelationSeed)
	for _, kind := range []string{kg.RelationPrerequisite, kg.RelationSimilarity, kg.RelationAdvanced} {
		v, ok := rv.Vector(kind)
		require.True(t, ok)
		var sum float64
		for _, x := range v {
			sum += x * x
		}
		assert.InDelta(t, 1.0, sum, 1e-6)
	}
}
