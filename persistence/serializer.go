package persistence

import (
	"log"
	"time"

	"github.com/reimu/recommind/learner"
	"github.com/reimu/recommind/vecmath"
)

// EmbeddingSource resolves a knowledge point to its embedding, needed to
// re-derive a vector from mastery on import when Vector is absent.
type EmbeddingSource interface {
	Embedding(kp string) ([]float64, error)
}

// Export snapshots s into a Record stamped with the given time.
func Export(s learner.State, now time.Time) Record {
	vectorHistory := make([][]float64, len(s.VectorHistory))
	for i, v := range s.VectorHistory {
		vectorHistory[i] = vecmath.Clone(v)
	}
	return Record{
		Version:       RecordVersion,
		LearnerID:     s.LearnerID,
		EmbeddingDim:  len(s.Vector),
		Mastery:       copyMastery(s.Mastery),
		AnswerHistory: toAnswerRecords(s.AnswerHistory),
		BatchCount:    s.BatchCount,
		Vector:        vecmath.Clone(s.Vector),
		VectorHistory: vectorHistory,
		Timestamp:     now,
	}
}

// Import reconstructs a *learner.State from r. Only LearnerID is checked:
// an empty LearnerID yields ErrInvalidSnapshot. A nil Mastery or
// AnswerHistory is not rejected; it is imported as an empty map or an
// empty history. A Version other than RecordVersion is logged and the
// import goes on. If r.Vector is nil, the vector is re-derived from mastery
// using src. Unknown KPs/qids are preserved verbatim and are not
// validated here; operations that need them will error later as usual.
func Import(r Record, dim int, src EmbeddingSource) (*learner.State, error) {
	if r.LearnerID == "" {
		return nil, ErrInvalidSnapshot
	}
	if r.Version != RecordVersion {
		log.Printf("persistence: snapshot for %s has version %d, want %d", r.LearnerID, r.Version, RecordVersion)
	}

	s := &learner.State{
		LearnerID:     r.LearnerID,
		Mastery:       copyMastery(r.Mastery),
		AnswerHistory: fromAnswerRecords(r.AnswerHistory),
		BatchCount:    r.BatchCount,
	}
	if s.Mastery == nil {
		s.Mastery = make(map[string]float64)
	}

	if r.Vector != nil {
		if len(r.Vector) != dim {
			return nil, &DimensionMismatchError{Want: dim, Got: len(r.Vector)}
		}
		s.Vector = vecmath.Clone(r.Vector)
		s.VectorHistory = make([][]float64, len(r.VectorHistory))
		for i, v := range r.VectorHistory {
			s.VectorHistory[i] = vecmath.Clone(v)
		}
		return s, nil
	}

	if err := s.InitializeVectorFromMastery(dim, src); err != nil {
		return nil, err
	}
	return s, nil
}

func copyMastery(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
