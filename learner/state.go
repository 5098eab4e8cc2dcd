// Package learner implements the Learner State (C4): the per-learner
// mastery map, embedding-space position vector, answer history, and batch
// counter, with the mastery update rule from simple_system.py's
// StudentModel.update_from_answers.
package learner

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/reimu/recommind/vecmath"
)

const (
	correctStrength   = 1.0
	incorrectStrength = 0.3
	vectorAlpha       = 0.7
	masteryDeltaRight = 0.3
	masteryDeltaWrong = 0.1

	// DefaultVectorSeed is XORed with a hash of the learner id to seed the
	// cold random fallback vector, mirroring the Python prototype's
	// per-student reproducible seed.
	DefaultVectorSeed = 1337
)

// KPScore pairs a knowledge point id with a mastery score.
type KPScore struct {
	KP    string
	Score float64
}

// State is one learner's mutable recommendation state. The zero value is
// not usable; construct with New. A State must only be mutated through its
// own methods, which serialize access with an internal mutex — see §5.
type State struct {
	mu sync.Mutex

	LearnerID string
	Mastery   map[string]float64
	Vector    []float64

	AnswerHistory []AnsweredRecord
	BatchCount    int
	VectorHistory [][]float64

	// MaxVectorHistory bounds retention of VectorHistory entries. Zero
	// means unbounded (default); see SPEC_FULL.md §4.4a.
	MaxVectorHistory int
}

// New creates a State with the given initial mastery (may be nil/empty;
// copied defensively) and no history. Call InitializeVectorFromMastery
// before any recommendation or update is performed.
func New(learnerID string, initialMastery map[string]float64) *State {
	mastery := make(map[string]float64, len(initialMastery))
	for k, v := range initialMastery {
		mastery[k] = v
	}
	return &State{
		LearnerID: learnerID,
		Mastery:   mastery,
	}
}

// InitializeVectorFromMastery computes the learner's starting vector as a
// mastery-weighted average of known knowledge-point embeddings, or a small
// deterministic random vector if mastery is empty/all-zero, then seeds
// VectorHistory with that single snapshot.
func (s *State) InitializeVectorFromMastery(dim int, src EmbeddingSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.weightedMasteryVector(dim, src)
	if err != nil {
		return err
	}
	if v == nil {
		v = s.coldRandomVector(dim)
	}
	v = vecmath.Normalize(v)

	s.Vector = v
	s.VectorHistory = [][]float64{vecmath.Clone(v)}
	return nil
}

func (s *State) weightedMasteryVector(dim int, src EmbeddingSource) ([]float64, error) {
	acc := vecmath.Zero(dim)
	var total float64
	for kp, w := range s.Mastery {
		if w <= 0 {
			continue
		}
		emb, err := src.Embedding(kp)
		if err != nil {
			continue
		}
		vecmath.AddScaled(acc, emb, w)
		total += w
	}
	if total <= 0 {
		return nil, nil
	}
	return vecmath.Scale(acc, 1/total), nil
}

func (s *State) coldRandomVector(dim int) []float64 {
	seed := DefaultVectorSeed ^ int64(fnvHash(s.LearnerID))
	rng := rand.New(rand.NewSource(seed))
	v := make([]float64, dim)
	for i := range v {
		v[i] = rng.NormFloat64() * 0.01
	}
	return v
}

func fnvHash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// UpdateFromAnswers applies one graded answer batch, per spec.md §4.4.
// batch must be non-empty. src resolves a KP id to its embedding; unknown
// KPs referenced by an answer are skipped when accumulating the batch
// vector (they are preserved verbatim in AnswerHistory regardless).
func (s *State) UpdateFromAnswers(batch []GradedAnswer, dim int, src EmbeddingSource) error {
	if len(batch) == 0 {
		return ErrEmptyBatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := vecmath.Zero(dim)
	for _, a := range batch {
		strength := incorrectStrength
		if a.IsCorrect {
			strength = correctStrength
		}
		for kp, w := range a.KPWeights {
			emb, err := src.Embedding(kp)
			if err != nil {
				continue
			}
			vecmath.AddScaled(b, emb, strength*w)
		}
	}
	b = vecmath.Scale(b, 1/float64(len(batch)))

	if s.BatchCount == 0 {
		s.Vector = b
	} else {
		s.Vector = vecmath.Lerp(s.Vector, b, vectorAlpha)
	}
	if vecmath.Norm(s.Vector) > 0 {
		s.Vector = vecmath.Normalize(s.Vector)
	}

	if s.Mastery == nil {
		s.Mastery = make(map[string]float64)
	}
	for _, a := range batch {
		for kp, w := range a.KPWeights {
			delta := masteryDeltaWrong
			if a.IsCorrect {
				delta = masteryDeltaRight
			}
			s.Mastery[kp] = math.Min(1, s.Mastery[kp]+delta*w)
		}
	}

	for _, a := range batch {
		s.AnswerHistory = append(s.AnswerHistory, AnsweredRecord{
			QuestionID:        a.QuestionID,
			IsCorrect:         a.IsCorrect,
			KPWeights:         copyWeights(a.KPWeights),
			SelectedLetter:    a.SelectedLetter,
			CorrectOptionText: a.CorrectOptionText,
		})
	}
	s.VectorHistory = append(s.VectorHistory, vecmath.Clone(s.Vector))
	s.BatchCount++

	if s.MaxVectorHistory > 0 && len(s.VectorHistory) > s.MaxVectorHistory {
		drop := len(s.VectorHistory) - s.MaxVectorHistory
		s.VectorHistory = append([][]float64(nil), s.VectorHistory[drop:]...)
	}

	return nil
}

func copyWeights(w map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Mastered returns knowledge points with mastery >= threshold.
func (s *State) Mastered(threshold float64) map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64)
	for kp, score := range s.Mastery {
		if score >= threshold {
			out[kp] = score
		}
	}
	return out
}

// Weak returns knowledge points with mastery < threshold, sorted ascending
// by score.
func (s *State) Weak(threshold float64) []KPScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterSorted(func(v float64) bool { return v < threshold })
}

// Moderate returns knowledge points with mastery in [0.3, 0.5), sorted
// ascending by score.
func (s *State) Moderate() []KPScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterSorted(func(v float64) bool { return v >= 0.3 && v < 0.5 })
}

func (s *State) filterSorted(keep func(float64) bool) []KPScore {
	out := make([]KPScore, 0, len(s.Mastery))
	for kp, score := range s.Mastery {
		if keep(score) {
			out = append(out, KPScore{KP: kp, Score: score})
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

// Snapshot returns a deep copy of the learner's current observable state,
// safe to read without holding any further lock.
func (s *State) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := State{
		LearnerID:        s.LearnerID,
		Mastery:          copyWeights(s.Mastery),
		Vector:           vecmath.Clone(s.Vector),
		AnswerHistory:    append([]AnsweredRecord(nil), s.AnswerHistory...),
		BatchCount:       s.BatchCount,
		MaxVectorHistory: s.MaxVectorHistory,
	}
	cp.VectorHistory = make([][]float64, len(s.VectorHistory))
	for i, v := range s.VectorHistory {
		cp.VectorHistory[i] = vecmath.Clone(v)
	}
	return cp
}
