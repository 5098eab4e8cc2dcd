// Package registry implements the Session Registry (C10): the
// process-wide map of learner id to Learner State, with the two-tier
// locking shape of the teacher's memory.OSLikeMemory (outer sync.RWMutex
// guarding the map, per-learner mutation serialized by learner.State's own
// mutex) — see SPEC_FULL.md §4.10a.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/reimu/recommind/learner"
	"github.com/reimu/recommind/persistence"
)

// EmbeddingSource resolves a knowledge-point id to its embedding.
type EmbeddingSource interface {
	Embedding(kp string) ([]float64, error)
}

// Summary is the per-learner row returned by List: a supplemented feature
// (SPEC_FULL.md §9) giving a cheap overview without a full status query.
type Summary struct {
	LearnerID      string
	BatchCount     int
	QuestionCount  int
	MasteredCount  int
	AvgMastery     float64
}

// Registry owns every LearnerState in the process. Construct it with New;
// the zero value has no map and Create or Insert on it panics.
type Registry struct {
	mu       sync.RWMutex
	learners map[string]*learner.State
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{learners: make(map[string]*learner.State)}
}

// Create registers a new learner, computing its initial vector from
// initialMastery. Returns ErrAlreadyExists if learnerID is already
// registered.
func (r *Registry) Create(learnerID string, initialMastery map[string]float64, dim int, src EmbeddingSource) (*learner.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.learners[learnerID]; exists {
		return nil, ErrAlreadyExists
	}

	s := learner.New(learnerID, initialMastery)
	if err := s.InitializeVectorFromMastery(dim, src); err != nil {
		return nil, err
	}
	r.learners[learnerID] = s
	return s, nil
}

// Insert registers an already-constructed learner state (e.g. one
// reconstructed by persistence.Import), rejecting a duplicate id with
// ErrAlreadyExists.
func (r *Registry) Insert(s *learner.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.learners[s.LearnerID]; exists {
		return ErrAlreadyExists
	}
	r.learners[s.LearnerID] = s
	return nil
}

// Get returns the registered state for learnerID, or ErrUnknownLearner.
func (r *Registry) Get(learnerID string) (*learner.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.learners[learnerID]
	if !ok {
		return nil, ErrUnknownLearner
	}
	return s, nil
}

// List returns a summary of every registered learner, sorted by id.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Summary, 0, len(r.learners))
	for id, s := range r.learners {
		snap := s.Snapshot()
		var sum float64
		var mastered int
		for _, score := range snap.Mastery {
			sum += score
			if score >= 0.5 {
				mastered++
			}
		}
		avg := 0.0
		if len(snap.Mastery) > 0 {
			avg = sum / float64(len(snap.Mastery))
		}
		out = append(out, Summary{
			LearnerID:     id,
			BatchCount:    snap.BatchCount,
			QuestionCount: len(snap.AnswerHistory),
			MasteredCount: mastered,
			AvgMastery:    avg,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LearnerID < out[j].LearnerID })
	return out
}

// ClearAll removes every registered learner.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.learners = make(map[string]*learner.State)
}

// ExportAll snapshots every registered learner into a persistence.Record.
func (r *Registry) ExportAll(now time.Time) []persistence.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]persistence.Record, 0, len(r.learners))
	for _, s := range r.learners {
		out = append(out, persistence.Export(s.Snapshot(), now))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LearnerID < out[j].LearnerID })
	return out
}

// ImportResult reports the outcome of one record in a batch ImportAll.
type ImportResult struct {
	LearnerID string
	Err       error
}

// ImportAll imports each record independently: a failure on one record
// (bad snapshot, duplicate id) does not prevent the rest from importing,
// per SPEC_FULL.md §9's partial-failure-tolerant batch import.
func (r *Registry) ImportAll(records []persistence.Record, dim int, src EmbeddingSource) []ImportResult {
	results := make([]ImportResult, 0, len(records))
	for _, rec := range records {
		err := r.importOne(rec, dim, src)
		results = append(results, ImportResult{LearnerID: rec.LearnerID, Err: err})
	}
	return results
}

func (r *Registry) importOne(rec persistence.Record, dim int, src EmbeddingSource) error {
	s, err := persistence.Import(rec, dim, src)
	if err != nil {
		return err
	}
	return r.Insert(s)
}
