// Package engine is the embeddable orchestration facade (§6): it wires the
// KG Catalog (C1), Relation Vector Provider (C2), Answer Grader (C3),
// Learner State (C4), State Analyzer (C5), Strategy Selector (C6),
// Candidate Generator (C7), Ranker (C8), Persistence Serializer (C9), and
// Session Registry (C10) into the operations spec.md §6 names.
package engine

import (
	"encoding/binary"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/reimu/recommind/analysis"
	"github.com/reimu/recommind/candidate"
	"github.com/reimu/recommind/grading"
	"github.com/reimu/recommind/kg"
	"github.com/reimu/recommind/learner"
	"github.com/reimu/recommind/persistence"
	"github.com/reimu/recommind/rank"
	"github.com/reimu/recommind/registry"
	"github.com/reimu/recommind/strategy"
)

// DefaultIntroductoryKPs is the cold-start designated KP set used when no
// config overrides it.
var DefaultIntroductoryKPs = []string{"K1", "K2", "K3"}

const coldStartMasteryFloor = 0.1

// Config configures an Engine. Zero value uses spec defaults.
type Config struct {
	IntroductoryKPs []string
	RecentWindow    int
	Clock           func() time.Time
}

func (c Config) withDefaults() Config {
	if len(c.IntroductoryKPs) == 0 {
		c.IntroductoryKPs = DefaultIntroductoryKPs
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// Engine is the embeddable recommendation core.
type Engine struct {
	catalog   *kg.Catalog
	relations *kg.RelationVectors
	registry  *registry.Registry
	cfg       Config
}

// New builds an Engine over an immutable catalog and relation-vector
// provider, with its own empty Session Registry.
func New(catalog *kg.Catalog, relations *kg.RelationVectors, cfg Config) *Engine {
	return &Engine{
		catalog:   catalog,
		relations: relations,
		registry:  registry.New(),
		cfg:       cfg.withDefaults(),
	}
}

// AnswerInput is one submitted or checked answer.
type AnswerInput struct {
	QuestionID     string
	SelectedLetter string
}

// BatchSummary is SubmitAnswers' result: per-answer grading plus the
// post-update mastery map.
type BatchSummary struct {
	Graded  []grading.Graded
	Mastery map[string]float64
}

// StatusReport is GetStatus' result.
type StatusReport struct {
	LearnerID      string
	BatchCount     int
	Mastery        map[string]float64
	MasteredPoints []learner.KPScore
	WeakPoints     []learner.KPScore
}

// CreateLearner registers a new learner with optional initial mastery.
func (e *Engine) CreateLearner(id string, initialMastery map[string]float64) error {
	_, err := e.registry.Create(id, initialMastery, e.catalog.Dim(), e.catalog)
	return err
}

// GetRecommendations returns up to n recommended questions for id.
func (e *Engine) GetRecommendations(id string, n int) ([]rank.RecommendedQuestion, error) {
	s, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}
	snap := s.Snapshot()
	attempted := attemptedSet(snap.AnswerHistory)

	if len(s.Mastered(coldStartMasteryFloor)) == 0 {
		return rank.ColdStart(e.catalog, e.cfg.IntroductoryKPs, attempted, n), nil
	}

	state := analysis.Analyze(snap, e.catalog, analysis.Options{RecentWindow: e.cfg.RecentWindow})
	sel := strategy.Select(state, snap.BatchCount)
	nonce := callNonce()

	if !sel.Mixed {
		cands := candidate.Generate(sel.Primary, state, snap.Mastery, e.catalog, e.relations, attempted)
		seed := rank.Seed(id, snap.BatchCount, nonce)
		return rank.Single(cands, sel.Primary, seed, n), nil
	}

	pools := make(map[string][]candidate.Candidate, 4)
	for _, name := range []string{strategy.GapFilling, strategy.Consolidation, strategy.Expansion, strategy.Balanced} {
		pools[name] = candidate.Generate(name, state, snap.Mastery, e.catalog, e.relations, attempted)
	}
	return rank.Mixed(pools, sel.Primary, id, snap.BatchCount, nonce, n), nil
}

// SubmitAnswers grades and applies a batch of answers to learner id.
func (e *Engine) SubmitAnswers(id string, answers []AnswerInput) (BatchSummary, error) {
	s, err := e.registry.Get(id)
	if err != nil {
		return BatchSummary{}, err
	}
	if len(answers) == 0 {
		return BatchSummary{}, learner.ErrEmptyBatch
	}

	graded := make([]grading.Graded, 0, len(answers))
	batch := make([]learner.GradedAnswer, 0, len(answers))
	for _, a := range answers {
		g, err := grading.Grade(e.catalog, a.QuestionID, a.SelectedLetter)
		if err != nil {
			return BatchSummary{}, err
		}
		graded = append(graded, g)
		batch = append(batch, learner.GradedAnswer{
			QuestionID:        g.QuestionID,
			IsCorrect:         g.IsCorrect,
			KPWeights:         g.KPWeights,
			SelectedLetter:    g.SelectedLetter,
			CorrectOptionText: g.CorrectOptionText,
		})
	}

	if err := s.UpdateFromAnswers(batch, e.catalog.Dim(), e.catalog); err != nil {
		return BatchSummary{}, err
	}

	return BatchSummary{Graded: graded, Mastery: copyMastery(s.Snapshot().Mastery)}, nil
}

// CheckAnswers grades answers without touching any learner state.
func (e *Engine) CheckAnswers(answers []AnswerInput) ([]grading.Graded, error) {
	out := make([]grading.Graded, 0, len(answers))
	for _, a := range answers {
		g, err := grading.Grade(e.catalog, a.QuestionID, a.SelectedLetter)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// GetWeakPoints returns id's weak knowledge points plus coaching notes.
func (e *Engine) GetWeakPoints(id string, threshold float64) ([]learner.KPScore, []string, error) {
	s, err := e.registry.Get(id)
	if err != nil {
		return nil, nil, err
	}
	weak := s.Weak(threshold)
	notes := analysis.CoachingNotes(weak, e.catalog)
	return weak, notes, nil
}

// GetStatus returns id's current learning status.
func (e *Engine) GetStatus(id string) (StatusReport, error) {
	s, err := e.registry.Get(id)
	if err != nil {
		return StatusReport{}, err
	}
	snap := s.Snapshot()
	return StatusReport{
		LearnerID:      snap.LearnerID,
		BatchCount:     snap.BatchCount,
		Mastery:        snap.Mastery,
		MasteredPoints: masteredSlice(s.Mastered(0.5)),
		WeakPoints:     s.Weak(0.3),
	}, nil
}

func masteredSlice(mastered map[string]float64) []learner.KPScore {
	out := make([]learner.KPScore, 0, len(mastered))
	for kp, score := range mastered {
		out = append(out, learner.KPScore{KP: kp, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].KP < out[j].KP
	})
	return out
}

// Export snapshots id into a persistence.Record.
func (e *Engine) Export(id string) (persistence.Record, error) {
	s, err := e.registry.Get(id)
	if err != nil {
		return persistence.Record{}, err
	}
	return persistence.Export(s.Snapshot(), e.cfg.Clock()), nil
}

// Import registers a learner reconstructed from rec.
func (e *Engine) Import(rec persistence.Record) error {
	s, err := persistence.Import(rec, e.catalog.Dim(), e.catalog)
	if err != nil {
		return err
	}
	return e.registry.Insert(s)
}

// ExportAll snapshots every registered learner.
func (e *Engine) ExportAll() []persistence.Record {
	return e.registry.ExportAll(e.cfg.Clock())
}

// ImportAll imports each record independently, tolerating per-record
// failures.
func (e *Engine) ImportAll(records []persistence.Record) []registry.ImportResult {
	return e.registry.ImportAll(records, e.catalog.Dim(), e.catalog)
}

// ClearAll removes every registered learner.
func (e *Engine) ClearAll() {
	e.registry.ClearAll()
}

// List returns a summary of every registered learner.
func (e *Engine) List() []registry.Summary {
	return e.registry.List()
}

// EvaluateRecommendations scores a recommended batch's quality for id.
func (e *Engine) EvaluateRecommendations(id string, recs []rank.RecommendedQuestion) (rank.QualityReport, error) {
	s, err := e.registry.Get(id)
	if err != nil {
		return rank.QualityReport{}, err
	}
	snap := s.Snapshot()
	state := analysis.Analyze(snap, e.catalog, analysis.Options{RecentWindow: e.cfg.RecentWindow})
	return rank.EvaluateQuality(recs, state, snap.Mastery), nil
}

func attemptedSet(history []learner.AnsweredRecord) map[string]bool {
	out := make(map[string]bool, len(history))
	for _, a := range history {
		out[a.QuestionID] = true
	}
	return out
}

func copyMastery(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func callNonce() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}
