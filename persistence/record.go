// Package persistence implements the Persistence Serializer (C9): the
// versioned snapshot format for a learner's state and the export/import
// semantics of spec.md §4.9. Storage backends live in the sibling
// persistence/postgres, persistence/sqlite, and persistence/rediscache
// packages behind the Snapshotter interface.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reimu/recommind/learner"
)

// RecordVersion is the current snapshot format version written by Export.
// A version mismatch on Import is a non-fatal warning, not an error.
const RecordVersion = 1

// ErrInvalidSnapshot is returned by Import when a required field is
// missing from the record.
var ErrInvalidSnapshot = errors.New("persistence: invalid snapshot")

// DimensionMismatchError is returned when a snapshot's vector width does
// not match the catalog's embedding dimension.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("persistence: vector dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// AnswerRecord is the on-disk shape of learner.AnsweredRecord.
type AnswerRecord struct {
	QuestionID        string             `json:"qid"`
	IsCorrect         bool               `json:"is_correct"`
	KPWeights         map[string]float64 `json:"kp_weights"`
	SelectedLetter    string             `json:"selected_letter"`
	CorrectOptionText string             `json:"correct_option_text"`
}

// Record is the versioned export/import snapshot of one learner's state,
// per spec.md §4.9.
type Record struct {
	Version       int                `json:"version"`
	LearnerID     string             `json:"learner_id"`
	EmbeddingDim  int                `json:"embedding_dim"`
	Mastery       map[string]float64 `json:"mastery"`
	AnswerHistory []AnswerRecord     `json:"answer_history"`
	BatchCount    int                `json:"batch_count"`
	Vector        []float64          `json:"vector,omitempty"`
	VectorHistory [][]float64        `json:"vector_history,omitempty"`
	Timestamp     time.Time          `json:"timestamp"`
}

// Snapshotter is the storage boundary a backend implements. Save is an
// upsert keyed by Record.LearnerID.
type Snapshotter interface {
	Save(ctx context.Context, r Record) error
	Load(ctx context.Context, learnerID string) (Record, bool, error)
	Delete(ctx context.Context, learnerID string) error
	List(ctx context.Context) ([]string, error)
}

func toAnswerRecords(history []learner.AnsweredRecord) []AnswerRecord {
	out := make([]AnswerRecord, len(history))
	for i, a := range history {
		out[i] = AnswerRecord{
			QuestionID:        a.QuestionID,
			IsCorrect:         a.IsCorrect,
			KPWeights:         a.KPWeights,
			SelectedLetter:    a.SelectedLetter,
			CorrectOptionText: a.CorrectOptionText,
		}
	}
	return out
}

func fromAnswerRecords(records []AnswerRecord) []learner.AnsweredRecord {
	out := make([]learner.AnsweredRecord, len(records))
	for i, a := range records {
		out[i] = learner.AnsweredRecord{
			QuestionID:        a.QuestionID,
			IsCorrect:         a.IsCorrect,
			KPWeights:         a.KPWeights,
			SelectedLetter:    a.SelectedLetter,
			CorrectOptionText: a.CorrectOptionText,
		}
	}
	return out
}
