// Package grading implements the Answer Grader (C3): it turns a selected
// option letter into a verdict against the catalog's recorded correct
// option, without touching any learner state. Grounded on
// simple_system.py's RecommendationSystem.check_answer.
package grading

import (
	"strings"

	"github.com/reimu/recommind/kg"
)

// Graded is the outcome of grading one answer.
type Graded struct {
	QuestionID         string
	SelectedLetter     string
	SelectedOptionText string
	CorrectOptionText  string
	IsCorrect          bool
	KPWeights          map[string]float64
}

// Grade validates selectedLetter, resolves it to option text by position,
// and compares it against the catalog's recorded correct answer for qid.
// selectedLetter is upper-cased before validation, so "b" and "B" are
// equivalent. Returns ErrUnknownQuestion if qid is not in the catalog, or a
// *BadLetterError if selectedLetter is not one of A-D.
func Grade(cat *kg.Catalog, qid, selectedLetter string) (Graded, error) {
	q, err := cat.Question(qid)
	if err != nil {
		return Graded{}, ErrUnknownQuestion
	}

	letter := strings.ToUpper(strings.TrimSpace(selectedLetter))
	idx := letterIndex(letter)
	if idx < 0 {
		return Graded{}, &BadLetterError{Letter: selectedLetter}
	}

	selectedText := q.Options[idx]
	weights := make(map[string]float64, len(q.KPWeights))
	for k, v := range q.KPWeights {
		weights[k] = v
	}

	return Graded{
		QuestionID:         qid,
		SelectedLetter:     letter,
		SelectedOptionText: selectedText,
		CorrectOptionText:  q.CorrectOption,
		IsCorrect:          selectedText == q.CorrectOption,
		KPWeights:          weights,
	}, nil
}

func letterIndex(letter string) int {
	if len(letter) != 1 {
		return -1
	}
	for i, l := range kg.OptionLetters {
		if letter[0] == l {
			return i
		}
	}
	return -1
}
