package kg

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// LoadEmbeddingsCSV parses the KP embeddings table: a header row followed
// by one row per knowledge point, first column kp_id, remaining columns
// the embedding's components. Parsing is a loading concern (§1, out of
// the recommendation core) but lives here because no third-party CSV
// library in the example corpus offers anything encoding/csv does not.
func LoadEmbeddingsCSV(r io.Reader) ([]KnowledgePoint, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("kg: reading embeddings csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, &CorruptCatalogError{Reason: "embeddings csv has no data rows"}
	}

	out := make([]KnowledgePoint, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 2 {
			return nil, &CorruptCatalogError{Reason: "embeddings csv row too short"}
		}
		vec := make([]float64, 0, len(row)-1)
		for _, cell := range row[1:] {
			f, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("kg: parsing embedding component for %s: %w", row[0], err)
			}
			vec = append(vec, f)
		}
		out = append(out, KnowledgePoint{ID: row[0], Embedding: vec})
	}
	return out, nil
}

// LoadEdgesCSV parses the KG edges table: columns
// source_name, source_id, relation, target_name, target_id.
func LoadEdgesCSV(r io.Reader) ([]KGEdge, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("kg: reading edges csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([]KGEdge, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 5 {
			return nil, &CorruptCatalogError{Reason: "edges csv row too short"}
		}
		out = append(out, KGEdge{Source: row[1], Target: row[4], Relation: row[2]})
	}
	return out, nil
}

// LoadNamesCSV parses the KP name table: columns kp_id, display_name. The
// returned map is merged onto KnowledgePoint.Name by MergeNames.
func LoadNamesCSV(r io.Reader) (map[string]string, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("kg: reading names csv: %w", err)
	}
	names := make(map[string]string)
	if len(rows) == 0 {
		return names, nil
	}
	for _, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		names[row[0]] = row[1]
	}
	return names, nil
}

// MergeNames copies display names from a name table onto a slice of
// knowledge points, matching by id.
func MergeNames(points []KnowledgePoint, names map[string]string) []KnowledgePoint {
	out := make([]KnowledgePoint, len(points))
	for i, p := range points {
		if name, ok := names[p.ID]; ok {
			p.Name = name
		}
		out[i] = p
	}
	return out
}

// questionBankFile is the on-disk JSON shape of the question bank.
type questionBankFile struct {
	Questions []questionBankEntry `json:"questions"`
}

type questionBankEntry struct {
	QID             string             `json:"qid"`
	Content         string             `json:"content"`
	Options         [4]string          `json:"options"`
	Answer          string             `json:"answer"`
	KnowledgePoints map[string]float64 `json:"knowledge_points"`
	Difficulty      float64            `json:"difficulty"`
}

// LoadQuestionsJSON parses the question bank JSON described in SPEC_FULL.md
// §6: {"questions": [{qid, content, options[4], answer, knowledge_points,
// difficulty}, ...]}.
func LoadQuestionsJSON(r io.Reader) ([]Question, error) {
	var file questionBankFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("kg: decoding question bank json: %w", err)
	}

	out := make([]Question, 0, len(file.Questions))
	for _, e := range file.Questions {
		out = append(out, Question{
			ID:            e.QID,
			Prompt:        e.Content,
			Options:       e.Options,
			CorrectOption: e.Answer,
			Difficulty:    e.Difficulty,
			KPWeights:     e.KnowledgePoints,
		})
	}
	return out, nil
}
