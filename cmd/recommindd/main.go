// Command recommindd is an illustrative HTTP boundary around engine.Engine
// (SPEC_FULL.md §6). Routing uses only net/http, matching the teacher's
// avoidance of a router dependency beyond what it already imports; JSON
// request/response bodies are the only wire format.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/reimu/recommind/cmd/recommindd/render"
	"github.com/reimu/recommind/engine"
	"github.com/reimu/recommind/kg"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "listen address")
		embeddings   = flag.String("embeddings", "", "path to the KP embeddings CSV")
		edges        = flag.String("edges", "", "path to the KG edges CSV")
		questions    = flag.String("questions", "", "path to the question bank JSON")
		names        = flag.String("names", "", "path to the KP name table CSV")
		relationSeed = flag.Int64("relation-seed", kg.DefaultRelationSeed, "relation vector provider seed")
	)
	flag.Parse()

	if *embeddings == "" || *questions == "" {
		log.Fatalf("recommindd: -embeddings and -questions are required")
	}

	catalog, err := loadCatalog(*embeddings, *edges, *questions, *names)
	if err != nil {
		log.Fatalf("recommindd: loading catalog: %v", err)
	}

	relations := kg.NewRelationVectors(catalog.Dim(), *relationSeed)
	eng := engine.New(catalog, relations, engine.Config{})

	srv := &server{engine: eng}
	mux := http.NewServeMux()
	mux.HandleFunc("/learners", srv.handleLearners)
	mux.HandleFunc("/learners/recommendations", srv.handleRecommendations)
	mux.HandleFunc("/learners/answers", srv.handleAnswers)
	mux.HandleFunc("/learners/status", srv.handleStatus)

	log.Printf("recommindd: listening on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatalf("recommindd: %v", err)
	}
}

func loadCatalog(embeddingsPath, edgesPath, questionsPath, namesPath string) (*kg.Catalog, error) {
	embeddingsFile, err := os.Open(embeddingsPath)
	if err != nil {
		return nil, err
	}
	defer embeddingsFile.Close()
	points, err := kg.LoadEmbeddingsCSV(embeddingsFile)
	if err != nil {
		return nil, err
	}

	if namesPath != "" {
		namesFile, err := os.Open(namesPath)
		if err != nil {
			return nil, err
		}
		defer namesFile.Close()
		names, err := kg.LoadNamesCSV(namesFile)
		if err != nil {
			return nil, err
		}
		points = kg.MergeNames(points, names)
	}

	var edges []kg.KGEdge
	if edgesPath != "" {
		edgesFile, err := os.Open(edgesPath)
		if err != nil {
			return nil, err
		}
		defer edgesFile.Close()
		edges, err = kg.LoadEdgesCSV(edgesFile)
		if err != nil {
			return nil, err
		}
	}

	questionsFile, err := os.Open(questionsPath)
	if err != nil {
		return nil, err
	}
	defer questionsFile.Close()
	qs, err := kg.LoadQuestionsJSON(questionsFile)
	if err != nil {
		return nil, err
	}

	return kg.BuildCatalog(points, edges, qs)
}

type server struct {
	engine *engine.Engine
}

func (s *server) handleLearners(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			LearnerID      string             `json:"learner_id"`
			InitialMastery map[string]float64 `json:"initial_mastery"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.engine.CreateLearner(req.LearnerID, req.InitialMastery); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusCreated)
	case http.MethodGet:
		writeJSON(w, s.engine.List())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	learnerID := r.URL.Query().Get("learner_id")
	n := 5
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}
	recs, err := s.engine.GetRecommendations(learnerID, n)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	type item struct {
		QuestionID      string             `json:"qid"`
		Prompt          render.Question    `json:"rendered"`
		KPWeights       map[string]float64 `json:"kp_weights"`
		Difficulty      float64            `json:"difficulty"`
		StrategySource  string             `json:"strategy_source"`
		IsMixedStrategy bool               `json:"is_mixed_strategy"`
		Score           float64            `json:"score"`
	}

	out := make([]item, len(recs))
	for i, rec := range recs {
		out[i] = item{
			QuestionID:      rec.QuestionID,
			Prompt:          render.Render(rec.QuestionID, rec.Prompt, rec.Options),
			KPWeights:       rec.KPWeights,
			Difficulty:      rec.Difficulty,
			StrategySource:  rec.StrategySource,
			IsMixedStrategy: rec.IsMixedStrategy,
			Score:           rec.Score,
		}
	}
	writeJSON(w, out)
}

func (s *server) handleAnswers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		LearnerID string `json:"learner_id"`
		Answers   []struct {
			QuestionID     string `json:"qid"`
			SelectedLetter string `json:"selected_letter"`
		} `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inputs := make([]engine.AnswerInput, len(req.Answers))
	for i, a := range req.Answers {
		inputs[i] = engine.AnswerInput{QuestionID: a.QuestionID, SelectedLetter: a.SelectedLetter}
	}

	summary, err := s.engine.SubmitAnswers(req.LearnerID, inputs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, summary)
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	learnerID := r.URL.Query().Get("learner_id")
	status, err := s.engine.GetStatus(learnerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("recommindd: encoding response: %v", err)
	}
}
