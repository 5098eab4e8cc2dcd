package kg

import "github.com/reimu/recommind/vecmath"

// Catalog is the immutable, read-only store of knowledge-point embeddings,
// the question bank, KG edges, and the KP name table. It is built once by
// BuildCatalog (after an external loader has parsed the source rows — see
// SPEC_FULL.md §6) and is safe for concurrent use by any number of
// goroutines, since nothing in it is ever mutated after construction.
type Catalog struct {
	dim       int
	points    map[string]KnowledgePoint
	edges     []KGEdge
	questions map[string]Question
	// questionOrder preserves bank order for deterministic iteration
	// (cold start's "bank order" requirement, and ties in candidate pools).
	questionOrder []string
	kpIndex       map[string][]string // kp id -> qids, in bank order
}

// BuildCatalog validates and assembles a Catalog from already-parsed rows.
// Embeddings are L2-normalized. It returns a *CorruptCatalogError if the
// input is inconsistent (ragged embeddings, a question with no knowledge
// points or fewer than four options, a duplicate id).
func BuildCatalog(points []KnowledgePoint, edges []KGEdge, questions []Question) (*Catalog, error) {
	if len(points) == 0 {
		return nil, &CorruptCatalogError{Reason: "no knowledge points"}
	}

	dim := len(points[0].Embedding)
	if dim == 0 {
		return nil, &CorruptCatalogError{Reason: "zero-width embeddings"}
	}

	pointMap := make(map[string]KnowledgePoint, len(points))
	for _, p := range points {
		if p.ID == "" {
			return nil, &CorruptCatalogError{Reason: "knowledge point with empty id"}
		}
		if len(p.Embedding) != dim {
			return nil, &CorruptCatalogError{Reason: "ragged embedding row for " + p.ID}
		}
		if _, dup := pointMap[p.ID]; dup {
			return nil, &CorruptCatalogError{Reason: "duplicate knowledge point " + p.ID}
		}
		p.Embedding = vecmath.Normalize(vecmath.Clone(p.Embedding))
		pointMap[p.ID] = p
	}

	questionMap := make(map[string]Question, len(questions))
	order := make([]string, 0, len(questions))
	index := make(map[string][]string)
	for _, q := range questions {
		if q.ID == "" {
			return nil, &CorruptCatalogError{Reason: "question with empty id"}
		}
		if _, dup := questionMap[q.ID]; dup {
			return nil, &CorruptCatalogError{Reason: "duplicate question " + q.ID}
		}
		if len(q.KPWeights) == 0 {
			return nil, &CorruptCatalogError{Reason: "question " + q.ID + " has no knowledge points"}
		}
		for _, opt := range q.Options {
			if opt == "" {
				return nil, &CorruptCatalogError{Reason: "question " + q.ID + " has fewer than four options"}
			}
		}
		questionMap[q.ID] = q
		order = append(order, q.ID)
		for kpID := range q.KPWeights {
			index[kpID] = append(index[kpID], q.ID)
		}
	}

	return &Catalog{
		dim:           dim,
		points:        pointMap,
		edges:         append([]KGEdge(nil), edges...),
		questions:     questionMap,
		questionOrder: order,
		kpIndex:       index,
	}, nil
}

// Dim returns the embedding dimension.
func (c *Catalog) Dim() int { return c.dim }

// Embedding returns the L2-normalized embedding for kp, or ErrUnknownKP.
func (c *Catalog) Embedding(kp string) ([]float64, error) {
	p, ok := c.points[kp]
	if !ok {
		return nil, ErrUnknownKP
	}
	return p.Embedding, nil
}

// Name returns the display name for kp, falling back to the id itself
// when no name table entry is present (matches the Python prototype's
// `_get_node_name` fallback).
func (c *Catalog) Name(kp string) string {
	if p, ok := c.points[kp]; ok && p.Name != "" {
		return p.Name
	}
	return kp
}

// HasKP reports whether kp is a known knowledge point.
func (c *Catalog) HasKP(kp string) bool {
	_, ok := c.points[kp]
	return ok
}

// KnowledgePoints returns every knowledge point in the catalog, in no
// particular order.
func (c *Catalog) KnowledgePoints() []KnowledgePoint {
	out := make([]KnowledgePoint, 0, len(c.points))
	for _, p := range c.points {
		out = append(out, p)
	}
	return out
}

// Question returns the question with the given id, or ErrUnknownQuestion.
func (c *Catalog) Question(qid string) (Question, error) {
	q, ok := c.questions[qid]
	if !ok {
		return Question{}, ErrUnknownQuestion
	}
	return q, nil
}

// QuestionsWith returns every question that references kp, in the order
// they appear in the source question bank.
func (c *Catalog) QuestionsWith(kp string) []Question {
	ids := c.kpIndex[kp]
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.questions[id])
	}
	return out
}

// AllQuestions returns every question in bank order.
func (c *Catalog) AllQuestions() []Question {
	out := make([]Question, 0, len(c.questionOrder))
	for _, id := range c.questionOrder {
		out = append(out, c.questions[id])
	}
	return out
}

// Edges returns the KG edges loaded into the catalog.
func (c *Catalog) Edges() []KGEdge {
	return append([]KGEdge(nil), c.edges...)
}
