package kg

// KnowledgePoint is a named concept positioned in the shared embedding
// space. Embedding is L2-normalized by BuildCatalog before it is stored.
type KnowledgePoint struct {
	ID        string
	Name      string
	Embedding []float64
}

// Relation labels drawn from the closed set KGEdge uses.
const (
	RelationIsPrerequisiteFor = "is_prerequisite_for"
	RelationIsRelatedTo       = "is_related_to"
)

// KGEdge is an ordered, labeled edge between two knowledge points. It is
// used only for diagnostic reporting and connectivity heuristics, never
// for graph traversal in the recommendation path.
type KGEdge struct {
	Source   string
	Target   string
	Relation string
}

// Question is an immutable multiple-choice item. Options are ordered A..D
// by index; CorrectOption stores the correct option's text (not its
// letter), matching the source question bank format.
type Question struct {
	ID            string
	Prompt        string
	Options       [4]string
	CorrectOption string
	Difficulty    float64
	KPWeights     map[string]float64
}

// OptionLetters is the fixed A..D letter sequence Question.Options is
// indexed by.
var OptionLetters = [4]byte{'A', 'B', 'C', 'D'}
