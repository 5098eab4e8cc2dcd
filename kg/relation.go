package kg

import (
	"math/rand"

	"github.com/reimu/recommind/vecmath"
)

// Relation kinds the RelationVectors provider supplies.
const (
	RelationPrerequisite = "prerequisite"
	RelationSimilarity   = "similarity"
	RelationAdvanced     = "advanced"
)

// relationParams holds the per-kind mean/std used to draw a relation
// vector from a normal distribution, mirroring simple_system.py's
// _get_enhanced_relation_vector base_mean/base_std table.
var relationParams = map[string]struct{ mean, std float64 }{
	RelationPrerequisite: {mean: 0.08, std: 0.12},
	RelationSimilarity:   {mean: 0.12, std: 0.15},
	RelationAdvanced:     {mean: 0.18, std: 0.25},
}

// DefaultRelationSeed is the fixed seed used when no seed is supplied,
// matching the Python prototype's np.random.seed(42).
const DefaultRelationSeed = 42

// RelationVectors supplies the three named translation vectors used by
// the Candidate Generator's expansion strategy. It is deterministic given
// its seed: constructing two providers with the same seed and dimension
// always yields bit-identical vectors.
type RelationVectors struct {
	vectors map[string][]float64
}

// NewRelationVectors draws prerequisite/similarity/advanced vectors from a
// fixed-seed normal distribution and L2-normalizes each.
func NewRelationVectors(dim int, seed int64) *RelationVectors {
	rng := rand.New(rand.NewSource(seed))
	out := make(map[string][]float64, len(relationParams))
	// Iterate kinds in a fixed order so the draw sequence — and therefore
	// the resulting vectors — never depends on map iteration order.
	for _, kind := range []string{RelationPrerequisite, RelationSimilarity, RelationAdvanced} {
		p := relationParams[kind]
		v := make([]float64, dim)
		for i := range v {
			v[i] = rng.NormFloat64()*p.std + p.mean
		}
		out[kind] = vecmath.Normalize(v)
	}
	return &RelationVectors{vectors: out}
}

// NewExternalRelationVectors builds a provider from externally supplied
// vectors (e.g. learned offline) instead of simulating them. Each vector
// must have the same dimension; behavior after construction is identical
// to a simulated provider.
func NewExternalRelationVectors(vectors map[string][]float64) *RelationVectors {
	out := make(map[string][]float64, len(vectors))
	for k, v := range vectors {
		out[k] = vecmath.Normalize(vecmath.Clone(v))
	}
	return &RelationVectors{vectors: out}
}

// Vector returns the relation vector for kind, or nil, false if kind is
// not one of the known relation kinds.
func (r *RelationVectors) Vector(kind string) ([]float64, bool) {
	v, ok := r.vectors[kind]
	return v, ok
}
