package candidate

import (
	"sort"

	"github.com/reimu/recommind/analysis"
	"github.com/reimu/recommind/kg"
	"github.com/reimu/recommind/learner"
	"github.com/reimu/recommind/vecmath"
)

const (
	expansionMasteryFloor = 0.3
	maxExpansionAnchors   = 3
	maxTargets            = 3
)

// TargetKPs selects the target knowledge-point set for strategyName, per
// spec.md §4.7. cat resolves embeddings for the expansion strategy's
// vector-arithmetic augmentation; rel supplies relation-kind translation
// vectors.
func TargetKPs(strategyName string, state analysis.LearningState, mastery map[string]float64, cat *kg.Catalog, rel *kg.RelationVectors) []string {
	switch strategyName {
	case "consolidation":
		return consolidationTargets(state)
	case "gap_filling":
		return gapFillingTargets(state)
	case "expansion":
		return expansionTargets(state, mastery, cat, rel)
	default:
		return balancedTargets(state)
	}
}

func consolidationTargets(state analysis.LearningState) []string {
	var out []string
	for i := 0; i < len(state.ModeratePoints) && len(out) < 3; i++ {
		out = append(out, state.ModeratePoints[i].KP)
	}
	mastered := highestFirst(state.MasteredPoints)
	for i := 0; i < len(mastered) && i < 2; i++ {
		out = appendUnique(out, mastered[i].KP)
	}
	return out
}

func gapFillingTargets(state analysis.LearningState) []string {
	var out []string
	hasMastered := len(state.MasteredPoints) > 0

	weakByKP := make(map[string]float64, len(state.WeakPoints))
	for _, w := range state.WeakPoints {
		weakByKP[w.KP] = w.Score
	}

	if hasMastered {
		connected := append([]string(nil), state.Connectivity.ConnectedWeak...)
		sort.Slice(connected, func(i, j int) bool { return weakByKP[connected[i]] < weakByKP[connected[j]] })
		for i := 0; i < len(connected) && len(out) < 2; i++ {
			out = appendUnique(out, connected[i])
		}
	}

	for i := 0; i < len(state.WeakPoints) && len(out) < maxTargets; i++ {
		out = appendUnique(out, state.WeakPoints[i].KP)
	}
	return out
}

func expansionTargets(state analysis.LearningState, mastery map[string]float64, cat *kg.Catalog, rel *kg.RelationVectors) []string {
	out := append([]string(nil), state.Connectivity.ExpansionCandidates...)
	if len(out) > maxTargets {
		out = out[:maxTargets]
	}
	if len(out) >= maxTargets || cat == nil || rel == nil {
		return out
	}

	mastered := highestFirst(state.MasteredPoints)
	if len(mastered) > maxExpansionAnchors {
		mastered = mastered[:maxExpansionAnchors]
	}

	type scored struct {
		kp    string
		score float64
	}
	best := make(map[string]float64)
	order := make([]string, 0)

	for _, m := range mastered {
		anchorEmb, err := cat.Embedding(m.KP)
		if err != nil {
			continue
		}
		for _, kind := range []string{kg.RelationPrerequisite, kg.RelationSimilarity, kg.RelationAdvanced} {
			rv, ok := rel.Vector(kind)
			if !ok {
				continue
			}
			target := vecmath.Add(anchorEmb, rv)
			for _, p := range cat.KnowledgePoints() {
				if mastery[p.ID] >= expansionMasteryFloor {
					continue
				}
				score := vecmath.Cosine(target, p.Embedding) * m.Score
				if prev, ok := best[p.ID]; !ok || score > prev {
					if !ok {
						order = append(order, p.ID)
					}
					best[p.ID] = score
				}
			}
		}
	}

	ranked := make([]scored, 0, len(order))
	for _, kp := range order {
		ranked = append(ranked, scored{kp: kp, score: best[kp]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	for _, r := range ranked {
		if len(out) >= maxTargets {
			break
		}
		out = appendUnique(out, r.kp)
	}
	return out
}

func balancedTargets(state analysis.LearningState) []string {
	var out []string
	if len(state.WeakPoints) > 0 {
		out = appendUnique(out, state.WeakPoints[0].KP)
	}
	for i := 0; i < len(state.ModeratePoints) && len(out) < 3; i++ {
		out = appendUnique(out, state.ModeratePoints[i].KP)
	}
	mastered := highestFirst(state.MasteredPoints)
	if len(mastered) > 0 && len(out) < 3 {
		out = appendUnique(out, mastered[0].KP)
	}
	return out
}

func highestFirst(in []learner.KPScore) []learner.KPScore {
	out := append([]learner.KPScore(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func appendUnique(list []string, kp string) []string {
	for _, x := range list {
		if x == kp {
			return list
		}
	}
	return append(list, kp)
}
