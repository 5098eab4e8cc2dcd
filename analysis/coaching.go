package analysis

import (
	"fmt"

	"github.com/reimu/recommind/learner"
)

// NameLookup resolves a knowledge-point id to its display name.
type NameLookup interface {
	Name(kp string) string
}

// CoachingNotes produces short natural-language guidance strings for a
// learner's weak points, bucketed by severity, plus one strategic remark
// keyed by how many weak points remain. Grounded on simple_system.py's
// RecommendationSystem._get_weak_point_recommendations.
func CoachingNotes(weak []learner.KPScore, names NameLookup) []string {
	var notes []string
	for _, w := range weak {
		name := w.KP
		if names != nil {
			name = names.Name(w.KP)
		}
		switch {
		case w.Score < 0.1:
			notes = append(notes, fmt.Sprintf("%s needs foundational review — mastery is very low (%.2f).", name, w.Score))
		case w.Score < 0.2:
			notes = append(notes, fmt.Sprintf("%s could use targeted practice (%.2f).", name, w.Score))
		default:
			notes = append(notes, fmt.Sprintf("%s is improving but still below the consolidation threshold (%.2f).", name, w.Score))
		}
	}

	switch {
	case len(weak) == 0:
		notes = append(notes, "No weak points detected; consider expansion into new material.")
	case len(weak) <= 2:
		notes = append(notes, "A small number of weak points remain; focused gap-filling should close them quickly.")
	default:
		notes = append(notes, "Several weak points remain; prioritize the lowest-scoring ones first.")
	}

	return notes
}
