package gradeconfig

import "sort"

// ClobberOutcome is the result of running every clobber policy in order.
type ClobberOutcome struct {
	// Weights is the adjusted weight map. Total weight is conserved: every
	// policy either moves weight or leaves the map untouched.
	Weights map[string]float64
	// Substitutions replaces a category's assignment set for downstream
	// calculation only (best_of). Categories not present keep their
	// original assignments.
	Substitutions map[string][]Assignment
	// Applied lists the names of policies whose condition fired.
	Applied []string
}

// ApplyClobberPolicies runs policies in declaration order over a copy of
// the weight map. Order matters: a later policy sees the weights the
// earlier ones produced. A policy whose source category has zero weight is
// a no-op, not an error.
func ApplyClobberPolicies(policies []ClobberPolicy, assignments []Assignment, weights map[string]float64) ClobberOutcome {
	out := ClobberOutcome{
		Weights:       make(map[string]float64, len(weights)),
		Substitutions: map[string][]Assignment{},
	}
	for cat, w := range weights {
		out.Weights[cat] = w
	}

	byCat := map[string][]Assignment{}
	for _, a := range assignments {
		byCat[a.Category] = append(byCat[a.Category], a)
	}

	for _, p := range policies {
		switch p.Type {
		case ClobberRedistribute:
			if p.Redistribute == nil {
				continue
			}
			if !conditionHolds(p.Redistribute.Condition, byCat[p.SourceCategory]) {
				continue
			}
			if redistribute(out.Weights, p.SourceCategory, p.Redistribute.TargetCategories) {
				out.Applied = append(out.Applied, p.Name)
			}

		case ClobberRequireOne:
			if p.RequireOne == nil {
				continue
			}
			if !conditionHolds(CondNoSubmissions, byCat[p.SourceCategory]) {
				continue
			}
			if redistribute(out.Weights, p.SourceCategory, p.RequireOne.TargetCategories) {
				out.Applied = append(out.Applied, p.Name)
			}

		case ClobberBestOf:
			if p.BestOf == nil {
				continue
			}
			if out.Weights[p.SourceCategory] <= 0 {
				continue
			}
			members := out.Substitutions[p.SourceCategory]
			if members == nil {
				members = byCat[p.SourceCategory]
			}
			kept := bestOf(members, p.BestOf.Keep)
			if kept != nil {
				out.Substitutions[p.SourceCategory] = kept
				out.Applied = append(out.Applied, p.Name)
			}
		}
	}
	return out
}

// conditionHolds checks the predicate over every assignment in the source
// category. An empty category satisfies either condition vacuously.
func conditionHolds(cond ClobberCondition, members []Assignment) bool {
	for _, a := range members {
		switch cond {
		case CondNoSubmissions:
			if a.Submitted {
				return false
			}
		case CondNoGrades:
			if a.Graded {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// redistribute zeroes the source weight and splits it evenly across the
// targets. Reports whether any weight actually moved.
func redistribute(weights map[string]float64, source string, targets []string) bool {
	w := weights[source]
	if w <= 0 || len(targets) == 0 {
		return false
	}
	weights[source] = 0
	share := w / float64(len(targets))
	for _, t := range targets {
		weights[t] += share
	}
	return true
}

// bestOf keeps the top-keep graded assignments by percentage (stable on
// ties) plus every ungraded member; ungraded assignments have no percentage
// to rank and do not affect the average. Returns nil when nothing is
// trimmed.
func bestOf(members []Assignment, keep int) []Assignment {
	graded := make([]Assignment, 0, len(members))
	rest := make([]Assignment, 0, len(members))
	for _, a := range members {
		if a.Graded && a.MaxPoints != nil && *a.MaxPoints > 0 {
			graded = append(graded, a)
		} else {
			rest = append(rest, a)
		}
	}
	if keep >= len(graded) {
		return nil
	}
	idx := make([]int, len(graded))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return assignmentPct(graded[idx[i]]) > assignmentPct(graded[idx[j]])
	})
	out := make([]Assignment, 0, keep+len(rest))
	top := idx[:keep]
	sort.Ints(top) // keep original order within the survivors
	for _, i := range top {
		out = append(out, graded[i])
	}
	return append(out, rest...)
}

func assignmentPct(a Assignment) float64 {
	if a.EarnedPoints == nil || a.MaxPoints == nil || *a.MaxPoints <= 0 {
		return 0
	}
	return *a.EarnedPoints / *a.MaxPoints * 100
}
