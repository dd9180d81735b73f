package grading

import "sort"

// Assignment is a minimal view of an assignment needed for grade math.
// Callers convert from their richer record type; ungraded entries carry
// zero Earned/Max and are excluded from every denominator.
type Assignment struct {
	ID        string
	Category  string
	Earned    float64
	Max       float64
	Graded    bool
	Submitted bool
	Estimated bool // Earned/Max came from the category-mean fallback
}

// DropRule discards the lowest Count graded assignments in a category
// before averaging.
type DropRule struct {
	Enabled bool `json:"enabled"`
	Count   int  `json:"count"`
}

// SimpleResult is the unweighted, point-weighted course average.
type SimpleResult struct {
	HasGrades         bool    `json:"has_grades"`
	AveragePercentage float64 `json:"average_percentage"`
	EarnedPoints      float64 `json:"earned_points"`
	TotalPoints       float64 `json:"total_points"`
	GradedCount       int     `json:"graded_count"`
	TotalCount        int     `json:"total_count"`
}

// CategoryDetail is the per-category breakdown behind a weighted average.
type CategoryDetail struct {
	Category     string  `json:"category"`
	Weight       float64 `json:"weight"`
	Percentage   float64 `json:"percentage"`
	EarnedPoints float64 `json:"earned_points"`
	TotalPoints  float64 `json:"total_points"`
	GradedCount  int     `json:"graded_count"`
	TotalCount   int     `json:"total_count"`
	DroppedCount int     `json:"dropped_count"`
	IsFuture     bool    `json:"is_future"`
	HasEstimates bool    `json:"has_estimates"`
}

type WeightedResult struct {
	WeightedAverage float64          `json:"weighted_average"`
	CategoryDetails []CategoryDetail `json:"category_details"`
	// TotalWeightGraded is the denominator the average was normalized over:
	// the summed weight of categories with at least one graded assignment.
	TotalWeightGraded      float64  `json:"total_weight_graded"`
	HasFutureCategories    bool     `json:"has_future_categories"`
	AppliedClobberPolicies []string `json:"applied_clobber_policies,omitempty"`
}

// SimpleGrades computes the point-weighted average over graded assignments:
// sum(earned)/sum(max), not a mean of per-assignment percentages. Low-point
// assignments therefore cannot dominate the average.
func SimpleGrades(assignments []Assignment) SimpleResult {
	res := SimpleResult{TotalCount: len(assignments)}
	for _, a := range assignments {
		if !a.Graded || a.Max <= 0 {
			continue
		}
		res.EarnedPoints += a.Earned
		res.TotalPoints += a.Max
		res.GradedCount++
	}
	if res.TotalPoints <= 0 {
		return SimpleResult{TotalCount: len(assignments)}
	}
	res.HasGrades = true
	res.AveragePercentage = res.EarnedPoints / res.TotalPoints * 100
	return res
}

// WeightedGrades computes the course average over the resolved weight map.
// Categories with weight but no graded assignments are reported as future
// and excluded from the denominator, so an unstarted final does not dilute
// the grade. Drop rules remove lowest-percentage assignments per category
// before averaging.
func WeightedGrades(assignments []Assignment, weights map[string]float64, drops map[string]DropRule) WeightedResult {
	byCat := map[string][]Assignment{}
	for _, a := range assignments {
		byCat[a.Category] = append(byCat[a.Category], a)
	}

	cats := make([]string, 0, len(weights))
	for c := range weights {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	var res WeightedResult
	var weightedSum float64
	for _, cat := range cats {
		w := weights[cat]
		if w <= 0 {
			continue
		}
		detail := categoryDetail(cat, w, byCat[cat], drops[cat])
		res.CategoryDetails = append(res.CategoryDetails, detail)
		if detail.IsFuture {
			res.HasFutureCategories = true
			continue
		}
		weightedSum += detail.Percentage * w
		res.TotalWeightGraded += w
	}
	if res.TotalWeightGraded > 0 {
		res.WeightedAverage = weightedSum / res.TotalWeightGraded
	}
	return res
}

func categoryDetail(cat string, weight float64, members []Assignment, drop DropRule) CategoryDetail {
	detail := CategoryDetail{Category: cat, Weight: weight, TotalCount: len(members)}

	graded := make([]Assignment, 0, len(members))
	for _, a := range members {
		if a.Graded && a.Max > 0 {
			graded = append(graded, a)
		}
	}
	detail.GradedCount = len(graded)
	if len(graded) == 0 {
		detail.IsFuture = true
		return detail
	}

	kept := graded
	if drop.Enabled && drop.Count > 0 {
		kept = applyDrop(graded, drop.Count)
		detail.DroppedCount = len(graded) - len(kept)
	}
	for _, a := range kept {
		detail.EarnedPoints += a.Earned
		detail.TotalPoints += a.Max
		if a.Estimated {
			detail.HasEstimates = true
		}
	}
	if detail.TotalPoints > 0 {
		detail.Percentage = detail.EarnedPoints / detail.TotalPoints * 100
	}
	return detail
}

// applyDrop removes the lowest count assignments by percentage. The sort is
// stable: ties keep original list order, so which of two equal scores gets
// dropped is deterministic. Count is clamped so at least one assignment
// always remains.
func applyDrop(graded []Assignment, count int) []Assignment {
	if count > len(graded)-1 {
		count = len(graded) - 1
	}
	if count <= 0 {
		return graded
	}
	idx := make([]int, len(graded))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return pct(graded[idx[i]]) < pct(graded[idx[j]])
	})
	dropped := map[int]bool{}
	for _, i := range idx[:count] {
		dropped[i] = true
	}
	kept := make([]Assignment, 0, len(graded)-count)
	for i, a := range graded {
		if !dropped[i] {
			kept = append(kept, a)
		}
	}
	return kept
}

func pct(a Assignment) float64 {
	if a.Max <= 0 {
		return 0
	}
	return a.Earned / a.Max * 100
}

// ProjectNeededAverage answers the single what-if question: the average
// percentage required across the not-yet-graded weight to land on target.
// ok is false when no ungraded weight remains.
func ProjectNeededAverage(res WeightedResult, target float64) (needed float64, ok bool) {
	remaining := 1.0 - res.TotalWeightGraded
	if remaining <= 1e-9 {
		return 0, false
	}
	return (target - res.WeightedAverage*res.TotalWeightGraded) / remaining, true
}
