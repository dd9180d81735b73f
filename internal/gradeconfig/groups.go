package gradeconfig

import "sort"

// ExpandGroups flattens category groups into per-category weights using the
// current assignment counts. Equal distribution splits the group weight
// evenly across member categories that have at least one assignment; members
// without assignments get 0 and the weight re-splits among the rest, so a
// not-yet-populated midterm2 does not dilute midterm1. Proportional
// distribution splits by assignment count. A group whose members all lack
// assignments splits equally across every member — they are all future
// categories and drop out of the graded denominator downstream anyway.
func ExpandGroups(groups map[string]CategoryGroup, counts map[string]int) map[string]float64 {
	out := map[string]float64{}
	names := make([]string, 0, len(groups))
	for n := range groups {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		g := groups[name]
		active := make([]string, 0, len(g.Categories))
		total := 0
		for _, cat := range g.Categories {
			if counts[cat] > 0 {
				active = append(active, cat)
				total += counts[cat]
			}
		}

		switch {
		case len(active) == 0:
			share := g.TotalWeight / float64(len(g.Categories))
			for _, cat := range g.Categories {
				out[cat] = share
			}
		case g.DistributionMethod == DistributeProportional:
			for _, cat := range g.Categories {
				out[cat] = g.TotalWeight * float64(counts[cat]) / float64(total)
			}
		default: // equal
			share := g.TotalWeight / float64(len(active))
			for _, cat := range g.Categories {
				out[cat] = 0
			}
			for _, cat := range active {
				out[cat] = share
			}
		}
	}
	return out
}

// MergeCategoryWeights combines individual weights with expanded group
// weights into the effective weight map. A category claimed by two groups,
// or by a group and the individual map, has no single weight source and is
// rejected.
func MergeCategoryWeights(individual map[string]float64, groups map[string]CategoryGroup, assignments []Assignment) (map[string]float64, error) {
	owner := map[string]string{}
	var errs ValidationErrors
	for name, g := range groups {
		for _, cat := range g.Categories {
			if prev, ok := owner[cat]; ok {
				errs = append(errs, ValidationError{
					Field:   "category_groups." + name,
					Message: "category \"" + cat + "\" already belongs to group \"" + prev + "\"",
				})
				continue
			}
			owner[cat] = name
			if _, ok := individual[cat]; ok {
				errs = append(errs, ValidationError{
					Field:   "category_groups." + name,
					Message: "category \"" + cat + "\" has both a group and an individual weight",
				})
			}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	counts := map[string]int{}
	for _, a := range assignments {
		counts[a.Category]++
	}

	merged := make(map[string]float64, len(individual))
	for cat, w := range individual {
		merged[cat] = w
	}
	for cat, w := range ExpandGroups(groups, counts) {
		merged[cat] = w
	}
	return merged, nil
}
