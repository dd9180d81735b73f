package gradeconfig

import (
	"fmt"
	"strings"
)

// Weight sums are accepted within this tolerance of 1.0.
const WeightSumTolerance = 0.001

// ValidationError captures a single field-specific validation issue.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates multiple validation problems so the UI can
// report them all at once instead of one per save attempt.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// ValidateConfig checks a CourseConfig before persisting. Structural checks
// (ranges, shapes, conflicts) always run; the weight-sum-equals-1 check only
// runs in strict mode, so incremental mid-session edits can be saved while
// temporarily inconsistent.
func ValidateConfig(cfg CourseConfig, strict bool) error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch cfg.System {
	case SystemPercentage, SystemPoints:
	case "":
		add("system", "required")
	default:
		add("system", "unknown grading system %q", cfg.System)
	}
	if cfg.TotalPoints != nil && *cfg.TotalPoints <= 0 {
		add("total_points", "must be > 0")
	}

	weightSum := 0.0
	for cat, w := range cfg.Weights {
		if cat == "" {
			add("weights", "empty category name")
		}
		if w < 0 || w > 1 {
			add("weights."+cat, "weight %v out of [0,1]", w)
		}
		weightSum += w
	}

	// Each category has exactly one weight source: one group, or the
	// individual weights map, never both.
	owner := map[string]string{}
	for name, g := range cfg.CategoryGroups {
		field := "category_groups." + name
		if len(g.Categories) == 0 {
			add(field, "group has no categories")
		}
		if g.TotalWeight < 0 || g.TotalWeight > 1 {
			add(field, "total_weight %v out of [0,1]", g.TotalWeight)
		}
		switch g.DistributionMethod {
		case DistributeEqual, DistributeProportional:
		default:
			add(field, "unknown distribution method %q", g.DistributionMethod)
		}
		for _, cat := range g.Categories {
			if prev, ok := owner[cat]; ok {
				add(field, "category %q already belongs to group %q", cat, prev)
				continue
			}
			owner[cat] = name
			if _, ok := cfg.Weights[cat]; ok {
				add(field, "category %q has both a group and an individual weight", cat)
			}
		}
		weightSum += g.TotalWeight
	}

	if strict && (len(cfg.Weights) > 0 || len(cfg.CategoryGroups) > 0) {
		if weightSum < 1-WeightSumTolerance || weightSum > 1+WeightSumTolerance {
			add("weights", "weights sum to %.4f, expected 1.0 ±%.3f", weightSum, WeightSumTolerance)
		}
	}

	for cat, dp := range cfg.DropPolicies {
		if dp.Enabled && dp.Count < 1 {
			add("drop_policies."+cat, "count must be >= 1")
		}
	}

	seen := map[string]bool{}
	for i, p := range cfg.ClobberPolicies {
		field := fmt.Sprintf("clobber_policies[%d]", i)
		if p.Name == "" {
			add(field, "name required")
		} else if seen[p.Name] {
			add(field, "duplicate policy name %q", p.Name)
		}
		seen[p.Name] = true
		if p.SourceCategory == "" {
			add(field, "source_category required")
		}
		validateClobberShape(p, field, add)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateClobberShape(p ClobberPolicy, field string, add func(string, string, ...any)) {
	switch p.Type {
	case ClobberRedistribute:
		if p.Redistribute == nil {
			add(field, "redistribute config required")
			return
		}
		switch p.Redistribute.Condition {
		case CondNoSubmissions, CondNoGrades:
		default:
			add(field, "unknown condition %q", p.Redistribute.Condition)
		}
		if len(p.Redistribute.TargetCategories) == 0 {
			add(field, "at least one target category required")
		}
	case ClobberBestOf:
		if p.BestOf == nil {
			add(field, "best_of config required")
			return
		}
		if p.BestOf.Keep < 1 {
			add(field, "keep must be >= 1")
		}
	case ClobberRequireOne:
		if p.RequireOne == nil {
			add(field, "require_one config required")
			return
		}
		if len(p.RequireOne.TargetCategories) == 0 {
			add(field, "at least one target category required")
		}
	default:
		add(field, "unknown clobber type %q", p.Type)
	}
}

// ValidateCourseLink checks link topology against all existing links:
// one primary per link set, and no course may be linked under two
// primaries or be both a primary and a linked member.
func ValidateCourseLink(link CourseLink, existing []CourseLink) error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if link.PrimaryCourse == "" {
		add("primary_course", "required")
	}
	if len(link.LinkedCourses) == 0 {
		add("linked_courses", "at least one linked course required")
	}
	members := map[string]bool{}
	for _, c := range link.LinkedCourses {
		if c == link.PrimaryCourse {
			add("linked_courses", "course %q cannot link to itself", c)
		}
		if members[c] {
			add("linked_courses", "course %q listed twice", c)
		}
		members[c] = true
	}
	for course := range link.CategoryRules {
		if !members[course] {
			add("category_rules", "rule for %q which is not a linked course", course)
		}
	}

	for _, other := range existing {
		if other.PrimaryCourse == link.PrimaryCourse {
			continue // replacing its own record
		}
		if members[other.PrimaryCourse] {
			add("linked_courses", "course %q is already a primary of its own link set", other.PrimaryCourse)
		}
		for _, c := range other.LinkedCourses {
			if c == link.PrimaryCourse {
				add("primary_course", "course %q is already linked under %q", c, other.PrimaryCourse)
			}
			if members[c] {
				add("linked_courses", "course %q is already linked under %q", c, other.PrimaryCourse)
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
