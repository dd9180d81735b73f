package gradeconfig

import (
	"time"

	"github.com/grade-lens/gradelens/internal/grading"
)

// Assignment is one scraped gradebook row, already categorized by the
// upstream classifier. The engine treats it as read-only input except for
// category overrides and past-due normalization, which operate on copies.
type Assignment struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Category           string     `json:"category"`
	CategoryConfidence float64    `json:"category_confidence"`
	EarnedPoints       *float64   `json:"earned_points,omitempty"`
	MaxPoints          *float64   `json:"max_points,omitempty"`
	Graded             bool       `json:"graded"`
	Submitted          bool       `json:"submitted"`
	DueDate            *time.Time `json:"due_date,omitempty"`

	// SourceCourse is set when the assignment was pulled in from a linked
	// course during aggregation.
	SourceCourse string `json:"source_course,omitempty"`
	// PointsEstimated marks assignments whose max points came from the
	// category-mean fallback rather than the gradebook.
	PointsEstimated bool `json:"points_estimated,omitempty"`
}

type GradingSystem string

const (
	SystemPercentage GradingSystem = "percentage"
	SystemPoints     GradingSystem = "points"
)

type DistributionMethod string

const (
	DistributeEqual        DistributionMethod = "equal"
	DistributeProportional DistributionMethod = "proportional"
)

// CategoryGroup bundles categories under one shared weight, split among
// members by the distribution method.
type CategoryGroup struct {
	Categories         []string           `json:"categories"`
	TotalWeight        float64            `json:"total_weight"`
	DistributionMethod DistributionMethod `json:"distribution_method"`
}

type ClobberType string

const (
	ClobberRedistribute ClobberType = "redistribute"
	ClobberBestOf       ClobberType = "best_of"
	ClobberRequireOne   ClobberType = "require_one"
)

type ClobberCondition string

const (
	CondNoSubmissions ClobberCondition = "no_submissions"
	CondNoGrades      ClobberCondition = "no_grades"
)

// ClobberPolicy conditionally moves a category's weight elsewhere, or trims
// its assignment set, based on submission/grading state. Exactly one of the
// variant configs is set, matching Type.
type ClobberPolicy struct {
	Name           string      `json:"name"`
	Type           ClobberType `json:"type"`
	SourceCategory string      `json:"source_category"`

	Redistribute *RedistributeConfig `json:"redistribute,omitempty"`
	BestOf       *BestOfConfig       `json:"best_of,omitempty"`
	RequireOne   *RequireOneConfig   `json:"require_one,omitempty"`
}

type RedistributeConfig struct {
	Condition        ClobberCondition `json:"condition"`
	TargetCategories []string         `json:"target_categories"`
}

type BestOfConfig struct {
	Keep int `json:"keep"`
}

type RequireOneConfig struct {
	TargetCategories []string `json:"target_categories"`
}

// CourseConfig is the full grading policy for one course. Weights are
// always stored as fractions of 1.0; percent-vs-points display conversion
// happens at presentation boundaries, never here.
type CourseConfig struct {
	System      GradingSystem `json:"system"`
	TotalPoints *float64      `json:"total_points,omitempty"` // only meaningful under SystemPoints

	Weights        map[string]float64          `json:"weights,omitempty"`
	CategoryGroups map[string]CategoryGroup    `json:"category_groups,omitempty"`
	DropPolicies   map[string]grading.DropRule `json:"drop_policies,omitempty"`

	// ClobberPolicies is a slice, not a map: application order is
	// significant and must survive a JSON round-trip.
	ClobberPolicies []ClobberPolicy `json:"clobber_policies,omitempty"`

	ManualOverrides     map[string]string `json:"manual_overrides,omitempty"` // assignment ID -> category
	ExcludedAssignments map[string]bool   `json:"excluded_assignments,omitempty"`

	HasSeenGradeSetup bool      `json:"has_seen_grade_setup,omitempty"`
	TemplateUsed      string    `json:"template_used,omitempty"`
	LastModified      time.Time `json:"last_modified"`
}

// DefaultConfig is what a course gets before any configuration is saved:
// percentage system, no weights, so grades fall back to the simple average.
func DefaultConfig() CourseConfig {
	return CourseConfig{System: SystemPercentage}
}

// HasWeights reports whether a weighted calculation is possible at all.
func (c CourseConfig) HasWeights() bool {
	return len(c.Weights) > 0 || len(c.CategoryGroups) > 0
}

// RemapRule maps a linked course's category to a category in the primary
// course; the destination "drop" excludes the assignment entirely.
type RemapRule map[string]string

const RemapDrop = "drop"

// CourseLink aggregates one or more secondary courses into a primary
// course's assignment set.
type CourseLink struct {
	PrimaryCourse string               `json:"primary_course"`
	LinkedCourses []string             `json:"linked_courses"`
	CategoryRules map[string]RemapRule `json:"category_rules,omitempty"` // linked course -> rule
}

// GradeReport is the orchestrator's result for one course.
type GradeReport struct {
	Simple   grading.SimpleResult    `json:"simple"`
	Weighted *grading.WeightedResult `json:"weighted,omitempty"`
	Config   CourseConfig            `json:"config"`
	// Assignments is the post-override, post-normalization list (exclusions
	// still present so the UI can render them struck through).
	Assignments []Assignment `json:"assignments"`
	LinkData    *CourseLink  `json:"link_data,omitempty"`
}
