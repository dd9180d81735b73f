package gradeconfig

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/grade-lens/gradelens/internal/grading"
)

// Service sequences the managers into the public operation surface. It is
// stateless between calls; the store is the only shared state, and two
// concurrent calls for the same course race only on their store read
// (last writer wins, no merge).
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// NewServiceAt pins the clock; tests use it for past-due normalization.
func NewServiceAt(store Store, now func() time.Time) *Service {
	return &Service{store: store, now: now}
}

// GetCourseConfig returns the saved config, or the documented default when
// none exists yet. Store failures propagate unmodified.
func (s *Service) GetCourseConfig(ctx context.Context, course string) (CourseConfig, error) {
	cfg, err := s.store.GetCourseConfig(ctx, course)
	if errors.Is(err, ErrNotFound) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return CourseConfig{}, err
	}
	return cfg, nil
}

// SaveCourseConfig validates and persists, stamping LastModified.
// skipStrictValidation relaxes only the weights-sum-to-1 check for
// incremental mid-session edits; structural checks always apply.
func (s *Service) SaveCourseConfig(ctx context.Context, course string, cfg CourseConfig, skipStrictValidation bool) error {
	if err := ValidateConfig(cfg, !skipStrictValidation); err != nil {
		return err
	}
	cfg.LastModified = s.now()
	return s.store.SaveCourseConfig(ctx, course, cfg)
}

// DeleteCourseConfig reverts a course to the default config. Deleting a
// course that was never configured is not an error.
func (s *Service) DeleteCourseConfig(ctx context.Context, course string) error {
	return s.store.DeleteCourseConfig(ctx, course)
}

// UpdateCategoryOverride pins an assignment to a category. An empty
// category clears the override.
func (s *Service) UpdateCategoryOverride(ctx context.Context, course, assignmentID, category string) error {
	cfg, err := s.GetCourseConfig(ctx, course)
	if err != nil {
		return err
	}
	if category == "" {
		delete(cfg.ManualOverrides, assignmentID)
	} else {
		if cfg.ManualOverrides == nil {
			cfg.ManualOverrides = map[string]string{}
		}
		cfg.ManualOverrides[assignmentID] = category
	}
	return s.SaveCourseConfig(ctx, course, cfg, true)
}

// ToggleAssignmentExclusion reports whether the assignment is excluded
// after the toggle.
func (s *Service) ToggleAssignmentExclusion(ctx context.Context, course, assignmentID string) (bool, error) {
	cfg, err := s.GetCourseConfig(ctx, course)
	if err != nil {
		return false, err
	}
	set, excluded := ToggleExclusion(cfg.ExcludedAssignments, assignmentID)
	cfg.ExcludedAssignments = set
	if err := s.SaveCourseConfig(ctx, course, cfg, true); err != nil {
		return false, err
	}
	return excluded, nil
}

// BulkExcludeByPattern excludes every assignment whose title matches the
// case-insensitive pattern, returning how many were newly excluded.
func (s *Service) BulkExcludeByPattern(ctx context.Context, course, pattern string, assignments []Assignment) (int, error) {
	cfg, err := s.GetCourseConfig(ctx, course)
	if err != nil {
		return 0, err
	}
	set, added, err := ExcludeByTitlePattern(cfg.ExcludedAssignments, pattern, assignments)
	if err != nil {
		return 0, err
	}
	cfg.ExcludedAssignments = set
	if err := s.SaveCourseConfig(ctx, course, cfg, true); err != nil {
		return 0, err
	}
	return added, nil
}

func (s *Service) ClearAllExclusions(ctx context.Context, course string) error {
	cfg, err := s.GetCourseConfig(ctx, course)
	if err != nil {
		return err
	}
	cfg.ExcludedAssignments = nil
	return s.SaveCourseConfig(ctx, course, cfg, true)
}

// MarkGradeSetupSeen records the one-time onboarding dismissal. Never
// consulted by grade math.
func (s *Service) MarkGradeSetupSeen(ctx context.Context, course string) error {
	cfg, err := s.GetCourseConfig(ctx, course)
	if err != nil {
		return err
	}
	if cfg.HasSeenGradeSetup {
		return nil
	}
	cfg.HasSeenGradeSetup = true
	return s.SaveCourseConfig(ctx, course, cfg, true)
}

// LinkCourses validates topology against every existing link record before
// persisting. Replacing a primary's own record is allowed.
func (s *Service) LinkCourses(ctx context.Context, link CourseLink) error {
	existing, err := s.store.ListCourseLinks(ctx)
	if err != nil {
		return err
	}
	if err := ValidateCourseLink(link, existing); err != nil {
		return err
	}
	return s.store.SaveCourseLink(ctx, link)
}

// UnlinkCourse removes one linked course; removing the last one deletes the
// record and returns the primary to the unlinked state.
func (s *Service) UnlinkCourse(ctx context.Context, primary, linked string) error {
	link, err := s.store.GetCourseLink(ctx, primary)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("course %q has no links", primary)
	}
	if err != nil {
		return err
	}
	if RemoveLinkedCourse(&link, linked) {
		return s.store.SaveCourseLink(ctx, link)
	}
	return s.store.DeleteCourseLink(ctx, primary)
}

func (s *Service) DeleteAllCourseLinks(ctx context.Context, primary string) error {
	return s.store.DeleteCourseLink(ctx, primary)
}

// GetCourseLinks returns the link record for a primary course; found is
// false for an unlinked course.
func (s *Service) GetCourseLinks(ctx context.Context, primary string) (CourseLink, bool, error) {
	link, err := s.store.GetCourseLink(ctx, primary)
	if errors.Is(err, ErrNotFound) {
		return CourseLink{}, false, nil
	}
	if err != nil {
		return CourseLink{}, false, err
	}
	return link, true, nil
}

// CalculateGrades runs the full pipeline for one course:
//
//  1. aggregate linked courses (when a link record exists)
//  2. apply manual category overrides
//  3. normalize past-due unsubmitted work to zero earned points
//  4. filter excluded assignments
//  5. resolve weights: groups first, then clobber policies
//  6. compute simple and (when weights exist) weighted grades
//
// linked supplies raw assignments for linked courses by course name; it is
// ignored for unlinked courses.
func (s *Service) CalculateGrades(ctx context.Context, course string, raw []Assignment, linked map[string][]Assignment) (*GradeReport, error) {
	cfg, err := s.GetCourseConfig(ctx, course)
	if err != nil {
		return nil, err
	}

	var linkData *CourseLink
	assignments := raw
	if link, found, err := s.GetCourseLinks(ctx, course); err != nil {
		return nil, err
	} else if found {
		linkData = &link
		assignments = AggregateAssignments(raw, linked, &link)
	}

	assignments = s.normalize(assignments, cfg)
	included := FilterExcluded(assignments, cfg.ExcludedAssignments)

	report := &GradeReport{
		Simple:      grading.SimpleGrades(toViews(included)),
		Config:      cfg,
		Assignments: assignments,
		LinkData:    linkData,
	}
	if !cfg.HasWeights() {
		return report, nil
	}

	merged, err := MergeCategoryWeights(cfg.Weights, cfg.CategoryGroups, included)
	if err != nil {
		return nil, err
	}
	outcome := ApplyClobberPolicies(cfg.ClobberPolicies, included, merged)

	weighted := grading.WeightedGrades(toViews(substitute(included, outcome.Substitutions)), outcome.Weights, cfg.DropPolicies)
	weighted.AppliedClobberPolicies = outcome.Applied
	report.Weighted = &weighted
	return report, nil
}

// normalize copies the input list, defaults missing IDs, applies manual
// overrides (forcing confidence to 1.0), and zeroes past-due unsubmitted
// assignments. When such an assignment has no max points the arithmetic
// mean of the category's graded max points stands in, flagged as an
// estimate; with no graded neighbors either, it stays ungraded and out of
// every denominator.
func (s *Service) normalize(in []Assignment, cfg CourseConfig) []Assignment {
	now := s.now()
	out := make([]Assignment, len(in))
	copy(out, in)

	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
		if cat, ok := cfg.ManualOverrides[out[i].ID]; ok {
			out[i].Category = cat
			out[i].CategoryConfidence = 1.0
		}
	}

	// Category means come from the post-override categories.
	meanMax := categoryMeanMax(out)
	for i := range out {
		a := &out[i]
		if a.Graded || a.Submitted || a.DueDate == nil || !a.DueDate.Before(now) {
			continue
		}
		zero := 0.0
		switch {
		case a.MaxPoints != nil && *a.MaxPoints > 0:
			a.EarnedPoints = &zero
			a.Graded = true
		default:
			mean, ok := meanMax[a.Category]
			if !ok {
				continue
			}
			m := mean
			a.MaxPoints = &m
			a.EarnedPoints = &zero
			a.Graded = true
			a.PointsEstimated = true
		}
	}
	return out
}

func categoryMeanMax(assignments []Assignment) map[string]float64 {
	sum := map[string]float64{}
	n := map[string]int{}
	for _, a := range assignments {
		if a.Graded && a.MaxPoints != nil && *a.MaxPoints > 0 {
			sum[a.Category] += *a.MaxPoints
			n[a.Category]++
		}
	}
	out := make(map[string]float64, len(sum))
	for cat, total := range sum {
		out[cat] = total / float64(n[cat])
	}
	return out
}

// substitute swaps in per-category replacement sets (best_of) for the
// weighted calculation only.
func substitute(assignments []Assignment, subs map[string][]Assignment) []Assignment {
	if len(subs) == 0 {
		return assignments
	}
	out := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if _, ok := subs[a.Category]; !ok {
			out = append(out, a)
		}
	}
	for _, members := range subs {
		out = append(out, members...)
	}
	return out
}

func toViews(assignments []Assignment) []grading.Assignment {
	out := make([]grading.Assignment, 0, len(assignments))
	for _, a := range assignments {
		v := grading.Assignment{
			ID:        a.ID,
			Category:  a.Category,
			Graded:    a.Graded,
			Submitted: a.Submitted,
			Estimated: a.PointsEstimated,
		}
		if a.Graded && a.EarnedPoints != nil && a.MaxPoints != nil && *a.MaxPoints > 0 {
			v.Earned = *a.EarnedPoints
			v.Max = *a.MaxPoints
		} else {
			v.Graded = false
		}
		out = append(out, v)
	}
	return out
}
