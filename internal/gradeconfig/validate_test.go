package gradeconfig_test

import (
	"strings"
	"testing"

	"github.com/grade-lens/gradelens/internal/gradeconfig"
	"github.com/grade-lens/gradelens/internal/grading"
)

func validConfig() gradeconfig.CourseConfig {
	return gradeconfig.CourseConfig{
		System:  gradeconfig.SystemPercentage,
		Weights: map[string]float64{"homework": 0.3, "midterm": 0.3, "final": 0.4},
	}
}

func TestValidateConfigAcceptsValid(t *testing.T) {
	if err := gradeconfig.ValidateConfig(validConfig(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateConfigWeightSum(t *testing.T) {
	cfg := validConfig()
	cfg.Weights["final"] = 0.3 // sums to 0.9
	if err := gradeconfig.ValidateConfig(cfg, true); err == nil {
		t.Fatalf("strict validation must reject sum 0.9")
	}
	// Relaxed mode tolerates the temporary inconsistency.
	if err := gradeconfig.ValidateConfig(cfg, false); err != nil {
		t.Fatalf("relaxed validation should accept mid-edit config: %v", err)
	}

	// Within tolerance passes strict.
	cfg.Weights["final"] = 0.4005
	if err := gradeconfig.ValidateConfig(cfg, true); err != nil {
		t.Fatalf("sum within ±0.001 should pass: %v", err)
	}
}

func TestValidateConfigWeightRange(t *testing.T) {
	cfg := validConfig()
	cfg.Weights["midterm"] = 1.5
	for _, strict := range []bool{true, false} {
		if err := gradeconfig.ValidateConfig(cfg, strict); err == nil {
			t.Fatalf("weight 1.5 must be rejected (strict=%v)", strict)
		}
	}
}

func TestValidateConfigDropCount(t *testing.T) {
	cfg := validConfig()
	cfg.DropPolicies = map[string]grading.DropRule{"homework": {Enabled: true, Count: 0}}
	if err := gradeconfig.ValidateConfig(cfg, false); err == nil {
		t.Fatalf("enabled drop policy with count 0 must be rejected")
	}
	cfg.DropPolicies["homework"] = grading.DropRule{Enabled: false, Count: 0}
	if err := gradeconfig.ValidateConfig(cfg, true); err != nil {
		t.Fatalf("disabled policy should not be checked: %v", err)
	}
}

func TestValidateConfigClobberShapes(t *testing.T) {
	cfg := validConfig()
	cfg.ClobberPolicies = []gradeconfig.ClobberPolicy{
		{Name: "p", Type: "bogus", SourceCategory: "homework"},
	}
	if err := gradeconfig.ValidateConfig(cfg, true); err == nil {
		t.Fatalf("unknown clobber type must be rejected")
	}

	cfg.ClobberPolicies = []gradeconfig.ClobberPolicy{
		{
			Name:           "p",
			Type:           gradeconfig.ClobberRedistribute,
			SourceCategory: "homework",
			Redistribute:   &gradeconfig.RedistributeConfig{Condition: gradeconfig.CondNoGrades},
		},
	}
	if err := gradeconfig.ValidateConfig(cfg, true); err == nil {
		t.Fatalf("redistribute with no targets must be rejected")
	}

	cfg.ClobberPolicies = []gradeconfig.ClobberPolicy{
		{Name: "dup", Type: gradeconfig.ClobberBestOf, SourceCategory: "homework", BestOf: &gradeconfig.BestOfConfig{Keep: 2}},
		{Name: "dup", Type: gradeconfig.ClobberBestOf, SourceCategory: "midterm", BestOf: &gradeconfig.BestOfConfig{Keep: 2}},
	}
	err := gradeconfig.ValidateConfig(cfg, true)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("duplicate policy names must be rejected, got %v", err)
	}
}

func TestValidateConfigGroupConflicts(t *testing.T) {
	cfg := gradeconfig.CourseConfig{
		System:  gradeconfig.SystemPercentage,
		Weights: map[string]float64{"midterm": 0.5},
		CategoryGroups: map[string]gradeconfig.CategoryGroup{
			"exams": {Categories: []string{"midterm"}, TotalWeight: 0.5, DistributionMethod: gradeconfig.DistributeEqual},
		},
	}
	if err := gradeconfig.ValidateConfig(cfg, false); err == nil {
		t.Fatalf("group/individual weight conflict must be rejected even relaxed")
	}
}

func TestValidateConfigTotalPoints(t *testing.T) {
	bad := -10.0
	cfg := gradeconfig.CourseConfig{System: gradeconfig.SystemPoints, TotalPoints: &bad}
	if err := gradeconfig.ValidateConfig(cfg, true); err == nil {
		t.Fatalf("negative total points must be rejected")
	}
}
