package gradeconfig_test

import (
	"math"
	"testing"

	"github.com/grade-lens/gradelens/internal/gradeconfig"
)

func fp(v float64) *float64 { return &v }

func asn(id, cat string, earned, max float64, graded, submitted bool) gradeconfig.Assignment {
	a := gradeconfig.Assignment{ID: id, Title: id, Category: cat, Graded: graded, Submitted: submitted}
	if graded {
		a.EarnedPoints = fp(earned)
		a.MaxPoints = fp(max)
	}
	return a
}

func sumWeights(m map[string]float64) float64 {
	total := 0.0
	for _, w := range m {
		total += w
	}
	return total
}

func TestRedistributeMovesWeightAndConservesTotal(t *testing.T) {
	policies := []gradeconfig.ClobberPolicy{{
		Name:           "skip-quizzes",
		Type:           gradeconfig.ClobberRedistribute,
		SourceCategory: "quizzes",
		Redistribute: &gradeconfig.RedistributeConfig{
			Condition:        gradeconfig.CondNoSubmissions,
			TargetCategories: []string{"homework", "midterm"},
		},
	}}
	assignments := []gradeconfig.Assignment{
		asn("q1", "quizzes", 0, 0, false, false),
		asn("q2", "quizzes", 0, 0, false, false),
		asn("h1", "homework", 90, 100, true, true),
	}
	weights := map[string]float64{"quizzes": 0.2, "homework": 0.4, "midterm": 0.4}

	out := gradeconfig.ApplyClobberPolicies(policies, assignments, weights)
	if out.Weights["quizzes"] != 0 {
		t.Fatalf("source weight should be zeroed, got %v", out.Weights["quizzes"])
	}
	if math.Abs(out.Weights["homework"]-0.5) > 1e-9 || math.Abs(out.Weights["midterm"]-0.5) > 1e-9 {
		t.Fatalf("targets should each gain 0.1: %v", out.Weights)
	}
	if math.Abs(sumWeights(out.Weights)-1.0) > 1e-9 {
		t.Fatalf("total weight not conserved: %v", sumWeights(out.Weights))
	}
	if len(out.Applied) != 1 || out.Applied[0] != "skip-quizzes" {
		t.Fatalf("applied: %v", out.Applied)
	}
	// Input map untouched.
	if weights["quizzes"] != 0.2 {
		t.Fatalf("input weights mutated: %v", weights)
	}
}

func TestRedistributeConditionNotMet(t *testing.T) {
	policies := []gradeconfig.ClobberPolicy{{
		Name:           "skip-quizzes",
		Type:           gradeconfig.ClobberRedistribute,
		SourceCategory: "quizzes",
		Redistribute: &gradeconfig.RedistributeConfig{
			Condition:        gradeconfig.CondNoSubmissions,
			TargetCategories: []string{"homework"},
		},
	}}
	assignments := []gradeconfig.Assignment{
		asn("q1", "quizzes", 80, 100, true, true), // submitted
	}
	out := gradeconfig.ApplyClobberPolicies(policies, assignments, map[string]float64{"quizzes": 0.2, "homework": 0.8})
	if out.Weights["quizzes"] != 0.2 || len(out.Applied) != 0 {
		t.Fatalf("policy should not fire: %+v", out)
	}
}

func TestZeroWeightSourceIsNoOp(t *testing.T) {
	policies := []gradeconfig.ClobberPolicy{{
		Name:           "noop",
		Type:           gradeconfig.ClobberRedistribute,
		SourceCategory: "lab",
		Redistribute: &gradeconfig.RedistributeConfig{
			Condition:        gradeconfig.CondNoGrades,
			TargetCategories: []string{"homework"},
		},
	}}
	out := gradeconfig.ApplyClobberPolicies(policies, nil, map[string]float64{"homework": 1.0})
	if len(out.Applied) != 0 {
		t.Fatalf("zero-weight source must be a no-op, applied: %v", out.Applied)
	}
	if out.Weights["homework"] != 1.0 {
		t.Fatalf("weights changed: %v", out.Weights)
	}
}

func TestPoliciesApplyInDeclarationOrder(t *testing.T) {
	policies := []gradeconfig.ClobberPolicy{
		{
			Name:           "quiz-to-homework",
			Type:           gradeconfig.ClobberRedistribute,
			SourceCategory: "quizzes",
			Redistribute: &gradeconfig.RedistributeConfig{
				Condition:        gradeconfig.CondNoSubmissions,
				TargetCategories: []string{"homework"},
			},
		},
		{
			Name:           "homework-to-midterm",
			Type:           gradeconfig.ClobberRedistribute,
			SourceCategory: "homework",
			Redistribute: &gradeconfig.RedistributeConfig{
				Condition:        gradeconfig.CondNoSubmissions,
				TargetCategories: []string{"midterm"},
			},
		},
	}
	assignments := []gradeconfig.Assignment{
		asn("q1", "quizzes", 0, 0, false, false),
		asn("h1", "homework", 0, 0, false, false),
	}
	weights := map[string]float64{"quizzes": 0.2, "homework": 0.4, "midterm": 0.4}

	out := gradeconfig.ApplyClobberPolicies(policies, assignments, weights)
	// Second policy sees the first policy's output: homework carries 0.6.
	if math.Abs(out.Weights["midterm"]-1.0) > 1e-9 {
		t.Fatalf("expected midterm to end at 1.0, got %v", out.Weights)
	}
	if out.Weights["quizzes"] != 0 || out.Weights["homework"] != 0 {
		t.Fatalf("sources should be drained: %v", out.Weights)
	}
	if len(out.Applied) != 2 {
		t.Fatalf("both policies should fire: %v", out.Applied)
	}
}

func TestBestOfKeepsTopAssignments(t *testing.T) {
	policies := []gradeconfig.ClobberPolicy{{
		Name:           "best-2-quizzes",
		Type:           gradeconfig.ClobberBestOf,
		SourceCategory: "quizzes",
		BestOf:         &gradeconfig.BestOfConfig{Keep: 2},
	}}
	assignments := []gradeconfig.Assignment{
		asn("q1", "quizzes", 50, 100, true, true),
		asn("q2", "quizzes", 80, 100, true, true),
		asn("q3", "quizzes", 100, 100, true, true),
	}
	weights := map[string]float64{"quizzes": 1.0}

	out := gradeconfig.ApplyClobberPolicies(policies, assignments, weights)
	kept := out.Substitutions["quizzes"]
	if len(kept) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(kept))
	}
	if kept[0].ID != "q2" || kept[1].ID != "q3" {
		t.Fatalf("expected q2,q3 in original order, got %v,%v", kept[0].ID, kept[1].ID)
	}
	// Weight untouched.
	if out.Weights["quizzes"] != 1.0 {
		t.Fatalf("best_of must not change weights: %v", out.Weights)
	}
}

func TestBestOfFewerThanKeep(t *testing.T) {
	policies := []gradeconfig.ClobberPolicy{{
		Name:           "best-5",
		Type:           gradeconfig.ClobberBestOf,
		SourceCategory: "quizzes",
		BestOf:         &gradeconfig.BestOfConfig{Keep: 5},
	}}
	assignments := []gradeconfig.Assignment{
		asn("q1", "quizzes", 50, 100, true, true),
	}
	out := gradeconfig.ApplyClobberPolicies(policies, assignments, map[string]float64{"quizzes": 1.0})
	if _, ok := out.Substitutions["quizzes"]; ok {
		t.Fatalf("nothing to trim; no substitution expected")
	}
	if len(out.Applied) != 0 {
		t.Fatalf("policy should not report as applied: %v", out.Applied)
	}
}

func TestRequireOneRedistributesWithoutSubmissions(t *testing.T) {
	policies := []gradeconfig.ClobberPolicy{{
		Name:           "final-optional",
		Type:           gradeconfig.ClobberRequireOne,
		SourceCategory: "final",
		RequireOne:     &gradeconfig.RequireOneConfig{TargetCategories: []string{"homework", "midterm"}},
	}}
	assignments := []gradeconfig.Assignment{
		asn("f1", "final", 0, 0, false, false),
	}
	weights := map[string]float64{"final": 0.4, "homework": 0.3, "midterm": 0.3}

	out := gradeconfig.ApplyClobberPolicies(policies, assignments, weights)
	if out.Weights["final"] != 0 {
		t.Fatalf("final weight should move: %v", out.Weights)
	}
	if math.Abs(sumWeights(out.Weights)-1.0) > 1e-9 {
		t.Fatalf("total weight not conserved: %v", out.Weights)
	}

	// With one submission the policy must not fire.
	assignments[0].Submitted = true
	out = gradeconfig.ApplyClobberPolicies(policies, assignments, weights)
	if out.Weights["final"] != 0.4 || len(out.Applied) != 0 {
		t.Fatalf("policy fired despite a submission: %+v", out)
	}
}
