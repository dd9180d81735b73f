package gradeconfig_test

import (
	"context"
	"slices"
	"testing"

	"github.com/grade-lens/gradelens/internal/gradeconfig"
)

// Records handed out by the in-memory store must not share maps or slices
// with its internal state: callers edit them freely before saving, and an
// abandoned edit must not show up on the next read.
func TestMemoryStoreIsolatesConfigRecords(t *testing.T) {
	ctx := context.Background()
	store := gradeconfig.NewInMemoryStore()

	cfg := gradeconfig.DefaultConfig()
	cfg.Weights = map[string]float64{"homework": 0.4, "final": 0.6}
	cfg.ExcludedAssignments = map[string]bool{"a1": true}
	if err := store.SaveCourseConfig(ctx, "CS 101", cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the caller's copy after save must not reach the store.
	cfg.Weights["final"] = 0.9
	cfg.ExcludedAssignments["a2"] = true

	got, err := store.GetCourseConfig(ctx, "CS 101")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Weights["final"] != 0.6 || len(got.ExcludedAssignments) != 1 {
		t.Fatalf("stored config shares state with caller: %+v", got)
	}

	// Same the other way: edits to a fetched record stay local.
	got.Weights["homework"] = 0
	delete(got.ExcludedAssignments, "a1")

	again, err := store.GetCourseConfig(ctx, "CS 101")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Weights["homework"] != 0.4 || !again.ExcludedAssignments["a1"] {
		t.Fatalf("fetched record aliases store state: %+v", again)
	}
}

func TestMemoryStoreIsolatesLinkRecords(t *testing.T) {
	ctx := context.Background()
	store := gradeconfig.NewInMemoryStore()

	link := gradeconfig.CourseLink{
		PrimaryCourse: "A",
		LinkedCourses: []string{"B", "C"},
		CategoryRules: map[string]gradeconfig.RemapRule{"B": {"quiz": "homework"}},
	}
	if err := store.SaveCourseLink(ctx, link); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetCourseLink(ctx, "A")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// An in-place compaction of the fetched slice must not corrupt the
	// stored backing array.
	got.LinkedCourses = append(got.LinkedCourses[:0], got.LinkedCourses[1])
	got.CategoryRules["B"]["quiz"] = gradeconfig.RemapDrop

	again, err := store.GetCourseLink(ctx, "A")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if want := []string{"B", "C"}; !slices.Equal(again.LinkedCourses, want) {
		t.Fatalf("stored courses corrupted: got %v, want %v", again.LinkedCourses, want)
	}
	if again.CategoryRules["B"]["quiz"] != "homework" {
		t.Fatalf("stored remap rule mutated: %v", again.CategoryRules)
	}
}
