package gradeconfig_test

import (
	"testing"

	"github.com/grade-lens/gradelens/internal/gradeconfig"
)

func TestAggregateUnlinkedIsIdentity(t *testing.T) {
	raw := []gradeconfig.Assignment{
		asn("a1", "homework", 90, 100, true, true),
		asn("a2", "midterm", 0, 0, false, false),
	}
	out := gradeconfig.AggregateAssignments(raw, nil, nil)
	if len(out) != len(raw) {
		t.Fatalf("expected identity, got %d assignments", len(out))
	}
	for i := range raw {
		if out[i].ID != raw[i].ID || out[i].Category != raw[i].Category || out[i].SourceCourse != "" {
			t.Fatalf("assignment %d changed: %+v", i, out[i])
		}
	}
}

func TestAggregateAppliesRemapRules(t *testing.T) {
	link := &gradeconfig.CourseLink{
		PrimaryCourse: "CHEM 101",
		LinkedCourses: []string{"CHEM 101L"},
		CategoryRules: map[string]gradeconfig.RemapRule{
			"CHEM 101L": {
				"labs":     "labwork",
				"syllabus": gradeconfig.RemapDrop,
			},
		},
	}
	primary := []gradeconfig.Assignment{asn("p1", "homework", 90, 100, true, true)}
	linked := map[string][]gradeconfig.Assignment{
		"CHEM 101L": {
			asn("l1", "labs", 50, 50, true, true),
			asn("l2", "syllabus", 10, 10, true, true),
			asn("l3", "reports", 40, 50, true, true),
		},
	}

	out := gradeconfig.AggregateAssignments(primary, linked, link)
	if len(out) != 3 {
		t.Fatalf("expected 3 assignments (syllabus dropped), got %d", len(out))
	}
	byID := map[string]gradeconfig.Assignment{}
	for _, a := range out {
		byID[a.ID] = a
	}
	if byID["l1"].Category != "labwork" {
		t.Fatalf("remap not applied: %+v", byID["l1"])
	}
	if byID["l1"].SourceCourse != "CHEM 101L" || byID["l3"].SourceCourse != "CHEM 101L" {
		t.Fatalf("source course not tagged")
	}
	if byID["l3"].Category != "reports" {
		t.Fatalf("unmapped category should pass through: %+v", byID["l3"])
	}
	if _, ok := byID["l2"]; ok {
		t.Fatalf("dropped assignment leaked into aggregate")
	}
	if byID["p1"].SourceCourse != "" {
		t.Fatalf("primary assignments must not be tagged")
	}
}

func TestRemoveLinkedCourse(t *testing.T) {
	link := gradeconfig.CourseLink{
		PrimaryCourse: "A",
		LinkedCourses: []string{"B", "C"},
		CategoryRules: map[string]gradeconfig.RemapRule{"B": {"x": "y"}},
	}
	if !gradeconfig.RemoveLinkedCourse(&link, "B") {
		t.Fatalf("record should still have members")
	}
	if len(link.LinkedCourses) != 1 || link.LinkedCourses[0] != "C" {
		t.Fatalf("linked courses: %v", link.LinkedCourses)
	}
	if _, ok := link.CategoryRules["B"]; ok {
		t.Fatalf("rules for removed course should be gone")
	}
	if gradeconfig.RemoveLinkedCourse(&link, "C") {
		t.Fatalf("removing the last member should report empty")
	}
}

func TestValidateCourseLinkTopology(t *testing.T) {
	existing := []gradeconfig.CourseLink{
		{PrimaryCourse: "A", LinkedCourses: []string{"B"}},
	}

	cases := []struct {
		name string
		link gradeconfig.CourseLink
	}{
		{"self link", gradeconfig.CourseLink{PrimaryCourse: "X", LinkedCourses: []string{"X"}}},
		{"no members", gradeconfig.CourseLink{PrimaryCourse: "X"}},
		{"duplicate member", gradeconfig.CourseLink{PrimaryCourse: "X", LinkedCourses: []string{"Y", "Y"}}},
		{"member already linked elsewhere", gradeconfig.CourseLink{PrimaryCourse: "X", LinkedCourses: []string{"B"}}},
		{"member is another primary", gradeconfig.CourseLink{PrimaryCourse: "X", LinkedCourses: []string{"A"}}},
		{"primary already a member elsewhere", gradeconfig.CourseLink{PrimaryCourse: "B", LinkedCourses: []string{"Y"}}},
		{"rule for unknown course", gradeconfig.CourseLink{
			PrimaryCourse: "X",
			LinkedCourses: []string{"Y"},
			CategoryRules: map[string]gradeconfig.RemapRule{"Z": {"a": "b"}},
		}},
	}
	for _, tc := range cases {
		if err := gradeconfig.ValidateCourseLink(tc.link, existing); err == nil {
			t.Fatalf("%s: expected rejection", tc.name)
		}
	}

	ok := gradeconfig.CourseLink{PrimaryCourse: "X", LinkedCourses: []string{"Y"}}
	if err := gradeconfig.ValidateCourseLink(ok, existing); err != nil {
		t.Fatalf("valid link rejected: %v", err)
	}
	// Replacing a primary's own record is allowed.
	replace := gradeconfig.CourseLink{PrimaryCourse: "A", LinkedCourses: []string{"C"}}
	if err := gradeconfig.ValidateCourseLink(replace, existing); err != nil {
		t.Fatalf("replacing own record rejected: %v", err)
	}
}
