package gradeconfig

// AggregateAssignments unions a primary course's own assignments with each
// linked course's, applying that link's remap rules. With no link the input
// is returned unchanged. Linked assignments are tagged with their source
// course; a rule mapping a category to RemapDrop excludes the assignment
// from the aggregate entirely. Categories without a rule pass through.
func AggregateAssignments(primary []Assignment, linked map[string][]Assignment, link *CourseLink) []Assignment {
	if link == nil || len(link.LinkedCourses) == 0 {
		return primary
	}
	out := make([]Assignment, 0, len(primary))
	out = append(out, primary...)
	for _, course := range link.LinkedCourses {
		rule := link.CategoryRules[course]
		for _, a := range linked[course] {
			if dest, ok := rule[a.Category]; ok {
				if dest == RemapDrop {
					continue
				}
				a.Category = dest
			}
			a.SourceCourse = course
			out = append(out, a)
		}
	}
	return out
}

// RemoveLinkedCourse drops one course from a link record. Reports whether
// the record still has members; an empty record should be deleted, moving
// the primary back to the unlinked state.
func RemoveLinkedCourse(link *CourseLink, course string) bool {
	// Build a fresh slice rather than compacting in place: the input may
	// share its backing array with a record held elsewhere.
	kept := make([]string, 0, len(link.LinkedCourses))
	for _, c := range link.LinkedCourses {
		if c != course {
			kept = append(kept, c)
		}
	}
	link.LinkedCourses = kept
	delete(link.CategoryRules, course)
	return len(link.LinkedCourses) > 0
}
