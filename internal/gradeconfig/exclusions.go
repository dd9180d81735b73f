package gradeconfig

import (
	"fmt"
	"regexp"
)

// ToggleExclusion flips one assignment in or out of the exclusion set and
// reports whether it is excluded afterwards.
func ToggleExclusion(set map[string]bool, assignmentID string) (map[string]bool, bool) {
	if set == nil {
		set = map[string]bool{}
	}
	if set[assignmentID] {
		delete(set, assignmentID)
		return set, false
	}
	set[assignmentID] = true
	return set, true
}

// ExcludeByTitlePattern adds every assignment whose title matches the
// pattern (case-insensitive) to the exclusion set and returns how many were
// newly excluded. An invalid pattern is a validation error.
func ExcludeByTitlePattern(set map[string]bool, pattern string, assignments []Assignment) (map[string]bool, int, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return set, 0, ValidationErrors{{Field: "pattern", Message: fmt.Sprintf("invalid pattern: %v", err)}}
	}
	if set == nil {
		set = map[string]bool{}
	}
	added := 0
	for _, a := range assignments {
		if !re.MatchString(a.Title) {
			continue
		}
		if !set[a.ID] {
			set[a.ID] = true
			added++
		}
	}
	return set, added, nil
}

// FilterExcluded drops excluded assignments before any weight, drop, or
// clobber logic sees them.
func FilterExcluded(assignments []Assignment, set map[string]bool) []Assignment {
	if len(set) == 0 {
		return assignments
	}
	out := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if !set[a.ID] {
			out = append(out, a)
		}
	}
	return out
}
