package gradeconfig

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when a course has no persisted config
// or link record. Callers decide whether that means "use the default".
var ErrNotFound = errors.New("not found")

// Store is the persistence boundary: string-keyed JSON blobs, no logic.
// Any other error a store returns is propagated to the caller unmodified:
// grade computation is idempotent and safe to re-invoke, so there is no
// retry layer here.
type Store interface {
	GetCourseConfig(ctx context.Context, course string) (CourseConfig, error)
	SaveCourseConfig(ctx context.Context, course string, cfg CourseConfig) error
	DeleteCourseConfig(ctx context.Context, course string) error

	GetCourseLink(ctx context.Context, primary string) (CourseLink, error)
	ListCourseLinks(ctx context.Context) ([]CourseLink, error)
	SaveCourseLink(ctx context.Context, link CourseLink) error
	DeleteCourseLink(ctx context.Context, primary string) error
}
