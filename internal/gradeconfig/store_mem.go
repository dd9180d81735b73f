package gradeconfig

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
)

type memoryStore struct {
	mu      sync.RWMutex
	configs map[string]CourseConfig
	links   map[string]CourseLink
}

// NewInMemoryStore backs the engine with process-local maps; used by the
// offline CLI and tests. Records are cloned on the way in and out so
// callers never alias store state: an edit-then-failed-save sequence must
// leave the persisted record untouched, same as the SQL store.
func NewInMemoryStore() Store {
	return &memoryStore{
		configs: map[string]CourseConfig{},
		links:   map[string]CourseLink{},
	}
}

func (m *memoryStore) GetCourseConfig(_ context.Context, course string) (CourseConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[course]
	if !ok {
		return CourseConfig{}, ErrNotFound
	}
	return cloneConfig(cfg), nil
}

func (m *memoryStore) SaveCourseConfig(_ context.Context, course string, cfg CourseConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[course] = cloneConfig(cfg)
	return nil
}

func (m *memoryStore) DeleteCourseConfig(_ context.Context, course string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.configs, course)
	return nil
}

func (m *memoryStore) GetCourseLink(_ context.Context, primary string) (CourseLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.links[primary]
	if !ok {
		return CourseLink{}, ErrNotFound
	}
	return cloneLink(l), nil
}

func (m *memoryStore) ListCourseLinks(_ context.Context) ([]CourseLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CourseLink, 0, len(m.links))
	for _, l := range m.links {
		out = append(out, cloneLink(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PrimaryCourse < out[j].PrimaryCourse })
	return out, nil
}

func (m *memoryStore) SaveCourseLink(_ context.Context, link CourseLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[link.PrimaryCourse] = cloneLink(link)
	return nil
}

func (m *memoryStore) DeleteCourseLink(_ context.Context, primary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.links, primary)
	return nil
}

func cloneConfig(cfg CourseConfig) CourseConfig {
	out := cfg
	out.Weights = maps.Clone(cfg.Weights)
	out.DropPolicies = maps.Clone(cfg.DropPolicies)
	out.ManualOverrides = maps.Clone(cfg.ManualOverrides)
	out.ExcludedAssignments = maps.Clone(cfg.ExcludedAssignments)
	if cfg.TotalPoints != nil {
		tp := *cfg.TotalPoints
		out.TotalPoints = &tp
	}
	if cfg.CategoryGroups != nil {
		out.CategoryGroups = make(map[string]CategoryGroup, len(cfg.CategoryGroups))
		for name, g := range cfg.CategoryGroups {
			g.Categories = slices.Clone(g.Categories)
			out.CategoryGroups[name] = g
		}
	}
	if cfg.ClobberPolicies != nil {
		out.ClobberPolicies = make([]ClobberPolicy, len(cfg.ClobberPolicies))
		for i, p := range cfg.ClobberPolicies {
			if p.Redistribute != nil {
				r := *p.Redistribute
				r.TargetCategories = slices.Clone(r.TargetCategories)
				p.Redistribute = &r
			}
			if p.BestOf != nil {
				b := *p.BestOf
				p.BestOf = &b
			}
			if p.RequireOne != nil {
				r := *p.RequireOne
				r.TargetCategories = slices.Clone(r.TargetCategories)
				p.RequireOne = &r
			}
			out.ClobberPolicies[i] = p
		}
	}
	return out
}

func cloneLink(link CourseLink) CourseLink {
	out := link
	out.LinkedCourses = slices.Clone(link.LinkedCourses)
	if link.CategoryRules != nil {
		out.CategoryRules = make(map[string]RemapRule, len(link.CategoryRules))
		for course, rule := range link.CategoryRules {
			out.CategoryRules[course] = maps.Clone(rule)
		}
	}
	return out
}
