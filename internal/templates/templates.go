// Package templates ships named grade-config presets as YAML documents.
// A template is a starting point: applying one produces a CourseConfig
// stamped with the template name, which the user then edits course by
// course.
package templates

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/grade-lens/gradelens/internal/gradeconfig"
	"github.com/grade-lens/gradelens/internal/grading"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

type Template struct {
	Name        string
	Description string
	System      gradeconfig.GradingSystem
	Weights     map[string]float64
	Groups      map[string]gradeconfig.CategoryGroup
	Drops       map[string]grading.DropRule
}

type rawTemplate struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	System      string              `yaml:"system"`
	Weights     map[string]float64  `yaml:"weights"`
	Groups      map[string]rawGroup `yaml:"category_groups"`
	Drops       map[string]rawDrop  `yaml:"drop_policies"`
}

type rawGroup struct {
	Categories         []string `yaml:"categories"`
	TotalWeight        float64  `yaml:"total_weight"`
	DistributionMethod string   `yaml:"distribution_method"`
}

type rawDrop struct {
	Count int `yaml:"count"`
}

// Parse unmarshals and validates one YAML template. Validation reuses the
// config checks in strict mode: a shipped preset with weights that do not
// sum to 1 is a bug, not a draft.
func Parse(data []byte, source string) (Template, error) {
	var raw rawTemplate
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Template{}, gradeconfig.ValidationErrors{{
			Field:   source,
			Message: fmt.Sprintf("yaml: %v", err),
		}}
	}
	if strings.TrimSpace(raw.Name) == "" {
		return Template{}, gradeconfig.ValidationErrors{{Field: source, Message: "name is required"}}
	}

	t := Template{
		Name:        raw.Name,
		Description: raw.Description,
		System:      gradeconfig.GradingSystem(raw.System),
		Weights:     raw.Weights,
	}
	if t.System == "" {
		t.System = gradeconfig.SystemPercentage
	}
	if len(raw.Groups) > 0 {
		t.Groups = make(map[string]gradeconfig.CategoryGroup, len(raw.Groups))
		for name, g := range raw.Groups {
			method := gradeconfig.DistributionMethod(g.DistributionMethod)
			if method == "" {
				method = gradeconfig.DistributeEqual
			}
			t.Groups[name] = gradeconfig.CategoryGroup{
				Categories:         g.Categories,
				TotalWeight:        g.TotalWeight,
				DistributionMethod: method,
			}
		}
	}
	if len(raw.Drops) > 0 {
		t.Drops = make(map[string]grading.DropRule, len(raw.Drops))
		for cat, d := range raw.Drops {
			t.Drops[cat] = grading.DropRule{Enabled: true, Count: d.Count}
		}
	}

	if err := gradeconfig.ValidateConfig(t.apply(), true); err != nil {
		return Template{}, err
	}
	return t, nil
}

func (t Template) apply() gradeconfig.CourseConfig {
	return gradeconfig.CourseConfig{
		System:         t.System,
		Weights:        t.Weights,
		CategoryGroups: t.Groups,
		DropPolicies:   t.Drops,
		TemplateUsed:   t.Name,
	}
}

// Apply produces a CourseConfig from the template, stamped with its name.
// LastModified is left zero; the service stamps it on save.
func (t Template) Apply() gradeconfig.CourseConfig {
	return t.apply()
}

// Builtin returns the presets compiled into the binary, sorted by name.
func Builtin() ([]Template, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	out := make([]Template, 0, len(entries))
	for _, e := range entries {
		data, err := builtinFS.ReadFile("builtin/" + e.Name())
		if err != nil {
			return nil, err
		}
		t, err := Parse(data, e.Name())
		if err != nil {
			return nil, fmt.Errorf("builtin template %s: %w", e.Name(), err)
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// LoadDir parses every *.yaml template in dir, merged after the builtins by
// callers; a same-named user template wins.
func LoadDir(dir string) ([]Template, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	out := make([]Template, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		t, err := Parse(data, filepath.Base(path))
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Merge overlays user templates onto the builtins by name.
func Merge(builtin, user []Template) []Template {
	byName := map[string]Template{}
	for _, t := range builtin {
		byName[t.Name] = t
	}
	for _, t := range user {
		byName[t.Name] = t
	}
	out := make([]Template, 0, len(byName))
	for _, t := range byName {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
