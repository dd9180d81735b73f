package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/grade-lens/gradelens/internal/gradeconfig"
	"github.com/grade-lens/gradelens/internal/templates"
)

func courseParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "course"))
}

// GET /courses/{course}/config
func GetCourseConfigHandler(svc *gradeconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		course := courseParam(r)
		if course == "" {
			http.Error(w, "course required", http.StatusBadRequest)
			return
		}
		cfg, err := svc.GetCourseConfig(r.Context(), course)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

// PUT /courses/{course}/config?skip_strict=1
func SaveCourseConfigHandler(svc *gradeconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		course := courseParam(r)
		if course == "" {
			http.Error(w, "course required", http.StatusBadRequest)
			return
		}
		var cfg gradeconfig.CourseConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		skipStrict := r.URL.Query().Get("skip_strict") == "1"
		if err := svc.SaveCourseConfig(r.Context(), course, cfg, skipStrict); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DELETE /courses/{course}/config
func DeleteCourseConfigHandler(svc *gradeconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteCourseConfig(r.Context(), courseParam(r)); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /templates
func ListTemplatesHandler(tmpls []templates.Template) http.HandlerFunc {
	type entry struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]entry, 0, len(tmpls))
		for _, t := range tmpls {
			out = append(out, entry{Name: t.Name, Description: t.Description})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /courses/{course}/config/from-template
func ApplyTemplateHandler(svc *gradeconfig.Service, tmpls []templates.Template) http.HandlerFunc {
	type req struct {
		Name string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		course := courseParam(r)
		var body req
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		for _, t := range tmpls {
			if t.Name == body.Name {
				cfg := t.Apply()
				if err := svc.SaveCourseConfig(r.Context(), course, cfg, false); err != nil {
					writeErr(w, err)
					return
				}
				writeJSON(w, http.StatusOK, cfg)
				return
			}
		}
		http.Error(w, "unknown template: "+body.Name, http.StatusNotFound)
	}
}

// POST /courses/{course}/overrides
func UpdateCategoryOverrideHandler(svc *gradeconfig.Service) http.HandlerFunc {
	type req struct {
		AssignmentID string `json:"assignment_id"`
		Category     string `json:"category"` // empty clears the override
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var body req
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if body.AssignmentID == "" {
			http.Error(w, "assignment_id required", http.StatusBadRequest)
			return
		}
		if err := svc.UpdateCategoryOverride(r.Context(), courseParam(r), body.AssignmentID, body.Category); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /courses/{course}/exclusions/toggle
func ToggleExclusionHandler(svc *gradeconfig.Service) http.HandlerFunc {
	type req struct {
		AssignmentID string `json:"assignment_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var body req
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		excluded, err := svc.ToggleAssignmentExclusion(r.Context(), courseParam(r), body.AssignmentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"excluded": excluded})
	}
}

// POST /courses/{course}/exclusions/bulk
func BulkExcludeHandler(svc *gradeconfig.Service) http.HandlerFunc {
	type req struct {
		Pattern     string                   `json:"pattern"`
		Assignments []gradeconfig.Assignment `json:"assignments"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var body req
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		added, err := svc.BulkExcludeByPattern(r.Context(), courseParam(r), body.Pattern, body.Assignments)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"excluded": added})
	}
}

// DELETE /courses/{course}/exclusions
func ClearExclusionsHandler(svc *gradeconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearAllExclusions(r.Context(), courseParam(r)); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /courses/{course}/setup-seen
func MarkSetupSeenHandler(svc *gradeconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.MarkGradeSetupSeen(r.Context(), courseParam(r)); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
