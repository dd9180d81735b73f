package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/grade-lens/gradelens/internal/gradeconfig"
)

// POST /links
func LinkCoursesHandler(svc *gradeconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var link gradeconfig.CourseLink
		if err := json.NewDecoder(r.Body).Decode(&link); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := svc.LinkCourses(r.Context(), link); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, link)
	}
}

// GET /courses/{course}/links
func GetCourseLinksHandler(svc *gradeconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, found, err := svc.GetCourseLinks(r.Context(), courseParam(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		if !found {
			writeJSON(w, http.StatusOK, map[string]bool{"linked": false})
			return
		}
		writeJSON(w, http.StatusOK, link)
	}
}

// DELETE /courses/{course}/links/{linked}
func UnlinkCourseHandler(svc *gradeconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		linked := strings.TrimSpace(chi.URLParam(r, "linked"))
		if linked == "" {
			http.Error(w, "linked course required", http.StatusBadRequest)
			return
		}
		if err := svc.UnlinkCourse(r.Context(), courseParam(r), linked); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DELETE /courses/{course}/links
func DeleteAllLinksHandler(svc *gradeconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteAllCourseLinks(r.Context(), courseParam(r)); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
