package http

import (
	"encoding/json"
	"net/http"

	"github.com/grade-lens/gradelens/internal/gradeconfig"
	"github.com/grade-lens/gradelens/internal/grading"
)

type calculateReq struct {
	Assignments []gradeconfig.Assignment `json:"assignments"`
	// LinkedAssignments supplies raw assignments per linked course; ignored
	// for unlinked courses.
	LinkedAssignments map[string][]gradeconfig.Assignment `json:"linked_assignments,omitempty"`
}

// POST /courses/{course}/grades
func CalculateGradesHandler(svc *gradeconfig.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		course := courseParam(r)
		if course == "" {
			http.Error(w, "course required", http.StatusBadRequest)
			return
		}
		var body calculateReq
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		report, err := svc.CalculateGrades(r.Context(), course, body.Assignments, body.LinkedAssignments)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// POST /courses/{course}/grades/what-if
func WhatIfHandler(svc *gradeconfig.Service) http.HandlerFunc {
	type req struct {
		calculateReq
		TargetPercentage float64 `json:"target_percentage"`
	}
	type resp struct {
		NeededAverage float64 `json:"needed_average"`
		Achievable    bool    `json:"achievable"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		course := courseParam(r)
		var body req
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		report, err := svc.CalculateGrades(r.Context(), course, body.Assignments, body.LinkedAssignments)
		if err != nil {
			writeErr(w, err)
			return
		}
		if report.Weighted == nil {
			http.Error(w, "course has no weighted configuration", http.StatusUnprocessableEntity)
			return
		}
		needed, ok := grading.ProjectNeededAverage(*report.Weighted, body.TargetPercentage)
		writeJSON(w, http.StatusOK, resp{NeededAverage: needed, Achievable: ok && needed <= 100})
	}
}
