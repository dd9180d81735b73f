package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grade-lens/gradelens/internal/gradeconfig"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the error taxonomy onto status codes: validation failures
// are 422 with per-field messages, missing records 404, anything else is a
// store/internal failure.
func writeErr(w http.ResponseWriter, err error) {
	var verrs gradeconfig.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]map[string]string, 0, len(verrs))
		for _, e := range verrs {
			fields = append(fields, map[string]string{"field": e.Field, "message": e.Message})
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": fields,
		})
		return
	}
	if errors.Is(err, gradeconfig.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
