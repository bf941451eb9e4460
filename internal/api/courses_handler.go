// File path: internal/api/courses_handler.go
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/common"
)

func (s *Server) handleCourseSearch(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}
	courses, err := s.builder.SearchCandidateCourses(r.Context(), query, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Debug("api: course search", "query", query, "results", len(courses))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"courses": courses,
	})
}
