// File path: internal/api/context_handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/common"
	ctxbuilder "github.com/itzdazk/lms-ai-pay-sub000/internal/context"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
)

type contextRequest struct {
	UserID         string `json:"userId"`
	Query          string `json:"query"`
	ConversationID string `json:"conversationId"`
	Mode           string `json:"mode"`
	LessonID       string `json:"lessonId"`
}

func (s *Server) handleBuildContext(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: context decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("userId required"))
		return
	}
	build := ctxbuilder.Request{
		UserID:         strings.TrimSpace(req.UserID),
		Query:          req.Query,
		ConversationID: strings.TrimSpace(req.ConversationID),
		Mode:           ctxbuilder.ParseMode(req.Mode),
		LessonID:       strings.TrimSpace(req.LessonID),
	}
	payload, err := s.builder.BuildContext(r.Context(), build)
	if errors.Is(err, lms.ErrLessonNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}
