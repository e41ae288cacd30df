package handler

import (
	"aspireedge/internal/service"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// writeServiceError maps service errors to HTTP responses. NotFound cases
// keep distinct codes so a missing quiz can be told apart from a quiz that
// references a missing question.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		writeErrorCode(w, http.StatusNotFound, "quiz_not_found", err.Error())
	case errors.Is(err, service.ErrQuestionNotFound):
		writeErrorCode(w, http.StatusNotFound, "question_not_found", err.Error())
	case errors.Is(err, service.ErrDuplicateQuestion):
		writeErrorCode(w, http.StatusConflict, "duplicate_question", err.Error())
	case errors.Is(err, service.ErrInvalidQuestion), errors.Is(err, service.ErrInvalidQuiz):
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		writeErrorCode(w, http.StatusInternalServerError, "internal", "an internal error occurred")
	}
}
