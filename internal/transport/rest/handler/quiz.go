package handler

import (
	"aspireedge/internal/model"
	"aspireedge/internal/service"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// InconclusiveMessage is returned when the default flow runs out without
// any category scoring positive
const InconclusiveMessage = "inconclusive"

// QuizHandler handles quiz endpoints
type QuizHandler struct {
	quizSvc *service.QuizService
	logger  *zap.Logger
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizSvc *service.QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		quizSvc: quizSvc,
		logger:  logger,
	}
}

// NextQuestion handles POST /v1/quizzes/next and POST /get_next_question.
// An empty body is valid and selects with all defaults.
func (h *QuizHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	var req model.NextQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	if id := mux.Vars(r)["quizId"]; id != "" {
		req.QuizID = id
	}

	decision, err := h.quizSvc.NextQuestion(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, decisionResponse(decision))
}

func decisionResponse(d *model.Decision) map[string]interface{} {
	if !d.Completed() {
		return map[string]interface{}{
			"status": model.StatusInProgress,
			"item":   d.Question,
		}
	}
	if d.Inconclusive {
		return map[string]interface{}{
			"status":       model.StatusCompleted,
			"message":      InconclusiveMessage,
			"inconclusive": true,
		}
	}
	scores := d.FinalScores
	if scores == nil {
		scores = model.Scores{}
	}
	return map[string]interface{}{
		"status":       model.StatusCompleted,
		"final_scores": scores,
	}
}

// Get handles GET /v1/quizzes/{quizId}
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizId"]

	quiz, err := h.quizSvc.GetQuiz(r.Context(), quizID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

// Upsert handles PUT /v1/quizzes/{quizId}
func (h *QuizHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var quiz model.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	quiz.ID = mux.Vars(r)["quizId"]

	if err := h.quizSvc.UpsertQuiz(r.Context(), &quiz); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}
