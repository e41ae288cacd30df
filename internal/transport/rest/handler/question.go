package handler

import (
	"aspireedge/internal/model"
	"aspireedge/internal/service"
	"aspireedge/internal/transport/rest/middleware"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// QuestionHandler handles question bank administration endpoints
type QuestionHandler struct {
	questionSvc *service.QuestionService
	logger      *zap.Logger
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questionSvc *service.QuestionService, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionSvc: questionSvc,
		logger:      logger,
	}
}

// QuestionRequest is the request body for creating or updating a question
type QuestionRequest struct {
	ID           string             `json:"questionId,omitempty"`
	QuestionType model.QuestionType `json:"questionType"`
	Text         string             `json:"questionText"`
	ImageURL     string             `json:"imageUrl,omitempty"`
	Answers      []model.Answer     `json:"answers"`
}

func (req *QuestionRequest) toModel() *model.Question {
	return &model.Question{
		ID:           req.ID,
		QuestionType: req.QuestionType,
		Text:         req.Text,
		ImageURL:     req.ImageURL,
		Answers:      req.Answers,
	}
}

// Create handles POST /v1/questions
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}

	question, err := h.questionSvc.Create(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.logger.Info("question created",
		zap.String("questionId", question.ID),
		zap.String("adminId", middleware.GetAdminID(r.Context())))

	writeJSON(w, http.StatusCreated, question)
}

// Update handles PUT /v1/questions/{questionId}
func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	req.ID = mux.Vars(r)["questionId"]

	question, err := h.questionSvc.Update(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.logger.Info("question updated",
		zap.String("questionId", question.ID),
		zap.String("adminId", middleware.GetAdminID(r.Context())))

	writeJSON(w, http.StatusOK, question)
}

// Get handles GET /v1/questions/{questionId}
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	question, err := h.questionSvc.Get(r.Context(), mux.Vars(r)["questionId"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

// List handles GET /v1/questions
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questionSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// Delete handles DELETE /v1/questions/{questionId}
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	questionID := mux.Vars(r)["questionId"]
	if err := h.questionSvc.Delete(r.Context(), questionID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.logger.Info("question deleted",
		zap.String("questionId", questionID),
		zap.String("adminId", middleware.GetAdminID(r.Context())))

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
