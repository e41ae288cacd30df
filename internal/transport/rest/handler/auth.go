package handler

import (
	"aspireedge/internal/model"
	"aspireedge/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// AuthHandler handles question bank administrator login
type AuthHandler struct {
	authSvc *service.AuthService
	logger  *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
		logger:  logger,
	}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "username and password are required")
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.logger.Warn("admin login rejected", zap.String("username", req.Username))
		writeErrorCode(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
		return
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("admin logged in", zap.String("adminId", resp.AdminID))
	writeJSON(w, http.StatusOK, resp)
}
