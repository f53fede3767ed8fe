package adaptor

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"cinetix/internal/dto/request"
	"cinetix/internal/usecase"
	"cinetix/pkg/utils"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "register")
		return
	}
	utils.ResponseCreated(w, "Registration successful", resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "login")
		return
	}
	utils.ResponseSuccess(w, "Login successful", resp)
}

// Profile handles GET /api/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	resp, err := h.service.Profile(r.Context(), userID.String())
	if err != nil {
		writeServiceError(w, h.log, err, "profile")
		return
	}
	utils.ResponseSuccess(w, "Profile retrieved", resp)
}
