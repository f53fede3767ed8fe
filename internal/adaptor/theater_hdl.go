package adaptor

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cinetix/internal/dto/request"
	"cinetix/internal/usecase"
	"cinetix/pkg/utils"
)

type TheaterHandler struct {
	service usecase.TheaterService
	log     *zap.Logger
}

func NewTheaterHandler(service usecase.TheaterService, log *zap.Logger) *TheaterHandler {
	return &TheaterHandler{
		service: service,
		log:     log,
	}
}

// GetTheaters handles GET /api/theaters
func (h *TheaterHandler) GetTheaters(w http.ResponseWriter, r *http.Request) {
	theaters, err := h.service.GetTheaters(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "get theaters")
		return
	}
	utils.ResponseSuccess(w, "Theaters retrieved", theaters)
}

// GetTheaterByID handles GET /api/theaters/{id}
func (h *TheaterHandler) GetTheaterByID(w http.ResponseWriter, r *http.Request) {
	theater, err := h.service.GetTheaterByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get theater")
		return
	}
	utils.ResponseSuccess(w, "Theater retrieved", theater)
}

// CreateTheater handles POST /api/admin/theaters
func (h *TheaterHandler) CreateTheater(w http.ResponseWriter, r *http.Request) {
	var req request.TheaterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	theater, err := h.service.CreateTheater(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create theater")
		return
	}
	utils.ResponseCreated(w, "Theater created", theater)
}

// UpdateTheater handles PUT /api/admin/theaters/{id}
func (h *TheaterHandler) UpdateTheater(w http.ResponseWriter, r *http.Request) {
	var req request.TheaterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	theater, err := h.service.UpdateTheater(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update theater")
		return
	}
	utils.ResponseSuccess(w, "Theater updated", theater)
}

// DeleteTheater handles DELETE /api/admin/theaters/{id}
func (h *TheaterHandler) DeleteTheater(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTheater(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete theater")
		return
	}
	utils.ResponseSuccess(w, "Theater deleted", nil)
}
