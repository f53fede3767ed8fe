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

type MovieHandler struct {
	service usecase.MovieService
	log     *zap.Logger
}

func NewMovieHandler(service usecase.MovieService, log *zap.Logger) *MovieHandler {
	return &MovieHandler{
		service: service,
		log:     log,
	}
}

// GetMovies handles GET /api/movies
func (h *MovieHandler) GetMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.service.GetMovies(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "get movies")
		return
	}
	utils.ResponseSuccess(w, "Movies retrieved", movies)
}

// GetMovieByID handles GET /api/movies/{id}
func (h *MovieHandler) GetMovieByID(w http.ResponseWriter, r *http.Request) {
	movie, err := h.service.GetMovieByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get movie")
		return
	}
	utils.ResponseSuccess(w, "Movie retrieved", movie)
}

// CreateMovie handles POST /api/admin/movies
func (h *MovieHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var req request.MovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	movie, err := h.service.CreateMovie(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create movie")
		return
	}
	utils.ResponseCreated(w, "Movie created", movie)
}

// UpdateMovie handles PUT /api/admin/movies/{id}
func (h *MovieHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	var req request.MovieUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	movie, err := h.service.UpdateMovie(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update movie")
		return
	}
	utils.ResponseSuccess(w, "Movie updated", movie)
}

// DeleteMovie handles DELETE /api/admin/movies/{id}
func (h *MovieHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMovie(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete movie")
		return
	}
	utils.ResponseSuccess(w, "Movie deleted", nil)
}
