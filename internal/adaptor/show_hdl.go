package adaptor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cinetix/internal/dto/request"
	"cinetix/internal/dto/response"
	"cinetix/internal/realtime"
	"cinetix/internal/usecase"
	"cinetix/pkg/utils"
)

const streamHeartbeat = 15 * time.Second

type ShowHandler struct {
	service usecase.ShowService
	seatMap usecase.SeatMapService
	hub     *realtime.Hub
	log     *zap.Logger
}

func NewShowHandler(service usecase.ShowService, seatMap usecase.SeatMapService, hub *realtime.Hub, log *zap.Logger) *ShowHandler {
	return &ShowHandler{
		service: service,
		seatMap: seatMap,
		hub:     hub,
		log:     log,
	}
}

// GetShows handles GET /api/shows with optional movie_id, theater_id and
// date query filters.
func (h *ShowHandler) GetShows(w http.ResponseWriter, r *http.Request) {
	filter := usecase.ShowFilter{
		MovieID:   r.URL.Query().Get("movie_id"),
		TheaterID: r.URL.Query().Get("theater_id"),
		Date:      r.URL.Query().Get("date"),
	}
	shows, err := h.service.GetShows(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.log, err, "get shows")
		return
	}
	utils.ResponseSuccess(w, "Shows retrieved", shows)
}

// GetShowByID handles GET /api/shows/{id}
func (h *ShowHandler) GetShowByID(w http.ResponseWriter, r *http.Request) {
	show, err := h.service.GetShowByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get show")
		return
	}
	utils.ResponseSuccess(w, "Show retrieved", show)
}

// GetSeatMap handles GET /api/shows/{id}/seats
func (h *ShowHandler) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	seatMap, err := h.seatMap.GetSeatMap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get seat map")
		return
	}
	utils.ResponseSuccess(w, "Seat map retrieved", seatMap)
}

// StreamSeats handles GET /api/shows/{id}/seats/stream, a server-sent
// event stream of seat transitions. The first event is a full snapshot so
// the client starts consistent; every later event is a coalesced delta in
// commit order. Closing the connection only ends the subscription.
func (h *ShowHandler) StreamSeats(w http.ResponseWriter, r *http.Request) {
	showID := chi.URLParam(r, "id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.ResponseInternalError(w, "Streaming not supported")
		return
	}

	id, err := uuid.Parse(showID)
	if err != nil {
		utils.ResponseNotFound(w, "Show not found")
		return
	}
	if _, err := h.service.GetShowByID(r.Context(), showID); err != nil {
		writeServiceError(w, h.log, err, "stream seats")
		return
	}

	// Subscribe before the snapshot read so no transition falls between
	// the two.
	deltas := h.hub.Subscribe(r.Context(), id)

	snapshot, err := h.seatMap.GetSeatMap(r.Context(), showID)
	if err != nil {
		writeServiceError(w, h.log, err, "stream seats")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	h.log.Debug("seat stream opened", zap.String("show_id", showID))
	writeSSE(w, "snapshot", snapshot)
	flusher.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Debug("seat stream closed", zap.String("show_id", showID))
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case delta, open := <-deltas:
			if !open {
				return
			}
			event := response.NewSeatUpdateEvent(showID, delta.SeatNumbers, delta.Status)
			writeSSE(w, event.Type, event)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

// CreateShow handles POST /api/admin/shows
func (h *ShowHandler) CreateShow(w http.ResponseWriter, r *http.Request) {
	var req request.ShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	show, err := h.service.CreateShow(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create show")
		return
	}
	utils.ResponseCreated(w, "Show created", show)
}

// UpdateShow handles PUT /api/admin/shows/{id}
func (h *ShowHandler) UpdateShow(w http.ResponseWriter, r *http.Request) {
	var req request.ShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	show, err := h.service.UpdateShow(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update show")
		return
	}
	utils.ResponseSuccess(w, "Show updated", show)
}

// DeleteShow handles DELETE /api/admin/shows/{id}
func (h *ShowHandler) DeleteShow(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteShow(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "delete show")
		return
	}
	utils.ResponseSuccess(w, "Show deleted", nil)
}
