package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	eventdomain "github.com/rpypty/galleria/internal/domain/event"
)

type createEventRequest struct {
	SourceFolderID string `json:"source_folder_id"`
	EventType      string `json:"event_type"`
	Name           string `json:"name"`
	Description    string `json:"description"`
}

type eventResponse struct {
	ID             string    `json:"id"`
	Code           string    `json:"code"`
	SourceFolderID string    `json:"source_folder_id"`
	EventType      string    `json:"event_type"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}

type eventSummaryResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	EventType   string    `json:"event_type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PhotoCount  int64     `json:"photo_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type syncResponse struct {
	Synced int `json:"synced"`
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	evt, err := h.Events.CreateEvent(r.Context(), eventdomain.CreateEventInput{
		SourceFolderID: req.SourceFolderID,
		EventType:      req.EventType,
		Name:           req.Name,
		Description:    req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, eventdomain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, eventdomain.ErrCodeSpaceExhausted):
			h.log.InternalError("admin.create: code generation exhausted", err)
			writeError(w, http.StatusInternalServerError, "code_space_exhausted", "could not allocate a unique code")
		default:
			h.log.InternalError("admin.create: create event failed", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(evt))
}

func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Events.ListEvents(r.Context())
	if err != nil {
		h.log.InternalError("admin.list: list events failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]eventSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		response = append(response, eventSummaryResponse{
			ID:          summary.ID,
			Code:        summary.Code,
			EventType:   string(summary.EventType),
			Name:        summary.Name,
			Description: summary.Description,
			PhotoCount:  summary.PhotoCount,
			CreatedAt:   summary.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventIDParam(w, r)
	if !ok {
		return
	}

	evt, err := h.Events.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, eventdomain.ErrEventNotFound) {
			h.log.BusinessError("admin.get: event not found", err, "event_id", eventID)
			writeError(w, http.StatusNotFound, "event_not_found", "event not found")
			return
		}
		h.log.InternalError("admin.get: get event failed", err, "event_id", eventID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(evt))
}

func (h *Handlers) SyncEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventIDParam(w, r)
	if !ok {
		return
	}

	count, err := h.Events.Sync(r.Context(), eventID)
	if err != nil {
		switch {
		case errors.Is(err, eventdomain.ErrEventNotFound):
			h.log.BusinessError("admin.sync: event not found", err, "event_id", eventID)
			writeError(w, http.StatusNotFound, "event_not_found", "event not found")
		case errors.Is(err, eventdomain.ErrStorageUnavailable):
			h.log.BusinessError("admin.sync: storage unavailable", err, "event_id", eventID)
			writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "storage backend is not configured")
		default:
			h.log.InternalError("admin.sync: sync failed", err, "event_id", eventID)
			writeError(w, http.StatusBadGateway, "upstream_error", "could not crawl storage folder")
		}
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{Synced: count})
}

func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventIDParam(w, r)
	if !ok {
		return
	}

	if err := h.Events.DeleteEvent(r.Context(), eventID); err != nil {
		if errors.Is(err, eventdomain.ErrEventNotFound) {
			h.log.BusinessError("admin.delete: event not found", err, "event_id", eventID)
			writeError(w, http.StatusNotFound, "event_not_found", "event not found")
			return
		}
		h.log.InternalError("admin.delete: delete event failed", err, "event_id", eventID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) eventIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := strings.TrimSpace(chi.URLParam(r, "id"))
	if _, err := uuid.Parse(eventID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid event id")
		return "", false
	}
	return eventID, true
}

func toEventResponse(evt *eventdomain.Event) eventResponse {
	return eventResponse{
		ID:             evt.ID,
		Code:           evt.Code,
		SourceFolderID: evt.SourceFolderID,
		EventType:      string(evt.EventType),
		Name:           evt.Name,
		Description:    evt.Description,
		CreatedAt:      evt.CreatedAt,
	}
}
