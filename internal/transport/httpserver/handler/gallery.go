package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	eventdomain "github.com/rpypty/galleria/internal/domain/event"
	mediadomain "github.com/rpypty/galleria/internal/domain/media"
)

const (
	thumbnailCacheControl = "public, max-age=3600"
	imageCacheControl     = "public, max-age=86400"

	defaultDownloadName = "image.jpg"
	defaultArchiveName  = "galerie"
)

type galleryResponse struct {
	Code        string          `json:"code"`
	EventType   string          `json:"event_type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Photos      []photoResponse `json:"photos"`
	TotalPhotos int64           `json:"total_photos"`
}

type photoResponse struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	ViewURL      string    `json:"view_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	FileID       string    `json:"file_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (h *Handlers) GetGallery(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	page, err := parseGalleryPage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	gallery, err := h.Events.Gallery(r.Context(), code, page)
	if err != nil {
		switch {
		case errors.Is(err, eventdomain.ErrCodeNotFound):
			h.log.BusinessError("gallery.get: code not found", err, "code", code)
			writeError(w, http.StatusNotFound, "gallery_not_found", "gallery not found")
		case errors.Is(err, eventdomain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			h.log.InternalError("gallery.get: lookup failed", err, "code", code)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toGalleryResponse(gallery))
}

func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, thumbnailCacheControl)
}

func (h *Handlers) GetImage(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, imageCacheControl)
}

func (h *Handlers) serveImage(w http.ResponseWriter, r *http.Request, cacheControl string) {
	fileID := strings.TrimSpace(chi.URLParam(r, "fileID"))
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "file id is required")
		return
	}

	data, err := h.Media.Download(r.Context(), fileID)
	if err != nil {
		h.writeMediaError(w, err, fileID)
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusNotFound, "file_not_found", "file not found")
		return
	}

	writeImage(w, mediadomain.DetectImageType(data), cacheControl, data)
}

func (h *Handlers) DownloadImage(w http.ResponseWriter, r *http.Request) {
	fileID := strings.TrimSpace(chi.URLParam(r, "fileID"))
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "file id is required")
		return
	}

	data, err := h.Media.Download(r.Context(), fileID)
	if err != nil {
		h.writeMediaError(w, err, fileID)
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusNotFound, "file_not_found", "file not found")
		return
	}

	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	if filename == "" {
		filename = defaultDownloadName
	}

	writeAttachment(w, filename, data)
}

func (h *Handlers) DownloadZip(w http.ResponseWriter, r *http.Request) {
	if !h.Media.Available() {
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "storage backend is not configured")
		return
	}

	var fileIDs []string
	if err := decodeJSON(r, &fileIDs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if len(fileIDs) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "file id list is empty")
		return
	}

	data, err := h.Media.BuildZip(r.Context(), fileIDs)
	if err != nil {
		switch {
		case errors.Is(err, mediadomain.ErrNoContent):
			h.log.BusinessError("gallery.zip: nothing to archive", err, "requested", len(fileIDs))
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, mediadomain.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "storage backend is not configured")
		default:
			h.log.InternalError("gallery.zip: archive failed", err, "requested", len(fileIDs))
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	archiveName := strings.TrimSpace(r.URL.Query().Get("galleryName"))
	if archiveName == "" {
		archiveName = defaultArchiveName
	}

	writeAttachment(w, archiveName+".zip", data)
}

func (h *Handlers) writeMediaError(w http.ResponseWriter, err error, fileID string) {
	if errors.Is(err, mediadomain.ErrUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "storage backend is not configured")
		return
	}
	h.log.InternalError("gallery.media: upstream fetch failed", err, "file_id", fileID)
	writeError(w, http.StatusBadGateway, "upstream_error", "could not fetch file from storage")
}

func toGalleryResponse(gallery *eventdomain.Gallery) galleryResponse {
	photos := make([]photoResponse, 0, len(gallery.Photos))
	for _, photo := range gallery.Photos {
		photos = append(photos, photoResponse{
			ID:           photo.ID,
			Filename:     photo.Filename,
			ViewURL:      photo.ViewURL,
			ThumbnailURL: photo.ThumbnailURL,
			FileID:       photo.FileID,
			CreatedAt:    photo.CreatedAt,
		})
	}
	return galleryResponse{
		Code:        gallery.Code,
		EventType:   string(gallery.EventType),
		Name:        gallery.Name,
		Description: gallery.Description,
		Photos:      photos,
		TotalPhotos: gallery.TotalCount,
	}
}
