package handler

import "net/http"

type healthResponse struct {
	Status  string `json:"status"`
	Storage bool   `json:"storage_configured"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Storage: h.Media.Available(),
	})
}
