package http

import (
	"net/http"

	"github.com/MKhiriev/go-offline-keeper/internal/utils"
)

func (h *Handler) processQueue(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.services.Sync.ProcessQueue(r.Context()), http.StatusOK)
}

func (h *Handler) retryFailed(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.services.Sync.RetryFailed(r.Context()), http.StatusOK)
}

func (h *Handler) syncStatus(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.services.Sync.Status(r.Context()), http.StatusOK)
}
