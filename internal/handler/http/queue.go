package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/utils"
	"github.com/MKhiriev/go-offline-keeper/models"
)

type enqueueResponse struct {
	LocalID string `json:"local_id"`
}

func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.enqueue").Msg("invalid JSON was passed")
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}
	if req.CompanyID == "" {
		req.CompanyID = companyFromRequest(r)
	}
	if err := h.validator.Validate(r.Context(), req); err != nil {
		log.Err(err).Str("func", "*Handler.enqueue").Str("table", req.Table).Msg("invalid mutation")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	localID, err := h.services.Queue.Enqueue(r.Context(), req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.enqueue").Str("table", req.Table).Msg("mutation was not queued")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, enqueueResponse{LocalID: localID}, http.StatusAccepted)
}

func (h *Handler) listQueue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := models.QueueStatus(q.Get("status"))

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.WriteError(w, fmt.Errorf("%w: limit=%q", ErrInvalidQuery, v).Error(), http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.services.Queue.List(r.Context(), status, limit)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.listQueue").Msg("error listing queue")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}
	if entries == nil {
		entries = []models.QueueEntry{}
	}

	utils.WriteJSON(w, entries, http.StatusOK)
}
