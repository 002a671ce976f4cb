package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/utils"
)

func (h *Handler) cleanup(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.services.Housekeeping.Cleanup(r.Context()), http.StatusOK)
}

func (h *Handler) storageUsage(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.services.Housekeeping.EstimateStorageUsage(r.Context()), http.StatusOK)
}

// preload refreshes the reference collections in the background and answers
// immediately.
func (h *Handler) preload(w http.ResponseWriter, r *http.Request) {
	companyID := companyFromRequest(r)
	log := logger.FromRequest(r)
	ctx := log.WithContext(context.WithoutCancel(r.Context()))

	go func() {
		if err := h.services.Query.Preload(ctx, companyID); err != nil {
			log.Warn().Err(err).Str("func", "*Handler.preload").Str("company_id", companyID).Msg("preload incomplete")
			return
		}
		log.Info().Str("func", "*Handler.preload").Str("company_id", companyID).Msg("reference data preloaded")
	}()

	w.WriteHeader(http.StatusAccepted)
}
