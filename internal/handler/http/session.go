package http

import (
	"net/http"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/utils"
)

type sessionResponse struct {
	UserID string `json:"user_id"`
}

// setSession takes the access token of the browser client from its
// Authorization header and hands it to the remote store.
func (h *Handler) setSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	token, err := utils.ParseBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.setSession").Msg("missing bearer token")
		utils.WriteError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err = h.services.Session.SetToken(r.Context(), token); err != nil {
		log.Err(err).Str("func", "*Handler.setSession").Msg("token was not applied")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, sessionResponse{UserID: h.services.Session.UserID()}, http.StatusOK)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, sessionResponse{UserID: h.services.Session.UserID()}, http.StatusOK)
}
