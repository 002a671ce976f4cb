package http

import (
	"net/http"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/service"
	"github.com/MKhiriev/go-offline-keeper/internal/validators"
)

type Handler struct {
	services *service.ClientServices

	// metrics serves GET /metrics when set.
	metrics http.Handler

	// defaultCompanyID scopes requests that carry no company of their own.
	defaultCompanyID string

	validator validators.Validator

	logger *logger.Logger
}

func NewHandler(services *service.ClientServices, metrics http.Handler, defaultCompanyID string, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:         services,
		metrics:          metrics,
		defaultCompanyID: defaultCompanyID,
		validator:        validators.NewRequestValidator(),
		logger:           logger,
	}
}
