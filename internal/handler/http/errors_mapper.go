package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-offline-keeper/internal/service"
	"github.com/MKhiriev/go-offline-keeper/internal/store"
	"github.com/MKhiriev/go-offline-keeper/internal/validators"
)

var errorStatusMap = map[error]int{
	ErrInvalidJSON:  http.StatusBadRequest,
	ErrInvalidQuery: http.StatusBadRequest,

	service.ErrInvalidRequest:   http.StatusBadRequest,
	service.ErrInvalidOperation: http.StatusBadRequest,
	service.ErrMalformedEntry:   http.StatusBadRequest,
	service.ErrOffline:          http.StatusServiceUnavailable,
	service.ErrNoRemote:         http.StatusServiceUnavailable,

	store.ErrStorageUnavailable: http.StatusServiceUnavailable,
	store.ErrDuplicateLocalID:   http.StatusConflict,
	store.ErrEntryNotFound:      http.StatusNotFound,
	store.ErrRecordNotFound:     http.StatusNotFound,
	store.ErrMetadataNotFound:   http.StatusNotFound,

	validators.ErrInvalidTable:     http.StatusBadRequest,
	validators.ErrInvalidOperation: http.StatusBadRequest,
	validators.ErrInvalidLocalID:   http.StatusBadRequest,
	validators.ErrInvalidCompanyID: http.StatusBadRequest,
	validators.ErrInvalidFieldName: http.StatusBadRequest,
	validators.ErrInvalidLimit:     http.StatusBadRequest,
	validators.ErrEmptyRecordID:    http.StatusBadRequest,
	validators.ErrEmptyRecords:     http.StatusBadRequest,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
