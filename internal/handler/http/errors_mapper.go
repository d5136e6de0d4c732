package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-outbox/internal/service"
	"github.com/MKhiriev/go-outbox/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidOperation: http.StatusBadRequest,
	service.ErrEmptyToken:       http.StatusBadRequest,
	service.ErrOffline:          http.StatusServiceUnavailable,
	service.ErrAuthMissing:      http.StatusUnauthorized,

	store.ErrMappingNotFound:   http.StatusNotFound,
	store.ErrOperationNotFound: http.StatusNotFound,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
	store.ErrScanningRows:       http.StatusInternalServerError,
	store.ErrEncodingPayload:    http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
