package transport

import (
	"net/http"

	"github.com/sellerdesk/sellerdesk/pkg/api"
)

// HTTPStatusFromError maps an api.Error type to the corresponding HTTP
// status code for the HTTP adapter.
func HTTPStatusFromError(err *api.Error) int {
	switch err.Type {
	case api.ErrorTypeValidation:
		return http.StatusBadRequest
	case api.ErrorTypeNotFound:
		return http.StatusNotFound
	case api.ErrorTypeAuthExhausted:
		return http.StatusBadGateway
	case api.ErrorTypeUpstream, api.ErrorTypeMalformedResponse:
		return http.StatusBadGateway
	case api.ErrorTypePersistence:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
