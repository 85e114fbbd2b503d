package response

import (
	"encoding/json"
	"net/http"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
)

type Response struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Handler is a custom type for http handlers that can return errors
type Handler func(w http.ResponseWriter, r *http.Request) error

// Middleware converts our custom handler to standard http.HandlerFunc
func Middleware(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err != nil {
			WriteError(w, err)
			return
		}
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// StatusCode maps an error to the HTTP status it is reported with
func StatusCode(err error) int {
	switch errors.TypeOf(err) {
	case errors.ValidationError:
		return http.StatusBadRequest
	case errors.DomainConfigError:
		return http.StatusUnprocessableEntity
	case errors.NotFoundError:
		return http.StatusNotFound
	case errors.ConflictError:
		return http.StatusConflict
	case errors.RuntimeError:
		return http.StatusBadGateway
	case errors.TimeoutError:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes an error response
func WriteError(w http.ResponseWriter, err error) {
	var response Response

	if appErr, ok := errors.AsAppError(err); ok {
		response = Response{
			Success: false,
			Error: &ErrorResponse{
				Type:    string(appErr.Type),
				Message: appErr.Message,
				Details: appErr.Details,
			},
		}
	} else {
		response = Response{
			Success: false,
			Error: &ErrorResponse{
				Type:    string(errors.InternalError),
				Message: "An unexpected error occurred",
			},
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(err))
	json.NewEncoder(w).Encode(response)
}
