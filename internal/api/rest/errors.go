package rest

import (
	stderrors "errors"
	"net/http"

	"github.com/undercity/undercity-engine/internal/domain/errors"
)

// ErrorResponse is the wire shape of a failed request.
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// mapError converts service errors to HTTP status codes and wire
// errors. Unknown errors are masked as internal.
func mapError(err error) (int, *ErrorResponse) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return http.StatusInternalServerError, &ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "internal error",
		}
	}

	status := http.StatusInternalServerError
	switch appErr.Type {
	case errors.ErrorTypeValidation:
		status = http.StatusBadRequest
	case errors.ErrorTypePrecondition:
		status = http.StatusUnprocessableEntity
	case errors.ErrorTypeInsufficientFunds:
		status = http.StatusPaymentRequired
	case errors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case errors.ErrorTypeConflict:
		status = http.StatusConflict
	case errors.ErrorTypeAborted:
		status = http.StatusRequestTimeout
	}
	return status, &ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
}
