package storefrontsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/storefront/pkg/httpx"
)

// Error codes returned in the "error" field of failed responses.
const (
	ErrorCodeAuthenticationRequired = "authentication_required"
	ErrorCodeNoSuchUser             = "no_such_user"
	ErrorCodeInvalidPassword        = "invalid_password"
	ErrorCodeInvalidOrExpiredToken  = "invalid_or_expired_token"
	ErrorCodeValidation             = "validation_error"
	ErrorCodeForbidden              = "forbidden"
	ErrorCodeNotFound               = "not_found"
	ErrorCodeConflict               = "conflict"
	ErrorCodeRateLimited            = "rate_limit_exceeded"
	ErrorCodeServerError            = "server_error"
)

// ErrorResponse is the wire shape of every failed request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// APIError is a failed request, usable both server-side to write the response
// and client-side as the returned error.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on Code so callers can use errors.Is against the values below.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes the error as JSON with its status code.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, ErrorResponse{Error: e.Code, ErrorDescription: e.Description})
}

// NewAPIError builds an error with a custom description.
func NewAPIError(status int, code, description string) *APIError {
	return &APIError{StatusCode: status, Code: code, Description: description}
}

var (
	ErrAuthenticationRequired = NewAPIError(http.StatusUnauthorized, ErrorCodeAuthenticationRequired, "You must be signed in to do that")
	ErrNoSuchUser             = NewAPIError(http.StatusNotFound, ErrorCodeNoSuchUser, "There is no user with that email")
	ErrInvalidPassword        = NewAPIError(http.StatusUnauthorized, ErrorCodeInvalidPassword, "Invalid password")
	ErrInvalidOrExpiredToken  = NewAPIError(http.StatusBadRequest, ErrorCodeInvalidOrExpiredToken, "This reset token is either invalid or expired")
	ErrValidation             = NewAPIError(http.StatusBadRequest, ErrorCodeValidation, "The request is invalid")
	ErrForbidden              = NewAPIError(http.StatusForbidden, ErrorCodeForbidden, "You do not have permission to do that")
	ErrNotFound               = NewAPIError(http.StatusNotFound, ErrorCodeNotFound, "Not found")
	ErrConflict               = NewAPIError(http.StatusConflict, ErrorCodeConflict, "Conflict")
	ErrServerError            = NewAPIError(http.StatusInternalServerError, ErrorCodeServerError, "Internal server error")
)

// parseErrorResponse turns a non-2xx response body into an *APIError.
func parseErrorResponse(status int, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return &APIError{StatusCode: status, Code: er.Error, Description: er.ErrorDescription}
	}
	return &APIError{
		StatusCode:  status,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)),
	}
}
