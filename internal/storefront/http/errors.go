package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
)

// writeServiceError maps service errors onto the public error vocabulary.
// Anything unrecognised is logged and reported as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		storefrontsdk.NewAPIError(http.StatusBadRequest, storefrontsdk.ErrorCodeValidation, ve.Message).WriteError(w)
	case errors.Is(err, service.ErrAuthenticationRequired):
		storefrontsdk.ErrAuthenticationRequired.WriteError(w)
	case errors.Is(err, service.ErrNoSuchUser):
		storefrontsdk.ErrNoSuchUser.WriteError(w)
	case errors.Is(err, service.ErrInvalidPassword):
		storefrontsdk.ErrInvalidPassword.WriteError(w)
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		storefrontsdk.ErrInvalidOrExpiredToken.WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		storefrontsdk.ErrForbidden.WriteError(w)
	case errors.Is(err, service.ErrNoAccountForEmail):
		storefrontsdk.NewAPIError(http.StatusNotFound, storefrontsdk.ErrorCodeNotFound, "No such user found for email").WriteError(w)
	case errors.Is(err, service.ErrImagesDisabled):
		storefrontsdk.NewAPIError(http.StatusNotFound, storefrontsdk.ErrorCodeNotFound, "Image uploads are not enabled").WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		storefrontsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrAlreadyBootstrapped):
		storefrontsdk.NewAPIError(http.StatusConflict, storefrontsdk.ErrorCodeConflict, "System has already been bootstrapped").WriteError(w)
	case errors.Is(err, service.ErrBootstrapUnauthorized):
		storefrontsdk.NewAPIError(http.StatusUnauthorized, storefrontsdk.ErrorCodeAuthenticationRequired, "Invalid bootstrap token").WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		storefrontsdk.ErrServerError.WriteError(w)
	}
}

// writeDecodeError reports a body that could not be decoded.
func writeDecodeError(w http.ResponseWriter, err error) {
	storefrontsdk.NewAPIError(http.StatusBadRequest, storefrontsdk.ErrorCodeValidation, err.Error()).WriteError(w)
}
