package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
)

// BootstrapTokenHeader may carry the bootstrap token instead of the body.
const BootstrapTokenHeader = "X-Bootstrap-Token"

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the storefront
//	@Description	Creates the first ADMIN user. Only available when a bootstrap token is configured and the store has no users.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string							false	"Bootstrap token, if not given in the body"
//	@Param			request				body		storefrontsdk.BootstrapRequest	true	"First administrator"
//	@Success		201					{object}	storefrontsdk.UserResponse
//	@Failure		400					{object}	storefrontsdk.ErrorResponse
//	@Failure		401					{object}	storefrontsdk.ErrorResponse	"Invalid bootstrap token"
//	@Failure		404					{object}	storefrontsdk.ErrorResponse	"Bootstrap not enabled"
//	@Failure		409					{object}	storefrontsdk.ErrorResponse	"Already bootstrapped"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	// 1. Check if enabled
	if h.BootstrapService.Token == "" {
		storefrontsdk.NewAPIError(http.StatusNotFound, storefrontsdk.ErrorCodeNotFound, "Bootstrap endpoint is not enabled").WriteError(w)
		return
	}

	// 2. Parse request body
	var req storefrontsdk.BootstrapRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	token := req.Token
	if token == "" {
		token = r.Header.Get(BootstrapTokenHeader)
	}

	// 3. Perform bootstrap
	l.Info("starting bootstrap")
	admin, err := h.BootstrapService.Bootstrap(r.Context(), token, req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(admin))
}
