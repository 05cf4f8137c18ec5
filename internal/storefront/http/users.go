package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
)

type UsersHandler struct {
	PermissionService *service.PermissionService
}

// HandleList lists users for the permissions page.
//
//	@Summary		List users
//	@Description	Requires ADMIN or PERMISSIONUPDATE.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	storefrontsdk.ListUsersResponse
//	@Failure		401	{object}	storefrontsdk.ErrorResponse
//	@Failure		403	{object}	storefrontsdk.ErrorResponse
//	@Security		SessionCookie
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.PermissionService.ListUsers(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := storefrontsdk.ListUsersResponse{Users: make([]storefrontsdk.UserResponse, len(users))}
	for i, u := range users {
		resp.Users[i] = toUserResponse(u)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleUpdatePermissions replaces a user's permission set.
//
//	@Summary		Update permissions
//	@Description	Requires ADMIN or PERMISSIONUPDATE. Unknown permissions are rejected and duplicates collapse.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"User ID"
//	@Param			request	body		storefrontsdk.UpdatePermissionsRequest	true	"New permission set"
//	@Success		200		{object}	storefrontsdk.UserResponse
//	@Failure		400		{object}	storefrontsdk.ErrorResponse
//	@Failure		401		{object}	storefrontsdk.ErrorResponse
//	@Failure		403		{object}	storefrontsdk.ErrorResponse
//	@Failure		404		{object}	storefrontsdk.ErrorResponse
//	@Security		SessionCookie
//	@Router			/v1/users/{id}/permissions [put].
func (h *UsersHandler) HandleUpdatePermissions(w http.ResponseWriter, r *http.Request) {
	var req storefrontsdk.UpdatePermissionsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	u, err := h.PermissionService.UpdatePermissions(
		r.Context(),
		httpx.UserIDFromContext(r.Context()),
		r.PathValue("id"),
		req.Permissions,
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}
