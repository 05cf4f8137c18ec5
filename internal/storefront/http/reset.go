package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
)

type ResetHandler struct {
	ResetService *service.ResetService
	Sessions     *service.SessionService
	Cookie       httpx.SessionCookie
}

// HandleRequestReset mails a reset link to the account holder.
//
//	@Summary		Request a password reset
//	@Description	Stores a one-hour reset token for the account and emails a link containing it.
//	@Tags			Password reset
//	@Accept			json
//	@Produce		json
//	@Param			request	body		storefrontsdk.RequestResetRequest	true	"Account email"
//	@Success		200		{object}	storefrontsdk.MessageResponse
//	@Failure		404		{object}	storefrontsdk.ErrorResponse	"No user with that email"
//	@Failure		429		{object}	storefrontsdk.ErrorResponse
//	@Router			/v1/request-reset [post].
func (h *ResetHandler) HandleRequestReset(w http.ResponseWriter, r *http.Request) {
	var req storefrontsdk.RequestResetRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	msg, err := h.ResetService.RequestReset(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, storefrontsdk.MessageResponse{Message: msg})
}

// HandleResetPassword redeems a reset token and signs the user in.
//
//	@Summary	Reset password
//	@Tags		Password reset
//	@Accept		json
//	@Produce	json
//	@Param		request	body		storefrontsdk.ResetPasswordRequest	true	"Token and new password"
//	@Success	200		{object}	storefrontsdk.UserResponse
//	@Failure	400		{object}	storefrontsdk.ErrorResponse	"Passwords differ, or the token is invalid or expired"
//	@Failure	429		{object}	storefrontsdk.ErrorResponse
//	@Router		/v1/reset-password [post].
func (h *ResetHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req storefrontsdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	u, err := h.ResetService.ResetPassword(r.Context(), req.ResetToken, req.Password, req.ConfirmPassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// The password is already changed; report success even if minting fails.
	sess, err := h.Sessions.Mint(u, time.Now().UTC())
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to mint session after reset", slog.Any("error", err))
	} else {
		h.Cookie.Set(w, sess.Token, sess.TTL)
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}
