package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
)

// AccountsHandler serves signup, signin, signout and the current user.
type AccountsHandler struct {
	AccountService *service.AccountService
	Cookie         httpx.SessionCookie
}

// HandleSignup creates an account and signs it in.
//
//	@Summary		Sign up
//	@Description	Creates a USER account and sets the session cookie.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		storefrontsdk.SignupRequest	true	"New account"
//	@Success		201		{object}	storefrontsdk.UserResponse
//	@Failure		400		{object}	storefrontsdk.ErrorResponse	"Missing fields or email already taken"
//	@Failure		429		{object}	storefrontsdk.ErrorResponse
//	@Failure		500		{object}	storefrontsdk.ErrorResponse
//	@Router			/v1/signup [post].
func (h *AccountsHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req storefrontsdk.SignupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	u, sess, err := h.AccountService.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookie.Set(w, sess.Token, sess.TTL)
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

// HandleSignin checks credentials and sets the session cookie.
//
//	@Summary		Sign in
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		storefrontsdk.SigninRequest	true	"Credentials"
//	@Success		200		{object}	storefrontsdk.UserResponse
//	@Failure		401		{object}	storefrontsdk.ErrorResponse	"Invalid password"
//	@Failure		404		{object}	storefrontsdk.ErrorResponse	"No user with that email"
//	@Failure		429		{object}	storefrontsdk.ErrorResponse
//	@Router			/v1/signin [post].
func (h *AccountsHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var req storefrontsdk.SigninRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	u, sess, err := h.AccountService.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookie.Set(w, sess.Token, sess.TTL)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleSignout clears the session cookie.
//
//	@Summary	Sign out
//	@Tags		Accounts
//	@Produce	json
//	@Success	200	{object}	storefrontsdk.MessageResponse
//	@Router		/v1/signout [post].
func (h *AccountsHandler) HandleSignout(w http.ResponseWriter, r *http.Request) {
	msg := h.AccountService.Signout(r.Context(), httpx.UserIDFromContext(r.Context()))
	h.Cookie.Clear(w)
	httpx.WriteJSON(w, http.StatusOK, storefrontsdk.MessageResponse{Message: msg})
}

// HandleMe returns the signed in user.
//
//	@Summary	Current user
//	@Tags		Accounts
//	@Produce	json
//	@Success	200	{object}	storefrontsdk.UserResponse
//	@Failure	401	{object}	storefrontsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/me [get].
func (h *AccountsHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.AccountService.CurrentUser(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}
