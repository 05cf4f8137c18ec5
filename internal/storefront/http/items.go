package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
)

type ItemsHandler struct {
	ItemService *service.ItemService
}

// HandleCreate creates an item owned by the caller.
//
//	@Summary	Create item
//	@Tags		Items
//	@Accept		json
//	@Produce	json
//	@Param		request	body		storefrontsdk.ItemRequest	true	"Item (price in cents)"
//	@Success	201		{object}	storefrontsdk.ItemResponse
//	@Failure	400		{object}	storefrontsdk.ErrorResponse
//	@Failure	401		{object}	storefrontsdk.ErrorResponse
//	@Security	SessionCookie
//	@Router		/v1/items [post].
func (h *ItemsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req storefrontsdk.ItemRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	it, err := h.ItemService.CreateItem(r.Context(), httpx.UserIDFromContext(r.Context()), service.ItemInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		LargeImage:  req.LargeImage,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toItemResponse(it))
}

// HandleUpdate applies a partial update.
//
//	@Summary		Update item
//	@Description	Allowed for the owner, ADMIN or ITEMUPDATE.
//	@Tags			Items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Item ID"
//	@Param			request	body		storefrontsdk.ItemUpdateRequest	true	"Fields to change"
//	@Success		200		{object}	storefrontsdk.ItemResponse
//	@Failure		400		{object}	storefrontsdk.ErrorResponse
//	@Failure		401		{object}	storefrontsdk.ErrorResponse
//	@Failure		403		{object}	storefrontsdk.ErrorResponse
//	@Failure		404		{object}	storefrontsdk.ErrorResponse
//	@Security		SessionCookie
//	@Router			/v1/items/{id} [patch].
func (h *ItemsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req storefrontsdk.ItemUpdateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	it, err := h.ItemService.UpdateItem(r.Context(), httpx.UserIDFromContext(r.Context()), r.PathValue("id"), domain.ItemUpdate{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		LargeImage:  req.LargeImage,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toItemResponse(it))
}

// HandleDelete removes an item and returns it.
//
//	@Summary		Delete item
//	@Description	Allowed for the owner, ADMIN or PERMISSIONDELETE.
//	@Tags			Items
//	@Produce		json
//	@Param			id	path		string	true	"Item ID"
//	@Success		200	{object}	storefrontsdk.ItemResponse
//	@Failure		401	{object}	storefrontsdk.ErrorResponse
//	@Failure		403	{object}	storefrontsdk.ErrorResponse
//	@Failure		404	{object}	storefrontsdk.ErrorResponse
//	@Security		SessionCookie
//	@Router			/v1/items/{id} [delete].
func (h *ItemsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	it, err := h.ItemService.DeleteItem(r.Context(), httpx.UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toItemResponse(it))
}

// HandleGet returns a single item.
//
//	@Summary	Get item
//	@Tags		Items
//	@Produce	json
//	@Param		id	path		string	true	"Item ID"
//	@Success	200	{object}	storefrontsdk.ItemResponse
//	@Failure	404	{object}	storefrontsdk.ErrorResponse
//	@Router		/v1/items/{id} [get].
func (h *ItemsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	it, err := h.ItemService.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toItemResponse(it))
}

// HandleList pages through items, newest first.
//
//	@Summary	List items
//	@Tags		Items
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (default 20, max 100)"
//	@Param		offset	query		int	false	"Items to skip"
//	@Success	200		{object}	storefrontsdk.ListItemsResponse
//	@Failure	400		{object}	storefrontsdk.ErrorResponse
//	@Router		/v1/items [get].
func (h *ItemsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeDecodeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeDecodeError(w, err)
		return
	}

	items, limit, offset, err := h.ItemService.ListItems(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := storefrontsdk.ListItemsResponse{
		Items:  make([]storefrontsdk.ItemResponse, len(items)),
		Limit:  limit,
		Offset: offset,
	}
	for i, it := range items {
		resp.Items[i] = toItemResponse(it)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}
