package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
)

type ImagesHandler struct {
	ImageService *service.ImageService
}

// ServeHTTP presigns an image upload.
//
//	@Summary		Request an image upload URL
//	@Description	Returns a presigned S3 PUT URL. Upload the file there, then store image and largeImage on the item.
//	@Tags			Items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		storefrontsdk.ImageUploadRequest	true	"File details"
//	@Success		200		{object}	storefrontsdk.ImageUploadResponse
//	@Failure		400		{object}	storefrontsdk.ErrorResponse	"Not an image"
//	@Failure		401		{object}	storefrontsdk.ErrorResponse
//	@Failure		404		{object}	storefrontsdk.ErrorResponse	"Uploads not configured"
//	@Security		SessionCookie
//	@Router			/v1/items/images [post].
func (h *ImagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req storefrontsdk.ImageUploadRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	up, err := h.ImageService.PresignUpload(r.Context(), httpx.UserIDFromContext(r.Context()), req.Filename, req.ContentType)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	headers := make(map[string]string, len(up.Headers))
	for k := range up.Headers {
		headers[k] = up.Headers.Get(k)
	}
	httpx.WriteJSON(w, http.StatusOK, storefrontsdk.ImageUploadResponse{
		UploadURL:  up.URL,
		Method:     up.Method,
		Headers:    headers,
		Key:        up.Key,
		Image:      up.Image,
		LargeImage: up.LargeImage,
		ExpiresAt:  up.ExpiresAt,
	})
}
