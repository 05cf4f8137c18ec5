package http

import (
	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
)

func toUserResponse(u domain.User) storefrontsdk.UserResponse {
	perms := u.Permissions.Strings()
	if perms == nil {
		perms = []string{}
	}
	return storefrontsdk.UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Permissions: perms,
		CreatedAt:   u.CreatedAt,
	}
}

func toItemResponse(it domain.Item) storefrontsdk.ItemResponse {
	return storefrontsdk.ItemResponse{
		ID:             it.ID,
		Title:          it.Title,
		Description:    it.Description,
		Price:          it.Price,
		PriceFormatted: storefrontsdk.FormatPrice(it.Price),
		Image:          it.Image,
		LargeImage:     it.LargeImage,
		OwnerID:        it.OwnerID,
		CreatedAt:      it.CreatedAt,
		UpdatedAt:      it.UpdatedAt,
	}
}
