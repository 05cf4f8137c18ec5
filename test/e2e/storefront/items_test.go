package storefront_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
	"github.com/stretchr/testify/require"
)

func TestItems(t *testing.T) {
	baseURL := setupContainer(t, relaxedLimits)
	admin := bootstrapAdmin(t, baseURL)
	owner, _ := signup(t, baseURL, "Owner", "owner@example.com")
	other, otherUser := signup(t, baseURL, "Other", "other@example.com")

	item, err := owner.CreateItem(t.Context(), storefrontsdk.ItemRequest{
		Title:       "Wool Socks",
		Description: "Warm and itchy",
		Price:       1250,
	})
	require.NoError(t, err)
	require.Equal(t, "12.50", item.PriceFormatted)

	t.Run("anonymous reads", func(t *testing.T) {
		anon := storefrontsdk.NewClient(baseURL)

		got, err := anon.GetItem(t.Context(), item.ID)
		require.NoError(t, err)
		require.Equal(t, item.Title, got.Title)

		list, err := anon.ListItems(t.Context(), 10, 0)
		require.NoError(t, err)
		require.Len(t, list.Items, 1)

		_, err = anon.CreateItem(t.Context(), storefrontsdk.ItemRequest{Title: "x", Description: "y"})
		assertStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("non owner is forbidden", func(t *testing.T) {
		title := "Stolen Socks"
		_, err := other.UpdateItem(t.Context(), item.ID, storefrontsdk.ItemUpdateRequest{Title: &title})
		assertStatus(t, err, http.StatusForbidden)

		_, err = other.DeleteItem(t.Context(), item.ID)
		assertStatus(t, err, http.StatusForbidden)
	})

	t.Run("granted permission allows update", func(t *testing.T) {
		_, err := other.UpdatePermissions(t.Context(), otherUser.ID, []string{"USER", "ITEMUPDATE"})
		assertStatus(t, err, http.StatusForbidden)

		updated, err := admin.UpdatePermissions(t.Context(), otherUser.ID, []string{"USER", "ITEMUPDATE"})
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"USER", "ITEMUPDATE"}, updated.Permissions)

		title := "Softer Socks"
		got, err := other.UpdateItem(t.Context(), item.ID, storefrontsdk.ItemUpdateRequest{Title: &title})
		require.NoError(t, err)
		require.Equal(t, title, got.Title)
	})

	t.Run("owner deletes", func(t *testing.T) {
		deleted, err := owner.DeleteItem(t.Context(), item.ID)
		require.NoError(t, err)
		require.Equal(t, item.ID, deleted.ID)

		_, err = owner.GetItem(t.Context(), item.ID)
		assertStatus(t, err, http.StatusNotFound)
	})

	t.Run("images disabled without bucket", func(t *testing.T) {
		_, err := owner.RequestImageUpload(t.Context(), storefrontsdk.ImageUploadRequest{
			Filename: "socks.png", ContentType: "image/png",
		})
		assertStatus(t, err, http.StatusNotFound)
	})
}
