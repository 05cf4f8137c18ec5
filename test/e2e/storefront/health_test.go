package storefront_test

import (
	"testing"

	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	baseURL := setupContainer(t)
	c := storefrontsdk.NewClient(baseURL)

	live, err := c.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.NotEmpty(t, live.Uptime)

	ready, err := c.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks["database"])
}
