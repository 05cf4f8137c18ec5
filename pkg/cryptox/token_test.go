package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateHexToken(t *testing.T) {
	tok, err := GenerateHexToken(ResetTokenSize)
	require.NoError(t, err)
	require.Len(t, tok, 40)

	_, err = hex.DecodeString(tok)
	require.NoError(t, err)
}

func TestGenerateHexToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := GenerateHexToken(size)
		require.Error(t, err)
	}
}

func TestFingerprintToken(t *testing.T) {
	fp := FingerprintToken("abc")
	require.Len(t, fp, 43)
	require.Equal(t, fp, FingerprintToken("abc"))
	require.NotEqual(t, fp, FingerprintToken("abd"))
}
