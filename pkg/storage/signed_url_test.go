package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, expiresAt, err := signer.Generate("article-1", "artifacts/article-1/manuscript.xml")
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	id, path, parsedExp, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "article-1", id)
	require.Equal(t, "artifacts/article-1/manuscript.xml", path)
	require.WithinDuration(t, expiresAt, parsedExp, time.Second)
}

func TestSignedURLTamperedSignature(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("fig-9", "figures/fig-9.png")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	require.Error(t, err)
}

func TestSignedURLExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Nanosecond)
	token, _, err := signer.Generate("fig-1", "figures/fig-1.png")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	_, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "figures/fig-1.png", path)
}

func TestSignedURLRequiresInputs(t *testing.T) {
	signer := NewSignedURLSigner("", time.Hour)
	_, _, err := signer.Generate("", "path")
	require.Error(t, err)
}
