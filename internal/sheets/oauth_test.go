package sheets

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}

	require.NoError(t, saveToken(path, token))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.True(t, loaded.Valid())

	_, err = LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRefreshTokenIfNeeded_ValidTokenUnchanged(t *testing.T) {
	token := &oauth2.Token{AccessToken: "access", Expiry: time.Now().Add(time.Hour)}

	got, err := RefreshTokenIfNeeded(context.Background(), OAuth2Config{}, token)
	require.NoError(t, err)
	assert.Same(t, token, got)
}

func TestAuthenticateOAuth2Interactive_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var shown string
	config := OAuth2Config{
		ClientID:     "id",
		CallbackAddr: "127.0.0.1:0",
		OpenURL: func(url string) {
			shown = url
			cancel()
		},
	}

	_, err := AuthenticateOAuth2Interactive(ctx, config)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, shown, "access_type=offline")
	assert.Contains(t, shown, "redirect_uri=http%3A%2F%2F127.0.0.1")
}
