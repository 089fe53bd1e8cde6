package oauthmodel_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-relay/oauthmodel"
	"github.com/stretchr/testify/require"
)

func TestPrompt_Param(t *testing.T) {
	tests := []struct {
		prompt   oauthmodel.Prompt
		want     string
		included bool
	}{
		{"", "", false},
		{"none", "", false},
		{" none ", "", false},
		{"login", "login", true},
		{"consent", "consent", true},
		{"select_account", "select_account", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.prompt), func(t *testing.T) {
			got, ok := tt.prompt.Param()
			require.Equal(t, tt.included, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEndpointsForIssuer(t *testing.T) {
	e := oauthmodel.EndpointsForIssuer("https://id.example.com/")

	require.Equal(t, "https://id.example.com", e.Issuer)
	require.Equal(t, "https://id.example.com/auth", e.Authorization)
	require.Equal(t, "https://id.example.com/token", e.Token)
	require.Equal(t, "https://id.example.com/me", e.UserInfo)
	require.Equal(t, "https://id.example.com/jwks", e.JWKS)
	require.Equal(t, "https://id.example.com/session/end", e.EndSession)
	require.Equal(t, "https://id.example.com/request", e.PushedAuthorizationRequest)
}
