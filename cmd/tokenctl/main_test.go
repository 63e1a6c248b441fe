package main

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AUTH_CLIENT_ID", "client-1")
	t.Setenv("AUTH_RESOURCE", "https://api.example.com")

	var out bytes.Buffer
	cmd := newRootCmd(config.New())
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--no-banner", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, auth.Version, strings.TrimSpace(out))
}

func TestAuthorizeURLCmd(t *testing.T) {
	out, err := execute(t, "authorize-url",
		"--authority", "https://login.example.com/contoso.com",
		"--user", "user@contoso.com",
		"--extra-query", "domain_hint=contoso.com")
	require.NoError(t, err)

	u, err := url.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, "/contoso.com/oauth2/authorize", u.Path)
	require.Equal(t, "client-1", u.Query().Get("client_id"))
	require.Equal(t, "https://api.example.com", u.Query().Get("resource"))
	require.Equal(t, "user@contoso.com", u.Query().Get("login_hint"))
	require.Equal(t, "contoso.com", u.Query().Get("domain_hint"))
}

func TestAuthorizeURLCmd_DuplicateParameter(t *testing.T) {
	_, err := execute(t, "authorize-url", "--extra-query", "client_id=other")
	require.Error(t, err)
}

func TestRequestFlags_Identifier(t *testing.T) {
	tests := []struct {
		userType string
		want     users.IdentifierType
	}{
		{"hint", users.OptionalDisplayableID},
		{"displayable", users.RequiredDisplayableID},
		{"unique", users.UniqueID},
	}
	for _, tt := range tests {
		t.Run(tt.userType, func(t *testing.T) {
			rf := requestFlags{user: "u1", userType: tt.userType}
			id, err := rf.identifier()
			require.NoError(t, err)
			require.Equal(t, tt.want, id.Type)
		})
	}

	_, err := (&requestFlags{user: "u1", userType: "other"}).identifier()
	require.Error(t, err)

	id, err := (&requestFlags{}).identifier()
	require.NoError(t, err)
	require.True(t, id.IsAnyUser())
}
