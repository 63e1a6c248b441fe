package clients_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-client/clients"
	"github.com/stretchr/testify/require"
)

func TestCredential(t *testing.T) {
	public := clients.NewPublic("app")
	require.True(t, public.IsPublic())
	require.NoError(t, public.Validate())

	confidential := clients.NewConfidential("daemon", "s3cret")
	require.False(t, confidential.IsPublic())
	require.Equal(t, clients.ClientTypeConfidential, confidential.Type())

	require.ErrorIs(t, clients.Credential{}.Validate(), clients.ErrMissingClientID)
}
