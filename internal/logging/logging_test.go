package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-auth-client/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	logger, closer, err := logging.Setup(logging.Options{Level: "warn", Format: logging.FormatJSON, Out: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Info().Msg("hidden")
	logger.Warn().Str("correlation_id", "c-1").Msg("shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"correlation_id":"c-1"`)
	require.Contains(t, buf.String(), `"message":"shown"`)
}

func TestSetup_File(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	path := filepath.Join(t.TempDir(), "tokenctl.log")
	var buf bytes.Buffer
	logger, closer, err := logging.Setup(logging.Options{Level: "debug", Format: logging.FormatJSON, File: path, Out: &buf})
	require.NoError(t, err)

	logger.Debug().Msg("to both")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "to both")
	require.Contains(t, buf.String(), "to both")
}

func TestSetup_Invalid(t *testing.T) {
	_, _, err := logging.Setup(logging.Options{Level: "loud"})
	require.Error(t, err)

	_, _, err = logging.Setup(logging.Options{Format: "xml"})
	require.Error(t, err)
}
