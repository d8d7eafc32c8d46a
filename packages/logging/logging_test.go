package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.WarnLevel},
		{"debug", zerolog.DebugLevel},
		{" INFO ", zerolog.InfoLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "info", Console: &buf, NoColor: true})
	require.NoError(t, err)
	defer closeFn()

	logger.Debug().Msg("hidden")
	logger.Info().Str("method", "GET").Msg("sending request")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "sending request")
	assert.Contains(t, out, "method=GET")
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hitcurl.log")
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "debug", File: path, Console: &buf})
	require.NoError(t, err)

	logger.Debug().Int("status", 200).Msg("request finished")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":200`)
	assert.Contains(t, string(data), `"message":"request finished"`)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, closeFn, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
	assert.NoError(t, closeFn())
}
