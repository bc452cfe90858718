package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"off":     zerolog.Disabled,
		"loud":    zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
	assert.False(t, ValidLevel("loud"))
	assert.True(t, ValidLevel("trace"))
	assert.True(t, ValidFormat("Console"))
	assert.False(t, ValidFormat("xml"))
}

func TestInitJSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	logger := Init(Config{Format: "json", Level: "debug", Component: "test", Output: &buf})
	logger.Debug().Str("k", "v").Msg("hello")

	out := buf.String()
	assert.Contains(t, out, `"component":"test"`)
	assert.Contains(t, out, `"message":"hello"`)
	assert.Contains(t, out, `"k":"v"`)

	buf.Reset()
	log.Info().Msg("global")
	assert.Contains(t, buf.String(), "global", "Init replaces the global logger")
}

func TestInitAutoOnPipeIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Init(Config{Format: "auto", Output: &buf})
	logger.Info().Msg("plain")
	assert.Contains(t, buf.String(), `"level":"info"`)
}

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "poolnav.log")
	logger := Init(Config{Format: "json", FilePath: path})
	logger.Warn().Msg("to file")
	Shutdown()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestDefaultFilePath(t *testing.T) {
	assert.Equal(t, "poolnav.log", filepath.Base(DefaultFilePath()))
}
