package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	require.Equal(t, zerolog.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: "info", Format: FormatJSON})
	require.NoError(t, err)

	cl := Component(l, "session")
	cl.Info().Str("port", "/dev/ttyACM0").Msg("connected")
	l.Debug().Msg("dropped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "session", entry["component"])
	require.Equal(t, "/dev/ttyACM0", entry["port"])
	require.Equal(t, "connected", entry["message"])
	require.Contains(t, entry, "time")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{})
	require.NoError(t, err)
	l.Warn().Msg("serial connection lost")
	require.Contains(t, buf.String(), "serial connection lost")
	require.Contains(t, buf.String(), "WRN")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{Format: "xml"})
	require.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "poketrader.log")
	l, closer, err := Open(os.Stderr, Options{Format: FormatJSON, File: path})
	require.NoError(t, err)
	l.Info().Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"message":"hello"`)
}
