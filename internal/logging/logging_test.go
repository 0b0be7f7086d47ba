package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hrdesk.log")
	log, err := New("info", path)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("listing fetched")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"listing fetched"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_EmptyPathIsNop(t *testing.T) {
	log, err := New("debug", "")
	require.NoError(t, err)
	log.Info("dropped")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New("loud", filepath.Join(t.TempDir(), "x.log"))
	assert.Error(t, err)
}
