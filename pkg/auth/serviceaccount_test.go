package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSourceFromFileMissing(t *testing.T) {
	_, err := TokenSourceFromFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"), CalendarScopes...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to read service account key")
}

func TestTokenSourceFromJSONRejectsGarbage(t *testing.T) {
	_, err := TokenSourceFromJSON(context.Background(), []byte(`{"type":`), CalendarScopes...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to parse service account key")
}

func TestGetCalendarServiceRejectsBadKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err := GetCalendarService(context.Background(), path)
	assert.Error(t, err)
}
