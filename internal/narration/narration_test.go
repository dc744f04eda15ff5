package narration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/docbridge/internal/config"
	"github.com/jonesrussell/docbridge/internal/logger"
)

func TestNarrate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/narrate", r.URL.Path)
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Sprint Review", req.Title)
		assert.Len(t, req.Documents, 2)

		json.NewEncoder(w).Encode(response{Narration: "The team reviewed two documents."})
	}))
	defer srv.Close()

	client := NewClient(config.NarrationConfig{Enabled: true, Endpoint: srv.URL}, logger.NewNopLogger())

	got, err := client.Narrate(context.Background(), "Sprint Review", []string{"doc one", "doc two"})
	require.NoError(t, err)
	assert.Equal(t, "The team reviewed two documents.", got)
}

func TestNarrateDisabled(t *testing.T) {
	client := NewClient(config.NarrationConfig{}, logger.NewNopLogger())
	assert.False(t, client.Enabled())

	_, err := client.Narrate(context.Background(), "x", nil)
	assert.Error(t, err)
}

func TestNarrateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(config.NarrationConfig{Enabled: true, Endpoint: srv.URL}, logger.NewNopLogger())

	_, err := client.Narrate(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
