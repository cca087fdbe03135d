package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func newHealthTestServer(t *testing.T, pinger Pinger) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewHealthHandler(time.Now(), pinger).Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthStatus(t *testing.T) {
	ts := newHealthTestServer(t, stubPinger{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ok", out["status"])
	assert.NotEmpty(t, out["uptime"])
}

func TestHealthcheckerDB(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		ts := newHealthTestServer(t, stubPinger{})
		resp, err := http.Get(ts.URL + "/api/healthchecker")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("database down", func(t *testing.T) {
		ts := newHealthTestServer(t, stubPinger{err: errors.New("connection refused")})
		resp, err := http.Get(ts.URL + "/api/healthchecker")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var out map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "error connecting to the database", out["detail"])
	})
}
