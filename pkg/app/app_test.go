package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/womat/debug"

	"rcdl/pkg/app/config"
	"rcdl/pkg/jrc"
	"rcdl/pkg/port"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

// TestWebEndpoints wires one app without an edge source and walks the
// default routes. A single app instance is used because the prometheus
// collectors register on the default registry.
func TestWebEndpoints(t *testing.T) {
	cfg := config.NewConfig()
	a, err := New(cfg)
	require.NoError(t, err)

	events := make(chan port.Event)
	close(events)
	a.decoder, err = jrc.New(port.NewSource(events), a.recorder, cfg.SampleRate, cfg.TargetData)
	require.NoError(t, err)
	a.initDefaultRoutes()

	get := func(path string) (*http.Response, []byte) {
		resp, err := a.web.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoErrorf(t, err, "GET %s", path)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, body
	}

	t.Run("version", func(t *testing.T) {
		resp, body := get("/version")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), VERSION)
	})

	t.Run("health", func(t *testing.T) {
		resp, body := get("/health")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "NumGoroutines")
	})

	t.Run("data without packet", func(t *testing.T) {
		resp, _ := get("/data")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("data with packet", func(t *testing.T) {
		a.packet.Lock()
		a.packet.last = jrc.Packet{StartCode: jrc.StartCode, StartValid: true}
		a.packet.seen = true
		a.packet.Unlock()

		resp, body := get("/data")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var p jrc.Packet
		require.NoError(t, json.Unmarshal(body, &p))
		assert.Equal(t, byte(jrc.StartCode), p.StartCode)
	})

	t.Run("stats", func(t *testing.T) {
		resp, body := get("/stats")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var snap jrc.Snapshot
		require.NoError(t, json.Unmarshal(body, &snap))
		assert.False(t, snap.Enabled)
		assert.Zero(t, snap.Total)
	})

	t.Run("annotations", func(t *testing.T) {
		a.recorder.Put(10, 20, jrc.Preamble, []string{"Preamble", "P"})

		resp, body := get("/annotations")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `"rows"`)
		assert.Contains(t, string(body), "Preamble")
	})

	t.Run("metrics", func(t *testing.T) {
		resp, _ := get("/metrics")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
