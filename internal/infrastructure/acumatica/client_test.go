package acumatica

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mld/backend/internal/domain/shared"
)

func newTestClient(t *testing.T, serverURL string, mutate func(*Config)) *Client {
	t.Helper()
	config := &Config{
		BaseURL:           serverURL,
		Username:          "sync",
		Password:          "secret",
		ClientID:          "mld-backend",
		ClientSecret:      "client-secret",
		JobPollSeconds:    1,
		JobTimeoutSeconds: 1,
	}
	if mutate != nil {
		mutate(config)
	}
	client, err := NewClient(config)
	require.NoError(t, err)
	return client
}

func serveToken(t *testing.T, w http.ResponseWriter, r *http.Request) {
	t.Helper()
	require.NoError(t, r.ParseForm())
	assert.Equal(t, "password", r.FormValue("grant_type"))
	assert.Equal(t, "sync", r.FormValue("username"))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": "test-token",
		"expires_in":   3600,
	})
}

func TestClientFetchSnapshot(t *testing.T) {
	t.Run("should fetch the feed with basic auth", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "sync", user)
			assert.Equal(t, "secret", pass)
			assert.Equal(t, "application/xml", r.Header.Get("Accept"))
			_, _ = w.Write([]byte(sampleAtomXML))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, func(c *Config) {
			c.ODataURL = server.URL + "/OData/MLD/Closeout%20Inventory%20Counts"
		})
		items, err := client.FetchSnapshot(context.Background())
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("should surface upstream errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, func(c *Config) { c.ODataURL = server.URL })
		_, err := client.FetchSnapshot(context.Background())
		assert.ErrorIs(t, err, shared.ErrExternalService)
	})
}

func TestClientExportJob(t *testing.T) {
	t.Run("should submit, poll and return rows", func(t *testing.T) {
		var tokenCalls, statusCalls int32
		mux := http.NewServeMux()
		mux.HandleFunc("/identity/connect/token", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&tokenCalls, 1)
			serveToken(t, w, r)
		})
		mux.HandleFunc("/api/export/closeout", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]any{"jobId": "job-42"})
		})
		mux.HandleFunc("/api/export/closeout/status", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "job-42", r.URL.Query().Get("jobId"))
			if atomic.AddInt32(&statusCalls, 1) < 2 {
				_ = json.NewEncoder(w).Encode(map[string]any{"status": "InProcess"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "Completed",
				"rows": []map[string]any{
					{"InventoryID": "WH ABC123 NIB", "Warehouse": "SALT LAKE CLOSEOUT", "QtyOnHand": 2},
				},
			})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client := newTestClient(t, server.URL, func(c *Config) { c.JobTimeoutSeconds = 10 })
		items, err := client.FetchSnapshotViaJob(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "WH ABC123 NIB", items[0].InventoryID)
		assert.Equal(t, 2, items[0].QtyOnHand)

		// the second and later requests reuse the cached token
		assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
		assert.Equal(t, int32(2), atomic.LoadInt32(&statusCalls))
	})

	t.Run("should fail when the submit response has no job id", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/identity/connect/token", func(w http.ResponseWriter, r *http.Request) { serveToken(t, w, r) })
		mux.HandleFunc("/api/export/closeout", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"accepted": true})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client := newTestClient(t, server.URL, nil)
		_, err := client.SubmitExportJob(context.Background())
		assert.ErrorIs(t, err, shared.ErrExternalService)
	})

	t.Run("should surface a failed job with its server error", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/identity/connect/token", func(w http.ResponseWriter, r *http.Request) { serveToken(t, w, r) })
		mux.HandleFunc("/api/export/closeout/status", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "Failed", "error": "export view locked"})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client := newTestClient(t, server.URL, nil)
		_, err := client.WaitForJob(context.Background(), "job-7")
		require.ErrorIs(t, err, shared.ErrExternalService)
		assert.Contains(t, err.Error(), "export view locked")
	})

	t.Run("should time out a job that never finishes", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/identity/connect/token", func(w http.ResponseWriter, r *http.Request) { serveToken(t, w, r) })
		mux.HandleFunc("/api/export/closeout/status", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "InProcess"})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client := newTestClient(t, server.URL, nil)
		start := time.Now()
		_, err := client.WaitForJob(context.Background(), "job-9")
		require.ErrorIs(t, err, shared.ErrJobTimeout)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("should fail fast when token auth is rejected", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/identity/connect/token", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client := newTestClient(t, server.URL, nil)
		_, err := client.SubmitExportJob(context.Background())
		assert.ErrorIs(t, err, shared.ErrExternalService)
	})
}
