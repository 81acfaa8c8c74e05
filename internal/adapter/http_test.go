package adapter_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestClient() adapter.HTTPClient {
	return adapter.NewHTTPClient(adapter.HTTPClientOptions{
		Timeout:        time.Second,
		MaxElapsedTime: 3 * time.Second,
		Headers:        map[string]string{"X-API-Key": "secret"},
	})
}

func TestHTTPClient_GetSendsHeadersAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		_, _ = w.Write([]byte(`{"result":{"name":"Dawn"}}`))
	}))
	defer server.Close()

	var resp struct {
		Result struct {
			Name string `json:"name"`
		} `json:"result"`
	}
	require.NoError(t, newTestClient().Get(context.Background(), server.URL, &resp))
	assert.Equal(t, "Dawn", resp.Result.Name)
}

func TestHTTPClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var resp map[string]any
	require.NoError(t, newTestClient().Get(context.Background(), server.URL, &resp))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClient_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such token", http.StatusNotFound)
	}))
	defer server.Close()

	err := newTestClient().Delete(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, adapter.IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load())

	var statusErr *adapter.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Contains(t, statusErr.Body, "no such token")
}

func TestHTTPClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"tokens":["1","2"]}`, string(body))

		_ = json.NewEncoder(w).Encode(map[string]int{"count": 2})
	}))
	defer server.Close()

	var resp struct {
		Count int `json:"count"`
	}
	err := newTestClient().PostJSON(context.Background(), server.URL, map[string][]string{"tokens": {"1", "2"}}, &resp)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
}

func TestHTTPClient_ContextCancelStopsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := newTestClient().Get(ctx, server.URL, &struct{}{})
	assert.Error(t, err)
	assert.False(t, adapter.IsNotFound(err))
}
