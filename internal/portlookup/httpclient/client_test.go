package httpclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bkcnorm/internal/config"
	"bkcnorm/internal/domain"
	"bkcnorm/internal/portlookup"
	"bkcnorm/internal/portlookup/httpclient"
)

func newTestClient(serverURL string, retries int) *httpclient.Client {
	cfg := &config.PortProviderConfig{
		Provider:    "http",
		MaxRetries:  retries,
		TimeoutSecs: 5,
	}
	return httpclient.NewClientWithEndpoint(cfg, serverURL)
}

func TestClient_Resolve_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "Nhava Sheva", reqBody["user_description"])
		assert.Equal(t, "IN", reqBody["country_code"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"port_code": " INNSA1 "}`))
	}))
	defer server.Close()

	code, err := newTestClient(server.URL, 0).Resolve(context.Background(), "Nhava Sheva", "IN")

	require.NoError(t, err)
	assert.Equal(t, "INNSA1", code)
}

func TestClient_Resolve_AnySuccessStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"ok", http.StatusOK},
		{"created", http.StatusCreated},
		{"accepted", http.StatusAccepted},
		{"non-authoritative", http.StatusNonAuthoritativeInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"port_code":"INNSA"}`))
			}))
			defer server.Close()

			code, err := newTestClient(server.URL, 2).Resolve(context.Background(), "Nhava Sheva", "IN")

			require.NoError(t, err)
			assert.Equal(t, "INNSA", code)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestClient_Resolve_EmptyOrMissingPortCode(t *testing.T) {
	for _, body := range []string{`{"port_code": ""}`, `{}`, `{"port_code": null}`} {
		t.Run(body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, 0).Resolve(context.Background(), "Nowhere", "")
			assert.ErrorIs(t, err, domain.ErrPortNotResolved)
		})
	}
}

func TestClient_Resolve_MalformedBody(t *testing.T) {
	for _, body := range []string{`not json`, `{"port_code": 42}`, `[]`} {
		t.Run(body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, 0).Resolve(context.Background(), "Mundra", "IN")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unmarshaling response")
		})
	}
}

func TestClient_Resolve_RateLimited(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "slow down"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 2).Resolve(context.Background(), "Hamburg", "DE")

	var rlErr *portlookup.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 7*time.Second, rlErr.RetryAfter)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Resolve_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"port_code": "DEHAM"}`))
	}))
	defer server.Close()

	code, err := newTestClient(server.URL, 1).Resolve(context.Background(), "Hamburg", "DE")

	require.NoError(t, err)
	assert.Equal(t, "DEHAM", code)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Resolve_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 1).Resolve(context.Background(), "Hamburg", "DE")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Resolve_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 3).Resolve(context.Background(), "Hamburg", "DE")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Resolve_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url, 0).Resolve(context.Background(), "Hamburg", "DE")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "calling port lookup API")
}

func TestClient_Resolve_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server.URL, 3).Resolve(ctx, "Hamburg", "DE")
	assert.Error(t, err)
}

func TestClient_RegisteredProvider(t *testing.T) {
	_, err := portlookup.NewResolver(&config.PortProviderConfig{Provider: "http"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url is required")

	r, err := portlookup.NewResolver(&config.PortProviderConfig{Provider: "http", URL: "http://localhost:1/find"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &httpclient.Client{}, r)
}
