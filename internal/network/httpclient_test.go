package network

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(nil)
	require.NotNil(t, client)
	assert.Equal(t, DefaultRequestTimeout, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, DefaultMaxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
	assert.False(t, transport.TLSClientConfig.InsecureSkipVerify)
}

func TestClientTimeoutBoundsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := NewDefaultClientConfig()
	cfg.RequestTimeout = 50 * time.Millisecond
	client := NewClient(cfg)

	start := time.Now()
	_, err := client.Get(srv.URL)
	require.Error(t, err, "a slow backend must surface as a request error")
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestIgnoreTLSErrors(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	strict := NewClient(NewDefaultClientConfig())
	_, err := strict.Get(srv.URL)
	assert.Error(t, err, "self-signed certs fail by default")

	cfg := NewDefaultClientConfig()
	cfg.IgnoreTLSErrors = true
	lax := NewClient(cfg)
	resp, err := lax.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
