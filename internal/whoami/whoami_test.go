package whoami

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"dynipupdater/internal/publicip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceIP_ResolvableByPublicIP(t *testing.T) {
	srv := httptest.NewServer(NewRouter(false))
	defer srv.Close()

	ip, err := publicip.New().Resolve(context.Background(), srv.URL+"/ip")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", ip)
}

func TestSourceIP_PlainText(t *testing.T) {
	srv := httptest.NewServer(NewRouter(false))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ip")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "127.0.0.1", string(body))
}

func TestSourceIP_ProxyHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")

	rec := httptest.NewRecorder()
	NewRouter(true).ServeHTTP(rec, req)
	assert.Equal(t, "198.51.100.7", rec.Body.String())

	// without trust the header is ignored
	rec = httptest.NewRecorder()
	NewRouter(false).ServeHTTP(rec, req)
	assert.Equal(t, "192.0.2.1", rec.Body.String())
}

func TestSourceIP_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
