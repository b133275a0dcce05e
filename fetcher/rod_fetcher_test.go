package fetcher

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectBrowser_KillsOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	controlURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	killed := 0
	browser, err := connectBrowser(controlURL, func() { killed++ })

	assert.Nil(t, browser)
	assert.ErrorContains(t, err, "failed to connect to browser")
	assert.Equal(t, 1, killed)
}

func TestResolveBrowserBin(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "chrome")
	assert.NoError(t, os.WriteFile(bin, nil, 0o755))

	assert.Equal(t, bin, resolveBrowserBin(bin))
}
