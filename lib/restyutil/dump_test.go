package restyutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html")
		w.Write([]byte("<a href=\"/s/abc\">sticker</a>"))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := resty.New().SetHeader("user-agent", "harvester-test")
	Dump(client, "fetch", output)

	for i := 0; i < 2; i++ {
		_, err = client.R().Get(srv.URL + "/yumykon/shop")
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	contents, err := os.ReadFile(filepath.Join(dir, "fetch-1.txt"))
	require.NoError(t, err)
	message := string(contents)
	require.True(t, strings.HasPrefix(message, "---- REQUEST ----\n\nGET "+srv.URL+"/yumykon/shop"))
	require.Contains(t, message, "User-Agent: harvester-test")
	require.Contains(t, message, "200 OK")
	require.True(t, strings.HasSuffix(message, "<a href=\"/s/abc\">sticker</a>"))
}

func TestFormatHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Add("X-B", "2")
	headers.Add("X-A", "1")
	headers.Add("X-A", "3")
	require.Equal(t, "X-A: 1\nX-A: 3\nX-B: 2", formatHeaders(headers))
	require.Equal(t, "", formatHeaders(http.Header{}))
}

func TestFormatRequestBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://acggoods.com/store/yumykon", nil)
	require.NoError(t, err)
	require.Equal(t, "", formatRequestBody(req))

	req.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	require.Equal(t, "", formatRequestBody(req))

	req, err = http.NewRequest(http.MethodPost, "https://acggoods.com/cart", strings.NewReader("id=1"))
	require.NoError(t, err)
	require.Equal(t, "id=1", formatRequestBody(req))
}
