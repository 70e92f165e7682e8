package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront-harvester/internal/components/telemetry"
	"storefront-harvester/internal/storefront"

	"github.com/stretchr/testify/require"
)

func newServer(t testing.TB) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/store/yumykon", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html; charset=utf-8")
		fmt.Fprintf(
			w,
			`<html><body><p id="ua">%s</p><p id="lang">%s</p></body></html>`,
			r.Header.Get("user-agent"),
			r.Header.Get("accept-language"),
		)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.RequestsPerSecond = 0
	return opts
}

func TestDocument(t *testing.T) {
	server := newServer(t)
	client := NewClient(testOptions(), telemetry.NewRecorder())
	defer client.Close()

	doc, err := client.Document(context.Background(), server.URL+"/store/yumykon")
	require.NoError(t, err)
	require.Equal(t, storefront.UserAgent, doc.Find("#ua").Text())
	require.Equal(t, storefront.AcceptLanguage, doc.Find("#lang").Text())
}

func TestDocumentDump(t *testing.T) {
	server := newServer(t)
	opts := testOptions()
	opts.DumpDir = filepath.Join(t.TempDir(), "http")
	client := NewClient(opts, telemetry.NewRecorder())
	defer client.Close()

	_, err := client.Document(context.Background(), server.URL+"/store/yumykon")
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(opts.DumpDir, "fetch-1.txt"))
	require.NoError(t, err)
	require.Contains(t, string(contents), "GET "+server.URL+"/store/yumykon")
	require.Contains(t, string(contents), `<p id="ua">`+storefront.UserAgent+`</p>`)
}

func TestDocumentErrorStatus(t *testing.T) {
	server := newServer(t)
	rec := telemetry.NewRecorder()
	client := NewClient(testOptions(), rec)

	_, err := client.Document(context.Background(), server.URL+"/missing")
	require.ErrorContains(t, err, "404")
	require.Contains(t, rec.Warnings(), "fetch: fetch.document")
}

func TestDocumentTimeout(t *testing.T) {
	server := newServer(t)
	opts := testOptions()
	opts.Timeout = 50 * time.Millisecond
	client := NewClient(opts, telemetry.NewRecorder())

	start := time.Now()
	_, err := client.Document(context.Background(), server.URL+"/slow")
	require.Error(t, err)
	require.Less(t, time.Since(start), 4*time.Second)
}

func TestFactory(t *testing.T) {
	server := newServer(t)
	source, err := NewFactory(testOptions(), telemetry.NewRecorder()).Open(context.Background())
	require.NoError(t, err)
	defer source.Close()

	doc, err := source.Document(context.Background(), server.URL+"/store/yumykon")
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("#ua").Length())
}
