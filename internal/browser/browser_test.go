package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"storefront-harvester/internal/components/telemetry"
	"storefront-harvester/internal/storefront"

	"github.com/stretchr/testify/require"
)

func TestNewLauncherDefaults(t *testing.T) {
	l := NewLauncher(Options{Settle: -1}, telemetry.NewRecorder())
	require.Equal(t, DefaultNavigationTimeout, l.opts.NavigationTimeout)
	require.Equal(t, DefaultSettle, l.opts.Settle)

	l = NewLauncher(Options{NavigationTimeout: time.Second}, telemetry.NewRecorder())
	require.Equal(t, time.Second, l.opts.NavigationTimeout)
	require.Equal(t, time.Duration(0), l.opts.Settle)
}

// launching chrome is slow and needs a chrome binary, so this only runs when asked to
func TestSessionRendersScript(t *testing.T) {
	if os.Getenv("HARVEST_BROWSER_TEST") == "" {
		t.Skip("set HARVEST_BROWSER_TEST=1 to run tests against a real chrome")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><div id="root"></div><script>
			document.getElementById("root").innerHTML =
				'<a href="/s/abc">' + navigator.userAgent + '</a>';
		</script></body></html>`)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Settle = 200 * time.Millisecond
	opts.Bin = os.Getenv("BROWSER_BIN")

	source, err := NewLauncher(opts, telemetry.NewRecorder()).Open(context.Background())
	require.NoError(t, err)
	defer source.Close()

	doc, err := source.Document(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, storefront.UserAgent, doc.Find(`a[href="/s/abc"]`).Text())
}
