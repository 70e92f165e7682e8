package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := NewRecorder()
	scoped := NewScopedAPI("pipeline", NewScopedAPI("kofi", rec))

	scoped.ReportBroken("source.open")
	scoped.ReportWarning("detail.parse")
	scoped.ReportCount("items", 3)

	require.Equal(t, []string{"kofi: pipeline: source.open"}, rec.Broken())
	require.Equal(t, []string{"kofi: pipeline: detail.parse"}, rec.Warnings())

	n, ok := rec.Count("kofi: pipeline: items")
	require.True(t, ok)
	require.Equal(t, int64(3), n)
}

func TestSlogAPIFormatParams(t *testing.T) {
	var out []any
	SlogAPI{}.formatParams(&out, []any{"https://ko-fi.com", KV{Key: "status", Value: 404}})
	require.Equal(t, []any{"params.0", "https://ko-fi.com", "status", 404}, out)
}
