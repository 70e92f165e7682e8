package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront-harvester/internal/catalog"

	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "kofi_newproducts.json")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := WriteFile(path, catalog.NewSnapshot(now, []catalog.Product{
		{URL: "https://ko-fi.com/s/a", Image: "https://storage.ko-fi.com/a.png", Title: "Cute Sticker", Price: "$3.59"},
	}))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{
  "updated_at": "2024-05-01T12:00:00.000Z",
  "active": true,
  "items": [
    {
      "url": "https://ko-fi.com/s/a",
      "image": "https://storage.ko-fi.com/a.png",
      "title": "Cute Sticker",
      "price": "$3.59"
    }
  ]
}
`, string(data))

	// a second run overwrites the file completely
	err = WriteFile(path, catalog.NewSnapshot(now, nil))
	require.NoError(t, err)

	read, err := ReadFile(path)
	require.NoError(t, err)
	require.False(t, read.Active)
	require.Empty(t, read.Items)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestMarshalEmptyItems(t *testing.T) {
	data, err := Marshal(catalog.Snapshot{UpdatedAt: "2024-05-01T12:00:00.000Z"})
	require.NoError(t, err)
	require.Equal(t, "{\n  \"updated_at\": \"2024-05-01T12:00:00.000Z\",\n  \"active\": false,\n  \"items\": []\n}\n", string(data))
}

func TestMarshalKeepsAmpersand(t *testing.T) {
	data, err := Marshal(catalog.Snapshot{Items: []catalog.Product{{Title: "Plush & <Keychain>"}}})
	require.NoError(t, err)
	require.Contains(t, string(data), `"title": "Plush & <Keychain>"`)
}
