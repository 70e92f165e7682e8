package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront-harvester/internal/catalog"
	"storefront-harvester/internal/components/telemetry"
	"storefront-harvester/internal/db"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB, keep int) Store {
	sqlite, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return NewStore(sqlite, keep, telemetry.NewRecorder())
}

func snapshotAt(minute int, urls ...string) catalog.Snapshot {
	var items []catalog.Product
	for _, u := range urls {
		items = append(items, catalog.Product{URL: u, Title: "Product"})
	}
	return catalog.NewSnapshot(time.Date(2024, 5, 1, 12, minute, 0, 0, time.UTC), items)
}

func TestRecordAndRecent(t *testing.T) {
	store := setup(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "kofi", snapshotAt(0, "https://ko-fi.com/s/a"), nil))
	require.NoError(t, store.Record(ctx, "acggoods", snapshotAt(1), errors.New("source unavailable: get: 503")))
	require.NoError(t, store.Record(ctx, "kofi", snapshotAt(2, "https://ko-fi.com/s/a", "https://ko-fi.com/s/b"), nil))

	all, err := store.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "kofi", all[0].Storefront)
	require.Len(t, all[0].Snapshot.Items, 2)
	require.Equal(t, "2024-05-01T12:02:00.000Z", all[0].Snapshot.UpdatedAt)
	require.Equal(t, "acggoods", all[1].Storefront)
	require.False(t, all[1].Snapshot.Active)
	require.Equal(t, "source unavailable: get: 503", all[1].Error)

	kofi, err := store.Recent(ctx, "kofi", 1)
	require.NoError(t, err)
	require.Len(t, kofi, 1)
	require.Equal(t, "https://ko-fi.com/s/b", kofi[0].Snapshot.Items[1].URL)
}

func TestRecordPrunes(t *testing.T) {
	store := setup(t, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, "kofi", snapshotAt(i, fmt.Sprintf("https://ko-fi.com/s/%d", i)), nil))
	}
	require.NoError(t, store.Record(ctx, "acggoods", snapshotAt(9), nil))

	kofi, err := store.Recent(ctx, "kofi", 10)
	require.NoError(t, err)
	require.Len(t, kofi, 2)
	require.Equal(t, "https://ko-fi.com/s/4", kofi[0].Snapshot.Items[0].URL)
	require.Equal(t, "https://ko-fi.com/s/3", kofi[1].Snapshot.Items[0].URL)

	acg, err := store.Recent(ctx, "acggoods", 10)
	require.NoError(t, err)
	require.Len(t, acg, 1)
}
