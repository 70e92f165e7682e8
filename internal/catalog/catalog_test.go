package catalog

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestNormalizeExample(t *testing.T) {
	candidates := []RawCandidate{
		{URL: "/s/abc", Title: "$3.59 Cute Sticker 12 sold - Maker's Ko-fi Shop", Price: "$3.59"},
		{URL: "/s/abc", Title: "dup"},
	}

	products := Normalize(candidates, Options{
		Origin:   "https://ko-fi.com",
		Limit:    8,
		MinLimit: 1,
		MaxLimit: 8,
	})

	expected := []Product{
		{URL: "https://ko-fi.com/s/abc", Title: "Cute Sticker", Price: "$3.59"},
	}
	if diff := cmp.Diff(expected, products); diff != "" {
		t.Fatalf("unexpected products (-want +got):\n%s", diff)
	}
}

func TestDedupe(t *testing.T) {
	candidates := []RawCandidate{
		{URL: "/s/a", Title: "first a"},
		{URL: ""},
		{URL: "https://ko-fi.com/s/b"},
		{URL: "https://ko-fi.com/s/a", Title: "second a"},
		{URL: "/s/b"},
		{URL: "   "},
		{URL: "/s/c"},
	}

	deduped := Dedupe(candidates, "https://ko-fi.com")

	var urls []string
	for _, c := range deduped {
		urls = append(urls, c.URL)
	}
	require.Equal(t, []string{
		"https://ko-fi.com/s/a",
		"https://ko-fi.com/s/b",
		"https://ko-fi.com/s/c",
	}, urls)
	require.Equal(t, "first a", deduped[0].Title)
}

func TestDedupeCanonical(t *testing.T) {
	candidates := []RawCandidate{
		{URL: "https://ko-fi.com/s/a?b=2&a=1", Title: "first"},
		{URL: "https://KO-FI.com:443/s/a?a=1&b=2#buy", Title: "same page"},
		{URL: "https://ko-fi.com/s/a/", Title: "other route"},
	}

	deduped := Dedupe(candidates, "https://ko-fi.com")

	require.Len(t, deduped, 2)
	require.Equal(t, "https://ko-fi.com/s/a?b=2&a=1", deduped[0].URL)
	require.Equal(t, "https://ko-fi.com/s/a/", deduped[1].URL)
}

func TestNormalizeLimit(t *testing.T) {
	var candidates []RawCandidate
	for i := 0; i < 40; i++ {
		candidates = append(candidates, RawCandidate{URL: fmt.Sprintf("/s/%d", i)})
	}

	table := []struct {
		limit    int
		min      int
		max      int
		expected int
	}{
		{limit: 8, min: 1, max: 8, expected: 8},
		{limit: 3, min: 1, max: 8, expected: 3},
		{limit: 100, min: 1, max: 8, expected: 8},
		{limit: 0, min: 1, max: 8, expected: 1},
		{limit: 100, min: 1, max: 24, expected: 24},
		{limit: 100, min: 1, max: 1000, expected: HardCeiling},
		{limit: 100, min: 0, max: 0, expected: HardCeiling},
	}

	for _, row := range table {
		products := Normalize(candidates, Options{
			Origin:   "https://ko-fi.com",
			Limit:    row.limit,
			MinLimit: row.min,
			MaxLimit: row.max,
		})
		require.Len(t, products, row.expected, "limit=%d min=%d max=%d", row.limit, row.min, row.max)
		require.Equal(t, "https://ko-fi.com/s/0", products[0].URL)
	}
}

func TestNormalizeFields(t *testing.T) {
	products := Normalize([]RawCandidate{
		{URL: "/store/item-1", Image: "/img/1.png", Title: "  ", Price: "USD 4"},
		{URL: "/store/item-2", Image: "https://cdn.example.com/2.png", Title: "Charm", Source: "other"},
	}, Options{Origin: "https://acggoods.com", Limit: 8, Source: "acggoods"})

	expected := []Product{
		{
			URL:    "https://acggoods.com/store/item-1",
			Image:  "https://acggoods.com/img/1.png",
			Title:  DefaultTitle,
			Price:  "$4.00",
			Source: "acggoods",
		},
		{
			URL:    "https://acggoods.com/store/item-2",
			Image:  "https://cdn.example.com/2.png",
			Title:  "Charm",
			Source: "other",
		},
	}
	if diff := cmp.Diff(expected, products); diff != "" {
		t.Fatalf("unexpected products (-want +got):\n%s", diff)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	products := Normalize(nil, Options{Origin: "https://ko-fi.com", Limit: 8})
	require.NotNil(t, products)
	require.Empty(t, products)
}

func TestClampLimit(t *testing.T) {
	table := []struct {
		n, min, max int
		expected    int
	}{
		{n: 8, min: 1, max: 8, expected: 8},
		{n: 50, min: 1, max: 8, expected: 8},
		{n: 0, min: 1, max: 8, expected: 1},
		{n: -3, min: 1, max: 24, expected: 1},
		{n: 30, min: 1, max: 100, expected: 24},
		{n: 5, min: 0, max: 0, expected: 5},
		{n: 5, min: 30, max: 8, expected: 8},
	}

	for _, row := range table {
		require.Equal(t, row.expected, ClampLimit(row.n, row.min, row.max), "%+v", row)
	}
}

func TestNewSnapshot(t *testing.T) {
	now := time.Date(2024, 3, 9, 17, 4, 5, 123_000_000, time.FixedZone("PST", -8*60*60))

	empty := NewSnapshot(now, nil)
	require.False(t, empty.Active)
	require.Equal(t, "2024-03-10T01:04:05.123Z", empty.UpdatedAt)

	serialized, err := json.Marshal(empty)
	require.NoError(t, err)
	require.JSONEq(t, `{"updated_at":"2024-03-10T01:04:05.123Z","active":false,"items":[]}`, string(serialized))

	items := []Product{{URL: "https://ko-fi.com/s/b"}, {URL: "https://ko-fi.com/s/a"}}
	full := NewSnapshot(now, items)
	require.True(t, full.Active)
	require.Equal(t, items, full.Items)
}

func TestResolveURL(t *testing.T) {
	table := []struct {
		href     string
		expected string
	}{
		{href: "https://ko-fi.com/s/abc", expected: "https://ko-fi.com/s/abc"},
		{href: "http://example.com/x", expected: "http://example.com/x"},
		{href: "/s/abc", expected: "https://ko-fi.com/s/abc"},
		{href: "//storage.ko-fi.com/a.png", expected: "https://storage.ko-fi.com/a.png"},
		{href: "s/abc", expected: "s/abc"},
		{href: "#top", expected: "#top"},
		{href: "  ", expected: ""},
	}

	for _, row := range table {
		require.Equal(t, row.expected, ResolveURL("https://ko-fi.com/", row.href), row.href)
	}

	require.Equal(t, "http://cdn.example.com/a.png", ResolveURL("http://127.0.0.1:8080", "//cdn.example.com/a.png"))
}
