package storefront

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListingURL(t *testing.T) {
	require.Equal(t, "https://ko-fi.com/yumykon/shop/newproducts", Kofi.ListingURL("yumykon"))
	require.Equal(t, "https://acggoods.com/store/some%20shop", ACGGoods.ListingURL("some shop"))
}

func TestIsProductURL(t *testing.T) {
	table := []struct {
		profile  Profile
		url      string
		expected bool
	}{
		{profile: Kofi, url: "https://ko-fi.com/s/abc123", expected: true},
		{profile: Kofi, url: "https://ko-fi.com/yumykon/shop", expected: false},
		{profile: Kofi, url: "", expected: false},
		{profile: ACGGoods, url: "https://acggoods.com/product/1", expected: true},
		{profile: ACGGoods, url: "", expected: false},
	}

	for _, row := range table {
		require.Equal(t, row.expected, row.profile.IsProductURL(row.url), "%s %s", row.profile.Name, row.url)
	}
}

func TestIsAssetURL(t *testing.T) {
	require.True(t, Kofi.IsAssetURL("https://storage.ko-fi.com/cdn/a.png"))
	require.True(t, Kofi.IsAssetURL("https://eu.cdn.ko-fi.com/a.png"))
	require.False(t, Kofi.IsAssetURL("https://ko-fi.com/img/logo.png"))
	require.False(t, Kofi.IsAssetURL("/img/a.png"))
	require.False(t, ACGGoods.IsAssetURL("https://acggoods.com/a.png"))
}

func TestLookup(t *testing.T) {
	p, ok := Lookup(" KoFi ")
	require.True(t, ok)
	require.Equal(t, "kofi", p.Name)

	_, ok = Lookup("etsy")
	require.False(t, ok)

	require.Equal(t, []string{"acggoods", "kofi"}, Names())
}

func TestSuggest(t *testing.T) {
	table := []struct {
		name     string
		expected string
		ok       bool
	}{
		{name: "ko-fi", expected: "kofi", ok: true},
		{name: "ACGoods", expected: "acggoods", ok: true},
		{name: "zzzz", ok: false},
		{name: "  ", ok: false},
	}

	for _, row := range table {
		suggestion, ok := Suggest(row.name)
		require.Equal(t, row.ok, ok, row.name)
		require.Equal(t, row.expected, suggestion, row.name)
	}
}
