// Package storefront describes the storefronts the harvester knows how to read: where their
// listing lives, how it is rendered and which heuristics find products in it.
package storefront

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

type Mode int

const (
	// ModeBrowser storefronts render their listing with javascript, a headless browser is
	// needed to see any products.
	ModeBrowser Mode = iota
	// ModeStatic storefronts serve products in the initial html.
	ModeStatic
)

func (m Mode) String() string {
	switch m {
	case ModeBrowser:
		return "browser"
	case ModeStatic:
		return "static"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

const DefaultTitleSelector = `h1, h2, h3, h4, h5, h6, [class*="title"], [class*="name"]`

type Profile struct {
	Name string
	// Source tags every product harvested from this storefront, empty leaves them untagged.
	Source string
	Origin string
	// ListingPath is formatted with the target (username, store slug) to get the listing url.
	ListingPath string
	Mode        Mode
	// Enrich visits every product page to replace the listing guesses.
	Enrich bool

	AnchorSelector string
	// CardSelector finds the product's container from its anchor, empty uses the anchor.
	CardSelector  string
	TitleSelector string
	// PriceSelector points at a dedicated price element, empty falls back to searching the
	// card's text.
	PriceSelector string
	AssetHosts    []string
	// ProductPattern is matched against resolved anchor urls, nil accepts every anchor the
	// AnchorSelector finds.
	ProductPattern *regexp.Regexp
	RequireImage   bool

	MinLimit     int
	MaxLimit     int
	DefaultLimit int

	DefaultTarget  string
	DefaultOutFile string
}

func (p Profile) ListingURL(target string) string {
	return strings.TrimRight(p.Origin, "/") + fmt.Sprintf(p.ListingPath, url.PathEscape(target))
}

func (p Profile) IsProductURL(u string) bool {
	if u == "" {
		return false
	}
	if p.ProductPattern == nil {
		return true
	}
	return p.ProductPattern.MatchString(u)
}

// IsAssetURL reports whether u is hosted on one of the storefront's asset hosts
// (or a subdomain of one).
func (p Profile) IsAssetURL(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}
	for _, asset := range p.AssetHosts {
		if host == asset || strings.HasSuffix(host, "."+asset) {
			return true
		}
	}
	return false
}

func (p Profile) TitleSelectorOrDefault() string {
	if p.TitleSelector == "" {
		return DefaultTitleSelector
	}
	return p.TitleSelector
}

var Kofi = Profile{
	Name:           "kofi",
	Origin:         "https://ko-fi.com",
	ListingPath:    "/%s/shop/newproducts",
	Mode:           ModeBrowser,
	Enrich:         true,
	AnchorSelector: `a[href*="ko-fi.com/s/"], a[href^="/s/"]`,
	CardSelector:   "article, li, div",
	AssetHosts:     []string{"storage.ko-fi.com", "cdn.ko-fi.com"},
	ProductPattern: regexp.MustCompile(`ko-fi\.com/s/`),
	MinLimit:       1,
	MaxLimit:       8,
	DefaultLimit:   8,
	DefaultTarget:  "yumykon",
	DefaultOutFile: "data/kofi_newproducts.json",
}

var ACGGoods = Profile{
	Name:           "acggoods",
	Source:         "acggoods",
	Origin:         "https://acggoods.com",
	ListingPath:    "/store/%s",
	Mode:           ModeStatic,
	AnchorSelector: "a.track-show-product",
	CardSelector:   "a",
	TitleSelector:  ".acg-product-c-w__name",
	PriceSelector:  ".acg-product-c-w__price",
	RequireImage:   true,
	MinLimit:       1,
	MaxLimit:       24,
	DefaultLimit:   8,
	DefaultTarget:  "yumykon",
	DefaultOutFile: "data/store_products.json",
}

var profiles = map[string]Profile{
	Kofi.Name:     Kofi,
	ACGGoods.Name: ACGGoods,
}

func Lookup(name string) (Profile, bool) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Names lists every known storefront, sorted.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

const suggestThreshold = 0.8

// Suggest returns the known storefront whose name is closest to name, for typos like "ko-fi".
func Suggest(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", false
	}

	var best string
	var bestSimilarity float64
	for _, known := range Names() {
		similarity := matchr.JaroWinkler(name, known, false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = known
		}
	}
	if bestSimilarity < suggestThreshold {
		return "", false
	}
	return best, true
}

// Request identity shared by every page source, storefronts are more forgiving with a
// desktop browser's.
const (
	UserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36"
	Locale         = "en-US"
	AcceptLanguage = "en-US,en;q=0.9"
	ViewportWidth  = 1280
	ViewportHeight = 720
)
