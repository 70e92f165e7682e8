package catalog

import (
	"net/url"

	"github.com/PuerkitoBio/purell"
)

// paths are left alone, storefronts route "/s/abc" and "/s/abc/" to different handlers
const canonicalFlags = purell.FlagsSafe |
	purell.FlagRemoveFragment |
	purell.FlagSortQuery

// canonicalKey identifies the page behind an absolute url, so that "https://KO-FI.com:443/s/abc"
// and "https://ko-fi.com/s/abc#buy" dedupe together. Urls that don't parse key as themselves.
func canonicalKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return purell.NormalizeURL(u, canonicalFlags)
}
