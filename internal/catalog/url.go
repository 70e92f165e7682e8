package catalog

import "strings"

// ResolveURL makes href absolute against origin when it is root-relative. Absolute urls pass
// through, anything else (relative paths, fragments, javascript:) is returned unchanged.
func ResolveURL(origin, href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		// protocol-relative, the host is kept and only the scheme comes from origin
		scheme := "https:"
		if strings.HasPrefix(origin, "http://") {
			scheme = "http:"
		}
		return scheme + href
	case strings.HasPrefix(href, "/"):
		return strings.TrimRight(origin, "/") + href
	}
	return href
}
