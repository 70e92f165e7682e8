package catalog

// Options controls how a scan's candidates become products.
type Options struct {
	// Origin resolves root-relative urls, ex. "https://ko-fi.com".
	Origin string
	Limit  int
	// MinLimit and MaxLimit bound Limit, MaxLimit is itself bounded by HardCeiling.
	MinLimit int
	MaxLimit int
	// Source tags products that don't carry a source of their own, empty leaves them untagged.
	Source string
}

// ClampLimit forces n into [min, max], where max never exceeds HardCeiling and min is at
// least 1.
func ClampLimit(n, min, max int) int {
	if max <= 0 || max > HardCeiling {
		max = HardCeiling
	}
	if min < 1 {
		min = 1
	}
	if min > max {
		min = max
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// Dedupe resolves every candidate url against origin and keeps the first occurrence of each
// distinct non-empty url, in order of first appearance. Urls that differ only in host case,
// default port, fragment or query order count as the same url, the first spelling wins.
func Dedupe(candidates []RawCandidate, origin string) []RawCandidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]RawCandidate, 0, len(candidates))
	for _, c := range candidates {
		c.URL = ResolveURL(origin, c.URL)
		if c.URL == "" {
			continue
		}
		key := canonicalKey(c.URL)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Normalize dedupes, truncates to the clamped limit (keeping the prefix) and cleans every
// candidate into a product. The result is never nil.
func Normalize(candidates []RawCandidate, opts Options) []Product {
	deduped := Dedupe(candidates, opts.Origin)
	limit := ClampLimit(opts.Limit, opts.MinLimit, opts.MaxLimit)
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}

	products := make([]Product, 0, len(deduped))
	for _, c := range deduped {
		price := FormatPrice(c.Price)
		source := c.Source
		if source == "" {
			source = opts.Source
		}
		products = append(products, Product{
			URL:    c.URL,
			Image:  ResolveURL(opts.Origin, c.Image),
			Title:  CleanTitle(c.Title, price),
			Price:  price,
			Source: source,
		})
	}
	return products
}
