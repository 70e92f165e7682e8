package catalog

import (
	"regexp"
	"strings"

	"storefront-harvester/lib/textutil"
)

var (
	leadingPriceRegex = regexp.MustCompile(`^\$\s?\d[\d,]*(?:\.\d+)?\s*`)
	soldRegex         = regexp.MustCompile(`(?i)\b\d+\s+sold\b`)
	ownerShopRegex    = regexp.MustCompile(`(?i)\s*-\s*[^-]+?'s\s+ko-fi\s+shop\s*$`)
	genericShopRegex  = regexp.MustCompile(`(?i)\s+-\s+[^-]*shop\s*$`)
)

const descriptionSeparator = " - "

// CleanTitle strips listing noise (prices, sold counts, shop name suffixes, long
// descriptions) from a product title. price is the item's formatted price, a title ending
// with it has it removed, even when the same text is a legitimate part of the title.
//
// The passes repeat until nothing changes so CleanTitle(CleanTitle(t, p), p) equals
// CleanTitle(t, p). The result is never empty.
func CleanTitle(title, price string) string {
	current := textutil.CollapseSpace(title)
	if current == DefaultTitle {
		return DefaultTitle
	}
	for {
		next := cleanPass(current, price)
		if next == current {
			break
		}
		current = next
	}
	if current == "" {
		return DefaultTitle
	}
	return current
}

func cleanPass(t, price string) string {
	t = textutil.CollapseSpace(t)
	t = textutil.CollapseSpace(leadingPriceRegex.ReplaceAllString(t, ""))
	t = textutil.CollapseSpace(soldRegex.ReplaceAllString(t, ""))

	price = strings.TrimSpace(price)
	if price != "" && strings.HasSuffix(t, price) {
		t = textutil.CollapseSpace(strings.TrimSuffix(t, price))
	}

	if ownerShopRegex.MatchString(t) {
		t = textutil.CollapseSpace(ownerShopRegex.ReplaceAllString(t, ""))
	} else {
		t = textutil.CollapseSpace(genericShopRegex.ReplaceAllString(t, ""))
	}

	if i := strings.Index(t, descriptionSeparator); i >= 0 {
		t = textutil.CollapseSpace(t[:i])
	}
	return t
}
