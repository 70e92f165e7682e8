// Package listing finds product anchors on a storefront's listing page and extracts a rough
// url/image/title/price guess for each of them.
package listing

import (
	"strings"

	"storefront-harvester/internal/catalog"
	"storefront-harvester/internal/storefront"
	"storefront-harvester/lib/htmlutil"
	"storefront-harvester/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Scan returns one candidate per product anchor in doc, in document order. Anchors that
// don't point at a product page are ignored, candidates missing a required field are
// dropped. It never fails, a listing without products yields an empty slice.
func Scan(doc *goquery.Document, profile storefront.Profile) []catalog.RawCandidate {
	candidates, _ := ScanCounted(doc, profile)
	return candidates
}

// ScanCounted is Scan that also returns how many product anchors were dropped for missing
// a required field.
func ScanCounted(doc *goquery.Document, profile storefront.Profile) (candidates []catalog.RawCandidate, dropped int) {
	candidates = []catalog.RawCandidate{}
	if doc == nil {
		return candidates, 0
	}

	doc.Find(profile.AnchorSelector).Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		productUrl := catalog.ResolveURL(profile.Origin, href)
		if !profile.IsProductURL(productUrl) {
			return
		}

		card := cardOf(anchor, profile.CardSelector)

		var image, alt string
		img := pickImage(card, profile)
		if img != nil {
			image = catalog.ResolveURL(profile.Origin, imageSource(img))
			alt, _ = img.Attr("alt")
		}
		if profile.RequireImage && image == "" {
			dropped++
			return
		}

		candidates = append(candidates, catalog.RawCandidate{
			URL:    productUrl,
			Image:  image,
			Title:  titleOf(card, anchor, alt, profile),
			Price:  priceOf(card, profile),
			Source: profile.Source,
		})
	})

	return candidates, dropped
}

func cardOf(anchor *goquery.Selection, selector string) *goquery.Selection {
	if selector == "" {
		return anchor
	}
	card := anchor.Closest(selector)
	if card.Length() == 0 {
		return anchor
	}
	return card
}

// pickImage prefers the first image served from the storefront's own asset hosts, icons and
// avatars from elsewhere tend to come first in a card.
func pickImage(card *goquery.Selection, profile storefront.Profile) *goquery.Selection {
	images := card.Find("img")
	if images.Length() == 0 {
		return nil
	}
	for i := range images.Nodes {
		img := images.Eq(i)
		src := catalog.ResolveURL(profile.Origin, imageSource(img))
		if profile.IsAssetURL(src) {
			return img
		}
	}
	return images.First()
}

// imageSource reads src, falling back to lazy-loading attributes when src is missing or a
// data: placeholder.
func imageSource(img *goquery.Selection) string {
	src := strings.TrimSpace(img.AttrOr("src", ""))
	if src != "" && !strings.HasPrefix(src, "data:") {
		return src
	}
	if dataSrc := strings.TrimSpace(img.AttrOr("data-src", "")); dataSrc != "" {
		return dataSrc
	}
	if srcset := firstSrcset(img.AttrOr("srcset", "")); srcset != "" {
		return srcset
	}
	return src
}

func firstSrcset(srcset string) string {
	first, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func titleOf(card, anchor *goquery.Selection, alt string, profile storefront.Profile) string {
	heading := card.Find(profile.TitleSelectorOrDefault()).First()
	title := textutil.FirstNonEmpty(
		htmlutil.PlainText(htmlutil.VisibleText(heading)),
		htmlutil.PlainText(alt),
		htmlutil.PlainText(htmlutil.VisibleText(anchor)),
	)
	if title == "" {
		return catalog.DefaultTitle
	}
	return title
}

func priceOf(card *goquery.Selection, profile storefront.Profile) string {
	if profile.PriceSelector != "" {
		text := htmlutil.VisibleText(card.Find(profile.PriceSelector).First())
		if price := catalog.FormatPrice(text); price != "" {
			return price
		}
	}
	return catalog.GuessPrice(htmlutil.VisibleText(card))
}
