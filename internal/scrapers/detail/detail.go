// Package detail visits product pages to replace the rough listing guesses with what the
// product page itself advertises.
package detail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-harvester/internal/assert"
	"storefront-harvester/internal/catalog"
	"storefront-harvester/internal/components/telemetry"
	"storefront-harvester/lib/htmlutil"
	"storefront-harvester/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_detail_fetch = "detail.fetch"
	report_detail_parse = "detail.parse"
)

// PageSource loads pages as parsed documents, it is owned by a single run and closed at the
// end of it.
type PageSource interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
	Close() error
}

type Detail struct {
	Title string
	Image string
	Price string
}

var errNoDocument = errors.New("document has no html root")

// Parse reads a product page's social preview metadata: og:title (or the first h1) for the
// title, og:image (or twitter:image) for the image and the first "$" amount in the page text
// for the price.
func Parse(doc *goquery.Document, origin string) (Detail, error) {
	if doc == nil || doc.Find("html").Length() == 0 {
		return Detail{}, errNoDocument
	}

	title := textutil.FirstNonEmpty(
		htmlutil.PlainText(doc.Find(`meta[property="og:title"]`).First().AttrOr("content", "")),
		htmlutil.PlainText(htmlutil.VisibleText(doc.Find("h1").First())),
	)
	if title == "" {
		title = catalog.DefaultTitle
	}

	image := textutil.FirstNonEmpty(
		doc.Find(`meta[property="og:image"]`).First().AttrOr("content", ""),
		doc.Find(`meta[name="twitter:image"]`).First().AttrOr("content", ""),
	)

	return Detail{
		Title: title,
		Image: catalog.ResolveURL(origin, image),
		Price: catalog.DollarPrice(htmlutil.VisibleText(doc.Find("body"))),
	}, nil
}

const DefaultPause = 1200 * time.Millisecond

type Enricher struct {
	source PageSource
	origin string
	pause  time.Duration
	tel    telemetry.API
}

func NewEnricher(source PageSource, origin string, pause time.Duration, tel telemetry.API) Enricher {
	assert.NotNil(source)
	assert.NotNil(tel)

	if pause < 0 {
		pause = DefaultPause
	}

	return Enricher{
		source: source,
		origin: origin,
		pause:  pause,
		tel:    tel,
	}
}

// Enrich visits each candidate's page one at a time, waiting for the pause between visits,
// and returns the candidates whose page could be read with title, image and price replaced.
// A candidate whose page fails in any way is left out, there is no fallback to the listing
// guess and no retry. It stops once `want` candidates were enriched (want <= 0 visits every
// candidate).
//
// The returned error joins every skipped candidate's failure, the slice is valid regardless.
func (e Enricher) Enrich(ctx context.Context, candidates []catalog.RawCandidate, want int) ([]catalog.RawCandidate, error) {
	enriched := make([]catalog.RawCandidate, 0, len(candidates))
	var errs []error

	for i, c := range candidates {
		if want > 0 && len(enriched) >= want {
			break
		}
		if i > 0 {
			err := sleep(ctx, e.pause)
			if err != nil {
				errs = append(errs, err)
				break
			}
		}

		doc, err := e.source.Document(ctx, c.URL)
		if err != nil {
			e.tel.ReportWarning(report_detail_fetch, err, c.URL)
			errs = append(errs, fmt.Errorf("fetch %s: %w", c.URL, err))
			continue
		}
		d, err := Parse(doc, e.origin)
		if err != nil {
			e.tel.ReportWarning(report_detail_parse, err, c.URL)
			errs = append(errs, fmt.Errorf("parse %s: %w", c.URL, err))
			continue
		}

		e.tel.ReportDebug("enriched product", c.URL, d.Title)
		c.Title = d.Title
		c.Image = d.Image
		c.Price = d.Price
		enriched = append(enriched, c)
	}

	return enriched, errors.Join(errs...)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
