// Package pipeline runs a single harvest of a storefront: listing scan, optional detail
// enrichment, normalization and snapshot building.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-harvester/internal/assert"
	"storefront-harvester/internal/catalog"
	"storefront-harvester/internal/components/chrono"
	"storefront-harvester/internal/components/telemetry"
	"storefront-harvester/internal/scrapers/detail"
	"storefront-harvester/internal/scrapers/listing"
	"storefront-harvester/internal/storefront"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrSourceUnavailable means the listing could not be read at all, the run yields no items.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrItemExtraction means a single product page could not be read, the product is left out.
	ErrItemExtraction = errors.New("item extraction failed")
	// ErrMalformedCandidate means a product anchor lacked a required field and was dropped.
	ErrMalformedCandidate = errors.New("malformed candidate")
)

const (
	report_source_open     = "source.open"
	report_source_close    = "source.close"
	report_listing_fetch   = "listing.fetch"
	report_listing_scan    = "listing.scan"
	report_detail_enrich   = "detail.enrich"
	report_pipeline_panic  = "pipeline.panic"
	report_pipeline_output = "pipeline.output"
)

var tracer = otel.Tracer("harvester.pipeline")

var meter = otel.Meter("harvester.pipeline")
var itemsGauge, _ = meter.Int64Gauge("harvest.items", metric.WithDescription("items in the latest snapshot"))
var runsCounter, _ = meter.Int64Counter("harvest.runs", metric.WithDescription("completed harvests"))

// SourceFactory opens the page source a single run reads every page through. The run closes
// it before returning.
type SourceFactory interface {
	Open(ctx context.Context) (detail.PageSource, error)
}

type Options struct {
	// Target is the storefront's username or slug, empty uses the profile's default.
	Target string
	Limit  int
	Enrich bool
	// Pause separates detail page visits.
	Pause time.Duration
}

func DefaultOptions(profile storefront.Profile) Options {
	return Options{
		Target: profile.DefaultTarget,
		Limit:  profile.DefaultLimit,
		Enrich: profile.Enrich,
		Pause:  detail.DefaultPause,
	}
}

type Pipeline struct {
	profile storefront.Profile
	factory SourceFactory
	time    chrono.TimeAPI
	tel     telemetry.API
}

func NewPipeline(
	profile storefront.Profile,
	factory SourceFactory,
	time chrono.TimeAPI,
	tel telemetry.API,
) Pipeline {
	assert.NotEmptyStr(profile.Name)
	assert.NotNil(factory)
	assert.NotNil(time)
	assert.NotNil(tel)

	return Pipeline{
		profile: profile,
		factory: factory,
		time:    time,
		tel:     telemetry.NewScopedAPI(profile.Name, tel),
	}
}

func (p Pipeline) Profile() storefront.Profile {
	return p.profile
}

// Run harvests the storefront once. The returned snapshot is always valid, when something
// went wrong it holds whatever could still be extracted (possibly nothing) and the error
// explains what was lost. Callers are expected to persist the snapshot either way.
func (p Pipeline) Run(ctx context.Context, opts Options) (catalog.Snapshot, error) {
	target := opts.Target
	if target == "" {
		target = p.profile.DefaultTarget
	}
	limit := catalog.ClampLimit(opts.Limit, p.profile.MinLimit, p.profile.MaxLimit)
	listingUrl := p.profile.ListingURL(target)

	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("storefront", p.profile.Name),
		attribute.String("listing_url", listingUrl),
		attribute.Int("limit", limit),
	)

	products, err := p.harvest(ctx, listingUrl, limit, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	snapshot := catalog.NewSnapshot(p.time.Now(), products)

	attrs := metric.WithAttributes(
		attribute.String("storefront", p.profile.Name),
		attribute.Bool("active", snapshot.Active),
	)
	itemsGauge.Record(ctx, int64(len(snapshot.Items)), attrs)
	runsCounter.Add(ctx, 1, attrs)
	p.tel.ReportCount(report_pipeline_output, int64(len(snapshot.Items)))

	return snapshot, err
}

func (p Pipeline) harvest(ctx context.Context, listingUrl string, limit int, opts Options) (products []catalog.Product, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrSourceUnavailable, r)
			p.tel.ReportBroken(report_pipeline_panic, err, listingUrl)
			products = nil
		}
	}()

	source, err := p.factory.Open(ctx)
	if err != nil {
		p.tel.ReportBroken(report_source_open, err)
		return nil, fmt.Errorf("%w: open: %w", ErrSourceUnavailable, err)
	}
	defer func() {
		closeErr := source.Close()
		if closeErr != nil {
			p.tel.ReportWarning(report_source_close, closeErr)
		}
	}()

	doc, err := p.fetchListing(ctx, source, listingUrl)
	if err != nil {
		p.tel.ReportBroken(report_listing_fetch, err, listingUrl)
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	candidates, dropped := listing.ScanCounted(doc, p.profile)
	if dropped > 0 {
		p.tel.ReportDebug(
			"dropped candidates",
			fmt.Errorf("%w: %d missing a required field", ErrMalformedCandidate, dropped),
		)
	}
	candidates = catalog.Dedupe(candidates, p.profile.Origin)
	p.tel.ReportCount(report_listing_scan, int64(len(candidates)))

	var errs []error
	if opts.Enrich {
		enriched, enrichErr := p.enrich(ctx, source, candidates, limit, opts.Pause)
		if enrichErr != nil {
			p.tel.ReportWarning(report_detail_enrich, enrichErr)
			errs = append(errs, fmt.Errorf("%w: %w", ErrItemExtraction, enrichErr))
		}
		candidates = enriched
	}

	products = catalog.Normalize(candidates, catalog.Options{
		Origin:   p.profile.Origin,
		Limit:    limit,
		MinLimit: p.profile.MinLimit,
		MaxLimit: p.profile.MaxLimit,
		Source:   p.profile.Source,
	})
	return products, errors.Join(errs...)
}

func (p Pipeline) fetchListing(ctx context.Context, source detail.PageSource, listingUrl string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "FetchListing")
	defer span.End()

	doc, err := source.Document(ctx, listingUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return doc, nil
}

func (p Pipeline) enrich(ctx context.Context, source detail.PageSource, candidates []catalog.RawCandidate, limit int, pause time.Duration) ([]catalog.RawCandidate, error) {
	ctx, span := tracer.Start(ctx, "Enrich")
	defer span.End()
	span.SetAttributes(attribute.Int("candidates", len(candidates)))

	enricher := detail.NewEnricher(source, p.profile.Origin, pause, p.tel)
	enriched, err := enricher.Enrich(ctx, candidates, limit)
	span.SetAttributes(attribute.Int("enriched", len(enriched)))
	if err != nil {
		span.RecordError(err)
	}
	return enriched, err
}
