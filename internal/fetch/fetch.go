// Package fetch loads static pages over plain http.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"storefront-harvester/internal/assert"
	"storefront-harvester/internal/components/telemetry"
	"storefront-harvester/internal/scrapers/detail"
	"storefront-harvester/internal/storefront"
	"storefront-harvester/lib/restyutil"
	libtelemetry "storefront-harvester/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_fetch_document = "fetch.document"
	report_fetch_dump     = "fetch.dump"
)

type Options struct {
	UserAgent      string
	AcceptLanguage string
	// Timeout bounds a single page load, 0 uses DefaultTimeout.
	Timeout time.Duration
	// RequestsPerSecond paces requests, 0 or less disables pacing.
	RequestsPerSecond float64
	// Cloudflare wraps the transport with cloudflare's bot check bypass.
	Cloudflare bool
	// DumpDir keeps a copy of every response under the directory, empty disables it.
	DumpDir string
}

const DefaultTimeout = 30 * time.Second

func DefaultOptions() Options {
	return Options{
		UserAgent:         storefront.UserAgent,
		AcceptLanguage:    storefront.AcceptLanguage,
		Timeout:           DefaultTimeout,
		RequestsPerSecond: 2,
	}
}

type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts Options, tel telemetry.API) *Client {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("fetch", tel)

	httpClient := resty.New()
	if opts.Cloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	if opts.UserAgent != "" {
		httpClient.SetHeader("user-agent", opts.UserAgent)
	}
	if opts.AcceptLanguage != "" {
		httpClient.SetHeader("accept-language", opts.AcceptLanguage)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient.SetTimeout(timeout)

	if opts.RequestsPerSecond > 0 {
		// burst of 1 keeps consecutive requests spaced out
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)
	libtelemetry.InstrumentResty(httpClient, "harvester.fetch")

	if opts.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			tel.ReportWarning(report_fetch_dump, err, opts.DumpDir)
		} else {
			restyutil.Dump(httpClient, "fetch", output)
		}
	}

	return &Client{http: httpClient, tel: tel}
}

func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		c.tel.ReportWarning(report_fetch_document, err, url)
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	if res.IsError() {
		err := fmt.Errorf("get %s: unexpected status %s", url, res.Status())
		c.tel.ReportWarning(report_fetch_document, err)
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportWarning(report_fetch_document, fmt.Errorf("parse: %w", err), url)
		return nil, err
	}
	return doc, nil
}

func (c *Client) Close() error {
	c.http.GetClient().CloseIdleConnections()
	return nil
}

// Factory hands every run a fresh Client.
type Factory struct {
	opts Options
	tel  telemetry.API
}

func NewFactory(opts Options, tel telemetry.API) Factory {
	assert.NotNil(tel)
	return Factory{opts: opts, tel: tel}
}

func (f Factory) Open(ctx context.Context) (detail.PageSource, error) {
	return NewClient(f.opts, f.tel), nil
}
