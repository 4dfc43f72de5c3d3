// Package scraper implements the marketplace source workers on headless
// Chrome. Each supported site shares one fetch pipeline and differs only in
// its search URL, card selectors, and extraction script.
package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
	"github.com/UzMarketAI/scout-mvp/engine/fuse"
	"github.com/UzMarketAI/scout-mvp/pkg/fn"
)

// Source is the worker contract the orchestrator consumes: fetch raw
// listings for a structured query from one marketplace, or fail with a
// scraper-tier error.
type Source interface {
	Marketplace() domain.Marketplace
	Fetch(ctx context.Context, q domain.SearchQuery) ([]domain.Listing, error)
}

// Options is the shared browser configuration.
type Options struct {
	Headless   bool
	UserAgent  string
	MaxResults int
}

// site describes one marketplace's page structure.
type site struct {
	marketplace  domain.Marketplace
	baseURL      string
	searchFormat string // fmt-style with one %s for the escaped query
	waitSelector string
	settle       time.Duration
	extractionJS string
}

// Scraper drives headless Chrome against one site definition.
type Scraper struct {
	site   site
	opts   Options
	logger *slog.Logger
}

func newScraper(s site, opts Options, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 15
	}
	return &Scraper{site: s, opts: opts, logger: logger}
}

// Marketplace identifies the source for audit records.
func (s *Scraper) Marketplace() domain.Marketplace { return s.site.marketplace }

// cardData is the raw card shape produced by the extraction scripts.
type cardData struct {
	Title    string `json:"title"`
	PriceStr string `json:"price_str"`
	Href     string `json:"href"`
	Img      string `json:"img"`
}

// Fetch loads the site's search page for the query and extracts product
// cards. One retry on transient failure; a second failure surfaces as a
// typed scraper error.
func (s *Scraper) Fetch(ctx context.Context, q domain.SearchQuery) ([]domain.Listing, error) {
	searchURL := s.searchURL(q)
	s.logger.Info("scraping", "marketplace", s.site.marketplace, "url", searchURL)

	res := fn.Retry(ctx, fn.RetryOpts{MaxAttempts: 2, InitialWait: 2 * time.Second},
		func(ctx context.Context) fn.Result[[]cardData] {
			var cards []cardData
			if err := s.runBrowser(ctx, searchURL, &cards); err != nil {
				return fn.Err[[]cardData](err)
			}
			return fn.Ok(cards)
		})
	cards, err := res.Unwrap()
	if err != nil {
		return nil, s.classify(err)
	}

	listings := make([]domain.Listing, 0, len(cards))
	for _, c := range cards {
		l, ok := s.toListing(c)
		if !ok {
			continue
		}
		listings = append(listings, l)
		if len(listings) >= s.opts.MaxResults {
			break
		}
	}

	s.logger.Info("scraped", "marketplace", s.site.marketplace, "listings", len(listings))
	return listings, nil
}

// runBrowser executes one navigate-wait-extract cycle in a fresh browser.
func (s *Scraper) runBrowser(ctx context.Context, searchURL string, cards *[]cardData) error {
	flags := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if s.opts.UserAgent != "" {
		flags = append(flags, chromedp.UserAgent(s.opts.UserAgent))
	}
	if bin := findChromeBinary(); bin != "" {
		flags = append(flags, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, flags...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))
	defer cancelTab()

	return chromedp.Run(tabCtx,
		chromedp.Navigate(searchURL),
		chromedp.WaitVisible(s.site.waitSelector, chromedp.ByQuery),
		chromedp.Sleep(s.site.settle),
		chromedp.Evaluate(s.site.extractionJS, cards),
	)
}

// searchURL builds the site's search URL for the query's raw text.
func (s *Scraper) searchURL(q domain.SearchQuery) string {
	escaped := url.QueryEscape(q.RawQuery)
	return s.site.baseURL + strings.Replace(s.site.searchFormat, "%s", escaped, 1)
}

// toListing validates and normalizes one extracted card. Cards without a
// title or link are discarded.
func (s *Scraper) toListing(c cardData) (domain.Listing, bool) {
	title := strings.TrimSpace(c.Title)
	href := strings.TrimSpace(c.Href)
	if title == "" || href == "" {
		return domain.Listing{}, false
	}
	if strings.HasPrefix(href, "/") {
		href = s.site.baseURL + href
	}

	l := domain.Listing{
		Marketplace: s.site.marketplace,
		Title:       title,
		PriceStr:    strings.TrimSpace(c.PriceStr),
		URL:         href,
		ImageURL:    strings.TrimSpace(c.Img),
	}
	if p, ok := fuse.ParsePrice(l.PriceStr); ok {
		l.Price = p
	}
	return l, true
}

// classify maps a browser failure onto the scraper error tier.
func (s *Scraper) classify(err error) error {
	source := string(s.site.marketplace)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.E(domain.CodeUnavailable, "source timed out").
			With("marketplace", source).Wrap(err)
	case errors.Is(err, context.Canceled):
		return domain.E(domain.CodeNavigation, "scrape cancelled").
			With("marketplace", source).Wrap(err)
	case strings.Contains(err.Error(), "encountered an undefined value"),
		strings.Contains(err.Error(), "could not unmarshal"):
		return domain.E(domain.CodeExtraction, "card extraction failed").
			With("marketplace", source).Wrap(err)
	default:
		return domain.E(domain.CodeNavigation, "page load failed").
			With("marketplace", source).Wrap(err)
	}
}
