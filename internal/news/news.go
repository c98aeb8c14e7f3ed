package news

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"stockpulse/internal/config"
	"stockpulse/internal/model"
)

// Fetcher pulls per-ticker headlines from a Google News style RSS search
// feed. Headlines are garnish on the report, so every failure degrades to
// an empty list instead of surfacing an error.
type Fetcher struct {
	cfg     config.NewsConfig
	parser  *gofeed.Parser
	limiter *rate.Limiter
}

// NewFetcher creates a fetcher honoring cfg.
func NewFetcher(cfg config.NewsConfig) *Fetcher {
	p := gofeed.NewParser()
	p.UserAgent = "Mozilla/5.0"
	return &Fetcher{
		cfg:     cfg,
		parser:  p,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// Headlines returns up to MaxPerTicker relevant items for each ticker.
func (f *Fetcher) Headlines(ctx context.Context, tickers []string) map[string][]model.Headline {
	out := make(map[string][]model.Headline, len(tickers))
	if f.cfg.Disabled {
		return out
	}
	for _, ticker := range tickers {
		items, err := f.forTicker(ctx, ticker)
		if err != nil {
			log.Printf("[WARN] news fetch failed for %s: %v", ticker, err)
			items = nil
		}
		out[ticker] = items
	}
	return out
}

func (f *Fetcher) forTicker(ctx context.Context, ticker string) ([]model.Headline, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	feedURL := fmt.Sprintf(f.cfg.FeedURL, url.QueryEscape(ticker))
	tctx, cancel := context.WithTimeout(ctx, time.Duration(f.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(feedURL, tctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -f.cfg.MaxAgeDays)
	terms := f.searchTerms(ticker)
	var items []model.Headline
	for i, entry := range feed.Items {
		if i >= f.cfg.ScanLimit {
			break
		}
		if !titleMatches(entry.Title, terms) {
			continue
		}
		if f.cfg.MaxAgeDays > 0 && entry.PublishedParsed != nil && entry.PublishedParsed.Before(cutoff) {
			continue
		}
		items = append(items, model.Headline{
			Title:     entry.Title,
			URL:       cleanRedirect(entry.Link),
			Published: entry.Published,
		})
		if len(items) >= f.cfg.MaxPerTicker {
			break
		}
	}
	return items, nil
}

// searchTerms returns the ticker plus any configured aliases, so titles
// naming "HDFC Bank" still match HDFCBANK.
func (f *Fetcher) searchTerms(ticker string) []string {
	return append([]string{ticker}, f.cfg.Aliases[ticker]...)
}

func titleMatches(title string, terms []string) bool {
	lower := strings.ToLower(title)
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

var redirectPattern = regexp.MustCompile(`url=(https?://[^&]+)`)

// cleanRedirect strips the Google News redirect wrapper when present.
func cleanRedirect(link string) string {
	if m := redirectPattern.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return link
}
