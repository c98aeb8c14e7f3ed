package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"stockpulse/internal/model"
)

// NSE rejects cookieless API calls, so every session starts with a
// warm-up request against the home page and re-warms when the cookies
// go stale.
const nseWarmTTL = 5 * time.Minute

// NSEFetcher implements Fetcher using the NSE India public API.
type NSEFetcher struct {
	BaseURL string
	Client  *http.Client

	limiter *rate.Limiter

	mu       sync.Mutex
	warmedAt time.Time
}

// NewNSEFetcher creates a fetcher with a cookie-keeping client.
func NewNSEFetcher(baseURL string, timeout time.Duration) *NSEFetcher {
	jar, _ := cookiejar.New(nil)
	return &NSEFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		limiter: rate.NewLimiter(rate.Every(400*time.Millisecond), 1),
	}
}

func (f *NSEFetcher) Name() string { return "nse" }

// nseBar is one row of the NSE historical equity response.
type nseBar struct {
	Timestamp string  `json:"CH_TIMESTAMP"`
	Open      float64 `json:"CH_OPENING_PRICE"`
	High      float64 `json:"CH_TRADE_HIGH_PRICE"`
	Low       float64 `json:"CH_TRADE_LOW_PRICE"`
	Close     float64 `json:"CH_CLOSING_PRICE"`
	Volume    float64 `json:"CH_TOT_TRADED_QTY"`
}

func (f *NSEFetcher) FetchSeries(ctx context.Context, ticker string, lookbackDays int) (*model.PriceSeries, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -lookbackDays)
	endpoint := fmt.Sprintf("%s/api/historical/cm/equity?symbol=%s&series=[%%22EQ%%22]&from=%s&to=%s",
		f.BaseURL, url.QueryEscape(ticker), from.Format("02-01-2006"), to.Format("02-01-2006"))

	body, err := f.get(ctx, endpoint)
	if err != nil {
		return nil, wrapErr(f.Name(), "fetch bars for "+ticker, err)
	}

	var payload struct {
		Data []nseBar `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, wrapErr(f.Name(), "decode bars for "+ticker, err)
	}
	if len(payload.Data) == 0 {
		return nil, wrapErr(f.Name(), "fetch bars for "+ticker, fmt.Errorf("no data returned"))
	}

	bars := make([]model.OHLCV, 0, len(payload.Data))
	for _, row := range payload.Data {
		day, err := time.Parse("2006-01-02", row.Timestamp)
		if err != nil {
			return nil, wrapErr(f.Name(), "decode bars for "+ticker,
				fmt.Errorf("bad bar date %q: %w", row.Timestamp, err))
		}
		bars = append(bars, model.OHLCV{
			Date:   day,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}
	// NSE returns newest first; callers expect chronological order.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	return &model.PriceSeries{Ticker: ticker, Bars: bars, FetchedAt: time.Now()}, nil
}

// nseIndexNames translates the ticker-style index symbols used in config
// into the names the NSE index API expects. Indices without a mapping are
// not served by this provider.
var nseIndexNames = map[string]string{
	"^NSEI":    "NIFTY 50",
	"^NSEBANK": "NIFTY BANK",
}

func (f *NSEFetcher) FetchIndex(ctx context.Context, name, symbol string) (*model.IndexQuote, error) {
	indexName, ok := nseIndexNames[symbol]
	if !ok {
		return nil, wrapErr(f.Name(), "fetch index "+name, fmt.Errorf("no nse endpoint for symbol %q", symbol))
	}
	endpoint := fmt.Sprintf("%s/api/index-equities?index=%s", f.BaseURL, url.QueryEscape(indexName))
	body, err := f.get(ctx, endpoint)
	if err != nil {
		return nil, wrapErr(f.Name(), "fetch index "+name, err)
	}

	var payload struct {
		Data []struct {
			LastPrice     float64 `json:"lastPrice"`
			PreviousClose float64 `json:"previousClose"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, wrapErr(f.Name(), "decode index "+name, err)
	}
	if len(payload.Data) == 0 {
		return nil, wrapErr(f.Name(), "fetch index "+name, fmt.Errorf("no data returned"))
	}

	quote := &model.IndexQuote{Name: name, Level: payload.Data[0].LastPrice}
	if prev := payload.Data[0].PreviousClose; prev > 0 {
		quote.ChangePct = (quote.Level - prev) / prev * 100
	}
	return quote, nil
}

func (f *NSEFetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := f.warm(ctx); err != nil {
		return nil, fmt.Errorf("warm up session: %w", err)
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	browserHeaders(req)
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, snippet(body))
	}
	return body, nil
}

func (f *NSEFetcher) warm(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.warmedAt) < nseWarmTTL {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL, nil)
	if err != nil {
		return err
	}
	browserHeaders(req)
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	f.warmedAt = time.Now()
	return nil
}

func browserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
