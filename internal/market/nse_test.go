package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const nseHistoricalFixture = `{"data":[
	{"CH_TIMESTAMP":"2025-06-04","CH_OPENING_PRICE":101,"CH_TRADE_HIGH_PRICE":104,"CH_TRADE_LOW_PRICE":100,"CH_CLOSING_PRICE":103,"CH_TOT_TRADED_QTY":120000},
	{"CH_TIMESTAMP":"2025-06-02","CH_OPENING_PRICE":99,"CH_TRADE_HIGH_PRICE":101,"CH_TRADE_LOW_PRICE":98,"CH_CLOSING_PRICE":100,"CH_TOT_TRADED_QTY":100000},
	{"CH_TIMESTAMP":"2025-06-03","CH_OPENING_PRICE":100,"CH_TRADE_HIGH_PRICE":102,"CH_TRADE_LOW_PRICE":99,"CH_CLOSING_PRICE":101,"CH_TOT_TRADED_QTY":110000}
]}`

const nseIndexFixture = `{"data":[{"lastPrice":22500.50,"previousClose":22400.00}]}`

func newNSEServer(t *testing.T, warmups *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			if warmups != nil {
				*warmups++
			}
			http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "abc"})
			w.WriteHeader(http.StatusOK)
		case "/api/historical/cm/equity":
			if r.URL.Query().Get("symbol") != "RELIANCE" {
				t.Errorf("unexpected symbol %q", r.URL.Query().Get("symbol"))
			}
			w.Write([]byte(nseHistoricalFixture))
		case "/api/index-equities":
			if r.URL.Query().Get("index") != "NIFTY 50" {
				t.Errorf("unexpected index %q", r.URL.Query().Get("index"))
			}
			w.Write([]byte(nseIndexFixture))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestNSEFetchSeries(t *testing.T) {
	warmups := 0
	srv := newNSEServer(t, &warmups)
	defer srv.Close()

	f := NewNSEFetcher(srv.URL, 5*time.Second)
	series, err := f.FetchSeries(context.Background(), "RELIANCE", 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warmups != 1 {
		t.Errorf("expected one warm-up request, got %d", warmups)
	}
	if len(series.Bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(series.Bars))
	}
	for i := 1; i < len(series.Bars); i++ {
		if !series.Bars[i].Date.After(series.Bars[i-1].Date) {
			t.Fatalf("bars not in chronological order at %d", i)
		}
	}
	first, last := series.Bars[0], series.Bars[2]
	if first.Close != 100 || first.Volume != 100000 {
		t.Errorf("unexpected first bar %+v", first)
	}
	if last.Close != 103 || last.High != 104 {
		t.Errorf("unexpected last bar %+v", last)
	}
}

func TestNSEFetchIndex(t *testing.T) {
	srv := newNSEServer(t, nil)
	defer srv.Close()

	f := NewNSEFetcher(srv.URL, 5*time.Second)
	quote, err := f.FetchIndex(context.Background(), "NIFTY 50", "^NSEI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Level != 22500.50 {
		t.Errorf("expected level 22500.50, got %.2f", quote.Level)
	}
	want := (22500.50 - 22400.00) / 22400.00 * 100
	if diff := quote.ChangePct - want; diff > 0.0001 || diff < -0.0001 {
		t.Errorf("expected change %.4f, got %.4f", want, quote.ChangePct)
	}
}

func TestNSEFetchIndex_UnmappedSymbol(t *testing.T) {
	srv := newNSEServer(t, nil)
	defer srv.Close()

	f := NewNSEFetcher(srv.URL, 5*time.Second)
	if _, err := f.FetchIndex(context.Background(), "NIFTY SMALLCAP 250", "^CNXSC"); err == nil {
		t.Fatal("expected an error for an index the provider cannot serve")
	}
}

func TestNSEFetchSeries_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	f := NewNSEFetcher(srv.URL, 50*time.Millisecond)
	_, err := f.FetchSeries(context.Background(), "RELIANCE", 120)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsTimeout(err) {
		t.Errorf("expected a timeout classification, got %v", err)
	}
}

func TestNSEFetchSeries_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewNSEFetcher(srv.URL, 5*time.Second)
	_, err := f.FetchSeries(context.Background(), "RELIANCE", 120)
	if err == nil {
		t.Fatal("expected an error")
	}
	if IsTimeout(err) {
		t.Error("a 403 must not be classified as a timeout")
	}
}

func TestNSEFetchSeries_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	f := NewNSEFetcher(srv.URL, 5*time.Second)
	if _, err := f.FetchSeries(context.Background(), "RELIANCE", 120); err == nil {
		t.Fatal("expected an error for an empty response")
	}
}
