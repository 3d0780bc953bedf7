package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"TrendRadar/internal/model"
)

// DefaultUpbitURL is the public REST endpoint of the Upbit quotation API.
const DefaultUpbitURL = "https://api.upbit.com/v1"

// maxCandleCount is the largest page the candle endpoints accept.
const maxCandleCount = 200

var minuteUnits = map[int]bool{1: true, 3: true, 5: true, 10: true, 15: true, 30: true, 60: true, 240: true}

// ValidMinuteUnit reports whether unit is a minute-candle unit the exchange serves.
func ValidMinuteUnit(unit int) bool { return minuteUnits[unit] }

// UpbitFetcher implements Fetcher using the Upbit public quotation API.
type UpbitFetcher struct {
	BaseURL string
	Client  *http.Client

	mu        sync.Mutex
	remaining string
}

// NewUpbitFetcher creates a new fetcher with optional proxy support.
func NewUpbitFetcher(baseURL, proxyURL string, timeout time.Duration) *UpbitFetcher {
	if baseURL == "" {
		baseURL = DefaultUpbitURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &UpbitFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *UpbitFetcher) Name() string { return "upbit" }

// Remaining returns the last Remaining-Req header seen, e.g. "group=candles; min=599; sec=9".
func (f *UpbitFetcher) Remaining() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remaining
}

func (f *UpbitFetcher) FetchMarkets(ctx context.Context) ([]MarketInfo, error) {
	endpoint := fmt.Sprintf("%s/market/all?isDetails=false", f.BaseURL)
	var markets []MarketInfo
	if err := f.getJSON(ctx, endpoint, &markets); err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}
	return markets, nil
}

func (f *UpbitFetcher) FetchMinuteCandles(ctx context.Context, unit int, market string, count int) (model.RawBatch, error) {
	if !ValidMinuteUnit(unit) {
		return nil, fmt.Errorf("fetch minute candles: unsupported unit %d", unit)
	}
	endpoint := fmt.Sprintf("%s/candles/minutes/%d?%s", f.BaseURL, unit, candleQuery(market, count))
	return f.fetchCandles(ctx, endpoint)
}

func (f *UpbitFetcher) FetchDayCandles(ctx context.Context, market string, count int) (model.RawBatch, error) {
	endpoint := fmt.Sprintf("%s/candles/days?%s", f.BaseURL, candleQuery(market, count))
	return f.fetchCandles(ctx, endpoint)
}

func candleQuery(market string, count int) string {
	if count <= 0 || count > maxCandleCount {
		count = maxCandleCount
	}
	q := url.Values{}
	q.Set("market", market)
	q.Set("count", strconv.Itoa(count))
	return q.Encode()
}

func (f *UpbitFetcher) fetchCandles(ctx context.Context, endpoint string) (model.RawBatch, error) {
	var batch model.RawBatch
	if err := f.getJSON(ctx, endpoint, &batch); err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	return batch, nil
}

func (f *UpbitFetcher) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if v := resp.Header.Get("Remaining-Req"); v != "" {
		f.mu.Lock()
		f.remaining = v
		f.mu.Unlock()
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
