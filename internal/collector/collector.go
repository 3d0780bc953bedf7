package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"TrendRadar/internal/model"
	"TrendRadar/internal/store"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Markets []string
	Bars    int
	// Batches overrides the generated minute candles per market.
	Batches map[string]model.RawBatch
	// Errors makes minute-candle fetches fail for the given markets.
	Errors map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchMarkets(_ context.Context) ([]MarketInfo, error) {
	out := make([]MarketInfo, len(m.Markets))
	for i, mk := range m.Markets {
		out[i] = MarketInfo{Market: mk, EnglishName: mk}
	}
	return out, nil
}

func (m *MockFetcher) FetchMinuteCandles(_ context.Context, unit int, market string, count int) (model.RawBatch, error) {
	if err, ok := m.Errors[market]; ok {
		return nil, err
	}
	if b, ok := m.Batches[market]; ok {
		return b, nil
	}
	if m.Bars > 0 && m.Bars < count {
		count = m.Bars
	}
	return generateMockBatch(market, count, time.Duration(unit)*time.Minute), nil
}

func (m *MockFetcher) FetchDayCandles(_ context.Context, market string, count int) (model.RawBatch, error) {
	return generateMockBatch(market, count, 24*time.Hour), nil
}

// generateMockBatch returns newest-first candles whose drift and trade value depend on the market name.
func generateMockBatch(market string, count int, step time.Duration) model.RawBatch {
	h := fnv.New32a()
	h.Write([]byte(market))
	seed := float64(h.Sum32() % 1000)
	base := 100 + seed
	drift := (seed - 500) / 500 * 0.002

	end := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	batch := make(model.RawBatch, 0, count)
	for i := 0; i < count; i++ {
		age := float64(i)
		p := base * (1 - drift*age) * (1 + 0.01*math.Sin(age/3))
		o, hi, lo, cl := p*0.999, p*1.005, p*0.995, p
		volume := 1000 + seed
		value := volume * p
		t := end.Add(-time.Duration(i) * step)
		batch = append(batch, model.RawCandle{
			Market:    market,
			UTC:       t.Format("2006-01-02T15:04:05"),
			KST:       t.Add(9 * time.Hour).Format("2006-01-02T15:04:05"),
			Open:      &o,
			High:      &hi,
			Low:       &lo,
			Close:     &cl,
			Timestamp: t.UnixMilli(),
			Value:     &value,
			Volume:    &volume,
		})
	}
	return batch
}

// Collection is the set of candle batches gathered for one scan.
type Collection struct {
	Batches map[string]model.RawBatch
	// Failed lists markets omitted because no batch could be delivered.
	Failed []model.Skipped
	// Cached lists markets served from the cache after a failed fetch.
	Cached []string
}

// Collector selects the most traded markets and fetches their candles.
type Collector struct {
	Fetcher     Fetcher
	Cache       store.Cache
	QuotePrefix string
	Unit        int
	Count       int
	TopN        int
	// Interval paces consecutive requests to stay under the exchange rate limit.
	Interval time.Duration
}

// NewCollector creates a new Collector. A nil cache disables caching.
func NewCollector(fetcher Fetcher, cache store.Cache, quotePrefix string, unit, count, topN int, interval time.Duration) *Collector {
	if cache == nil {
		cache = store.NewNoopCache()
	}
	return &Collector{
		Fetcher:     fetcher,
		Cache:       cache,
		QuotePrefix: quotePrefix,
		Unit:        unit,
		Count:       count,
		TopN:        topN,
		Interval:    interval,
	}
}

// Collect fetches minute candles for the top markets by latest daily trade value.
// A market that cannot deliver a batch is omitted; only listing failures abort the scan.
func (c *Collector) Collect(ctx context.Context) (*Collection, error) {
	markets, err := c.SelectMarkets(ctx)
	if err != nil {
		return nil, err
	}

	col := &Collection{Batches: make(map[string]model.RawBatch, len(markets))}
	for _, mk := range markets {
		if err := c.pause(ctx); err != nil {
			return nil, err
		}
		batch, err := c.Fetcher.FetchMinuteCandles(ctx, c.Unit, mk, c.Count)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if cached, cerr := c.Cache.LoadBatch(mk, c.Unit, c.Count); cerr == nil && len(cached) > 0 {
				log.Printf("[WARN] fetch %s failed, using %d cached candles: %v", mk, len(cached), err)
				col.Batches[mk] = cached
				col.Cached = append(col.Cached, mk)
				continue
			}
			log.Printf("[WARN] fetch %s failed, omitting: %v", mk, err)
			col.Failed = append(col.Failed, model.Skipped{Market: mk, Reason: err.Error()})
			continue
		}
		col.Batches[mk] = batch
		if len(batch) == 0 {
			continue // keep the last good window
		}
		if err := c.Cache.SaveBatch(mk, c.Unit, batch); err != nil {
			log.Printf("[WARN] cache %s: %v", mk, err)
		}
	}
	return col, nil
}

// SelectMarkets lists markets with the quote prefix and keeps the TopN by latest daily trade value.
func (c *Collector) SelectMarkets(ctx context.Context) ([]string, error) {
	infos, err := c.Fetcher.FetchMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}

	type ranked struct {
		market string
		value  float64
	}
	var rows []ranked
	for _, info := range infos {
		if !strings.HasPrefix(info.Market, c.QuotePrefix) {
			continue
		}
		if err := c.pause(ctx); err != nil {
			return nil, err
		}
		raw, err := c.Fetcher.FetchDayCandles(ctx, info.Market, 2)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[WARN] daily candles %s: %v", info.Market, err)
			continue
		}
		series, err := model.NewCandleSeries(raw)
		if err != nil {
			log.Printf("[WARN] daily candles %s: %v", info.Market, err)
			continue
		}
		rows = append(rows, ranked{market: info.Market, value: series.Last().Value})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].value != rows[j].value {
			return rows[i].value > rows[j].value
		}
		return rows[i].market < rows[j].market
	})
	if c.TopN > 0 && len(rows) > c.TopN {
		rows = rows[:c.TopN]
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.market
	}
	return out, nil
}

func (c *Collector) pause(ctx context.Context) error {
	if c.Interval <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.Interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
