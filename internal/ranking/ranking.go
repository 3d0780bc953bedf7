// Package ranking runs the signal engine over many instruments and orders the results.
package ranking

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"TrendRadar/internal/model"
	"TrendRadar/internal/strategy"
)

// Item is the outcome of analysing one instrument: exactly one of Result or Skip is set.
type Item struct {
	Market string
	Result *model.RankedResult
	Skip   *model.Skipped
}

// Ranking is the sorted output of Rank.
type Ranking struct {
	Results []model.RankedResult
	Skipped []model.Skipped
}

type options struct {
	workers int
}

// Option configures Rank.
type Option func(*options)

// WithWorkers bounds the number of instruments analysed concurrently. n <= 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// Rank analyses every batch independently and returns results sorted by score descending,
// ties broken by identifier ascending. A malformed batch only drops its own instrument.
func Rank(batches map[string]model.RawBatch, p strategy.Params, opts ...Option) (*Ranking, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	markets := make([]string, 0, len(batches))
	for m := range batches {
		markets = append(markets, m)
	}
	sort.Strings(markets)

	items := make([]Item, len(markets))
	var g errgroup.Group
	g.SetLimit(o.workers)
	for i, m := range markets {
		i, m := i, m
		g.Go(func() error {
			items[i] = Analyze(m, batches[m], p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return gather(items), nil
}

// Analyze runs the engine for a single instrument and never returns an error: failures
// become a skipped item.
func Analyze(market string, batch model.RawBatch, p strategy.Params) Item {
	series, err := model.NewCandleSeries(batch)
	if err != nil {
		return Item{Market: market, Skip: &model.Skipped{Market: market, Reason: err.Error()}}
	}
	res, err := strategy.Evaluate(market, series, p)
	if err != nil {
		return Item{Market: market, Skip: &model.Skipped{Market: market, Reason: err.Error()}}
	}
	return Item{Market: market, Result: res}
}

func gather(items []Item) *Ranking {
	r := &Ranking{
		Results: make([]model.RankedResult, 0, len(items)),
		Skipped: []model.Skipped{},
	}
	for _, it := range items {
		switch {
		case it.Result != nil:
			r.Results = append(r.Results, *it.Result)
		case it.Skip != nil:
			r.Skipped = append(r.Skipped, *it.Skip)
		}
	}
	SortResults(r.Results)
	SortSkipped(r.Skipped)
	return r
}

// SortResults orders results by score descending, then identifier ascending.
func SortResults(results []model.RankedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Market < results[j].Market
	})
}

// SortSkipped orders skipped instruments by identifier.
func SortSkipped(skipped []model.Skipped) {
	sort.SliceStable(skipped, func(i, j int) bool { return skipped[i].Market < skipped[j].Market })
}

// BuySignals returns the ranked results whose latest signal is BUY, in ranking order.
func (r *Ranking) BuySignals() []model.RankedResult {
	return Filter(r.Results, model.SignalBuy)
}

// Top returns at most n leading results.
func (r *Ranking) Top(n int) []model.RankedResult {
	if n < 0 || n > len(r.Results) {
		n = len(r.Results)
	}
	return r.Results[:n]
}

// Filter keeps results with the given signal, preserving order.
func Filter(results []model.RankedResult, sig model.Signal) []model.RankedResult {
	out := []model.RankedResult{}
	for _, res := range results {
		if res.Signal == sig {
			out = append(out, res)
		}
	}
	return out
}
