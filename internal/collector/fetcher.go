package collector

import (
	"context"

	"TrendRadar/internal/model"
)

// MarketInfo is one tradable pair listed by the exchange.
type MarketInfo struct {
	Market      string `json:"market"`
	KoreanName  string `json:"korean_name"`
	EnglishName string `json:"english_name"`
}

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchMarkets(ctx context.Context) ([]MarketInfo, error)
	FetchMinuteCandles(ctx context.Context, unit int, market string, count int) (model.RawBatch, error)
	FetchDayCandles(ctx context.Context, market string, count int) (model.RawBatch, error)
	Name() string
}
