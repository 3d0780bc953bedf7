package main

import (
	"log"

	"TrendRadar/internal/collector"
	"TrendRadar/internal/config"
	"TrendRadar/internal/store"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	if cfg.DataSource.Mock {
		return &collector.MockFetcher{
			Markets: []string{"KRW-BTC", "KRW-ETH", "KRW-XRP", "KRW-SOL", "KRW-DOGE", "KRW-ADA"},
		}
	}
	return collector.NewUpbitFetcher(cfg.DataSource.BaseURL, cfg.Proxy, cfg.DataSource.Timeout)
}

// newCache opens the SQLite candle cache, falling back to no caching.
func newCache(cfg *config.Config) store.Cache {
	if cfg.Database.SQLitePath == "" {
		return store.NewNoopCache()
	}
	c, err := store.NewSQLiteCache(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite cache failed, using noop: %v", err)
		return store.NewNoopCache()
	}
	return c
}

func newCollector(cfg *config.Config, cache store.Cache) *collector.Collector {
	fetcher := newFetcher(cfg)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	ds := cfg.DataSource
	return collector.NewCollector(fetcher, cache, ds.QuotePrefix, ds.Unit, ds.Count, ds.TopN, ds.RequestInterval)
}
