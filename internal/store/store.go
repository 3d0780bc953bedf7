package store

import (
	"errors"

	"TrendRadar/internal/model"
)

// ErrNotFound is returned when no cached batch exists for a market and unit.
var ErrNotFound = errors.New("no cached candles")

// Cache persists raw candle batches so a failed fetch can fall back to the last good data.
// A save replaces the previous batch; loads never join separate fetch windows.
type Cache interface {
	SaveBatch(market string, unit int, batch model.RawBatch) error
	LoadBatch(market string, unit, limit int) (model.RawBatch, error)
	Close() error
}
