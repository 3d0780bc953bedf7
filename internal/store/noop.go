package store

import "TrendRadar/internal/model"

// NoopCache is a no-op implementation used when SQLite is not configured.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (n *NoopCache) SaveBatch(_ string, _ int, _ model.RawBatch) error   { return nil }
func (n *NoopCache) LoadBatch(_ string, _, _ int) (model.RawBatch, error) { return nil, ErrNotFound }
func (n *NoopCache) Close() error                                        { return nil }
