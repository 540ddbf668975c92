package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// MetricsRecorder receives routing outcomes
type MetricsRecorder interface {
	ObserveListing(outcome string)
	ObserveCacheLookup(hit bool)
	SetProductsLoaded(n int)
}

// Routing outcomes reported to MetricsRecorder
const (
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
)
