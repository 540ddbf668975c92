package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/listmatch/backend/internal/domain"
)

// unmatchedIndex is cached for listings that no candidate accepted
const unmatchedIndex = -1

// ListingServiceConfig holds configuration for the listing service
type ListingServiceConfig struct {
	CacheTTL           time.Duration
	EnableDebugLogging bool
	Logger             *slog.Logger
}

// ListingService routes listings to the best catalog product.
// Flow: check cache -> score manufacturer bucket -> record match -> cache
type ListingService struct {
	catalog         *Catalog
	cache           domain.CacheRepository
	metrics         domain.MetricsRecorder
	matchingService *MatchingService
	cacheTTL        time.Duration
	keyPrefix       string
	logger          *slog.Logger

	matchedCount   atomic.Int64
	unmatchedCount atomic.Int64
}

// NewListingService creates a listing service over a fully loaded catalog.
// cache and metrics may be nil.
func NewListingService(
	catalog *Catalog,
	cache domain.CacheRepository,
	metrics domain.MetricsRecorder,
	config ListingServiceConfig,
) *ListingService {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	if metrics != nil {
		metrics.SetProductsLoaded(catalog.Len())
	}

	return &ListingService{
		catalog: catalog,
		cache:   cache,
		metrics: metrics,
		matchingService: NewMatchingService(MatchConfig{
			EnableDebugLogging: config.EnableDebugLogging,
			Logger:             logger,
		}),
		cacheTTL:  cacheTTL,
		keyPrefix: "route:" + catalog.Fingerprint(),
		logger:    logger.With("component", "router"),
	}
}

// ProcessListing assigns a listing to at most one product. An unmatched
// listing is not an error: the result reports Matched=false and the listing
// is dropped.
func (s *ListingService) ProcessListing(
	ctx context.Context,
	listing *domain.Listing,
) (*domain.MatchResult, error) {
	if listing == nil {
		return nil, domain.ErrInvalidRequest
	}

	candidates := s.catalog.Candidates(listing.Manufacturer)
	if len(candidates) == 0 {
		return s.unmatchedResult(&domain.MatchResult{}), nil
	}

	cacheKey := s.generateCacheKey(listing)

	// Try cache first. A hit rescores only the cached winner, so the
	// result has no Candidates.
	if idx, ok := s.getFromCache(ctx, cacheKey, len(candidates)); ok {
		if idx == unmatchedIndex {
			return s.unmatchedResult(&domain.MatchResult{Cached: true}), nil
		}
		product := candidates[idx]
		product.AddListing(listing)
		return s.matchedResult(&domain.MatchResult{
			Matched:     true,
			ProductName: product.Name,
			Score:       s.matchingService.Score(product, listing.Title),
			Cached:      true,
		}), nil
	}

	result, idx, err := s.matchingService.FindBestMatch(ctx, listing.Title, candidates)
	if err != nil {
		if errors.Is(err, domain.ErrNoCandidates) {
			s.setInCache(ctx, cacheKey, unmatchedIndex)
			return s.unmatchedResult(&domain.MatchResult{}), nil
		}
		return nil, err
	}

	candidates[idx].AddListing(listing)
	s.setInCache(ctx, cacheKey, idx)

	return s.matchedResult(result), nil
}

// ScoreListing ranks the candidates for a title without recording a match.
func (s *ListingService) ScoreListing(
	ctx context.Context,
	request *domain.ScoreRequest,
) ([]domain.CandidateScore, error) {
	if request == nil || request.Manufacturer == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.matchingService.ScoreCandidates(ctx, request.Title, s.catalog.Candidates(request.Manufacturer))
}

// Products summarizes catalog products, optionally restricted to one manufacturer.
func (s *ListingService) Products(manufacturer string) []domain.ProductSummary {
	var out []domain.ProductSummary
	s.catalog.Each(func(p *domain.Product) {
		if manufacturer != "" && p.Manufacturer() != manufacturer {
			return
		}
		out = append(out, domain.ProductSummary{
			Name:         p.Name,
			Manufacturer: p.Manufacturer(),
			Model:        p.Model,
			Family:       p.Family,
			Listings:     p.ListingCount(),
		})
	})
	return out
}

// Results returns one entry per product in output order, including
// products without listings.
func (s *ListingService) Results() []domain.ProductResult {
	out := make([]domain.ProductResult, 0, s.catalog.Len())
	s.catalog.Each(func(p *domain.Product) {
		out = append(out, domain.ProductResult{
			ProductName: p.Name,
			Listings:    p.Listings(),
		})
	})
	return out
}

// Catalog returns the catalog the service routes against.
func (s *ListingService) Catalog() *Catalog {
	return s.catalog
}

// Counts returns how many listings were matched and unmatched so far.
func (s *ListingService) Counts() (matched, unmatched int64) {
	return s.matchedCount.Load(), s.unmatchedCount.Load()
}

func (s *ListingService) matchedResult(r *domain.MatchResult) *domain.MatchResult {
	s.matchedCount.Add(1)
	if s.metrics != nil {
		s.metrics.ObserveListing(domain.OutcomeMatched)
	}
	return r
}

func (s *ListingService) unmatchedResult(r *domain.MatchResult) *domain.MatchResult {
	s.unmatchedCount.Add(1)
	if s.metrics != nil {
		s.metrics.ObserveListing(domain.OutcomeUnmatched)
	}
	return r
}

// generateCacheKey creates a cache key scoped to the catalog content.
// Format: "route:{fingerprint}:{xxhash(manufacturer NUL title)}"
// The title is hashed exactly as received: surrounding whitespace changes
// which phrases are bounded, so it must change the key too.
func (s *ListingService) generateCacheKey(listing *domain.Listing) string {
	h := xxhash.New()
	_, _ = h.WriteString(listing.Manufacturer)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(listing.Title)
	return s.keyPrefix + ":" + strconv.FormatUint(h.Sum64(), 16)
}

// getFromCache returns a cached bucket index. Cache errors are treated as
// misses; a cached index outside the bucket is ignored.
func (s *ListingService) getFromCache(ctx context.Context, key string, bucketSize int) (int, bool) {
	if s.cache == nil {
		return 0, false
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("cache lookup failed", "error", err)
		}
		s.observeCache(false)
		return 0, false
	}

	idx, ok := decodeIndex(value)
	if !ok || idx < unmatchedIndex || idx >= bucketSize {
		s.observeCache(false)
		return 0, false
	}

	s.observeCache(true)
	return idx, true
}

// setInCache stores a routing decision; failures are logged, never returned.
func (s *ListingService) setInCache(ctx context.Context, key string, idx int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, strconv.Itoa(idx), s.cacheTTL); err != nil {
		s.logger.Warn("cache store failed", "error", err)
	}
}

func (s *ListingService) observeCache(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCacheLookup(hit)
	}
}

// decodeIndex handles values as stored by the memory cache (JSON round
// trip) and by redis (raw string).
func decodeIndex(value interface{}) (int, bool) {
	switch v := value.(type) {
	case string:
		idx, err := strconv.Atoi(v)
		return idx, err == nil
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
