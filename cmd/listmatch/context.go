package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/listmatch/backend/config"
	"github.com/listmatch/backend/internal/domain"
	"github.com/listmatch/backend/internal/infrastructure/cache"
	"github.com/listmatch/backend/internal/infrastructure/jsonl"
	"github.com/listmatch/backend/internal/logging"
	"github.com/listmatch/backend/internal/observability"
	"github.com/listmatch/backend/internal/usecase"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(w io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: w,
	})
}

// openCache returns the configured routing cache, or nil when caching is
// disabled. The returned close function is always safe to call.
func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.CacheRepository, func(), error) {
	switch cfg.Cache.Type {
	case config.CacheMemory:
		c := cache.NewMemoryCache(cache.DefaultCleanupInterval)
		return c, func() { _ = c.Close() }, nil
	case config.CacheRedis:
		c, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, func() {}, err
		}
		logger.Info("redis cache connected", "component", "cache")
		return c, func() {
			if err := c.Close(); err != nil {
				logger.Warn("redis close failed", "component", "cache", "error", err)
			}
		}, nil
	default:
		return nil, func() {}, nil
	}
}

// serviceSetup is everything a command needs to route listings.
type serviceSetup struct {
	service *usecase.ListingService
	metrics *observability.Metrics
	close   func()
}

// buildService loads the catalog from productsPath and wires the listing
// service with the configured cache and a fresh metrics registry.
func buildService(ctx context.Context, cfg *config.Config, logger *slog.Logger, productsPath string) (*serviceSetup, error) {
	readOpts := jsonl.ReadOptions{
		SkipMalformed: cfg.Matching.SkipMalformed,
		Logger:        logger,
	}
	products, err := jsonl.ReadProductsFile(productsPath, readOpts)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	catalog := usecase.LoadCatalog(products)
	logger.Info("catalog loaded",
		"component", "catalog",
		"products", catalog.Len(),
		"manufacturers", len(catalog.Manufacturers()),
		"fingerprint", catalog.Fingerprint())

	routingCache, closeCache, err := openCache(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	metrics := observability.NewMetrics()
	service := usecase.NewListingService(catalog, routingCache, metrics, usecase.ListingServiceConfig{
		CacheTTL:           cfg.Cache.TTL,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		Logger:             logger,
	})

	return &serviceSetup{service: service, metrics: metrics, close: closeCache}, nil
}
