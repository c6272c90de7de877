package engine

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/crytic/contractops/config"
	"github.com/crytic/contractops/contractabi"
	"github.com/crytic/contractops/contractabi/cache"
	"github.com/crytic/contractops/contractabi/etherscan"
	"github.com/crytic/contractops/logging"
	"github.com/crytic/contractops/metrics"
	"github.com/crytic/contractops/networks"
	"github.com/pkg/errors"
)

// NewFromConfig builds the registry, the cache tiers, the remote lookup client and the resolver described by cfg,
// and returns an Engine over them. recorder may be nil.
func NewFromConfig(ctx context.Context, cfg *config.ProjectConfig, recorder *metrics.Recorder, opts ...Option) (*Engine, error) {
	registry, err := networks.NewRegistry(cfg.Networks, cfg.DefaultNetwork, nil)
	if err != nil {
		return nil, err
	}

	tiers, err := cacheTiers(ctx, &cfg.AbiResolution)
	if err != nil {
		return nil, err
	}
	abiLogger := logging.GlobalLogger.NewSubLogger("module", logging.ABI_SERVICE)
	tiered, err := cache.NewTieredCache(abiLogger, recorder, tiers...)
	if err != nil {
		return nil, err
	}
	abiLogger.Debug("ABI cache tiers: ", strings.Join(tiered.TierNames(), ", "))

	timeout := time.Duration(cfg.AbiResolution.RequestTimeout) * time.Second
	lookup := etherscan.NewClient(cfg.AbiResolution.APIKey, cfg.NetworkEndpointOverrides(), &http.Client{Timeout: timeout})
	resolver := contractabi.NewResolver(tiered, lookup, registry.DefaultNetwork(), recorder)

	return New(registry, resolver, append([]Option{WithMetrics(recorder)}, opts...)...), nil
}

// cacheTiers returns the in-process tier followed by the persistent tier selected by the configured backend.
func cacheTiers(ctx context.Context, cfg *config.AbiResolutionConfig) ([]cache.Store, error) {
	tiers := []cache.Store{cache.NewMemoryStore()}

	var persistent cache.Store
	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		return tiers, nil
	case config.CacheBackendFile, "":
		dir, err := cfg.ResolvedCacheDirectory()
		if err != nil {
			return nil, err
		}
		persistent, err = cache.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
	case config.CacheBackendBolt:
		dir, err := cfg.ResolvedCacheDirectory()
		if err != nil {
			return nil, err
		}
		persistent, err = cache.NewBoltStore(filepath.Join(dir, "abi-cache.db"))
		if err != nil {
			return nil, err
		}
	case config.CacheBackendRedis:
		var err error
		persistent, err = cache.NewRedisStore(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unknown ABI cache backend '%s'", cfg.CacheBackend)
	}
	return append(tiers, persistent), nil
}
