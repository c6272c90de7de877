package cache

import (
	"context"

	"github.com/crytic/contractops/logging"
	"github.com/pkg/errors"
)

// Observer is notified of cache outcomes. It is typically backed by metrics.
type Observer interface {
	CacheHit(tier string)
	CacheMiss()
}

// TieredCache layers Stores from fastest (index 0) to slowest. It implements the coherency policy:
//   - a hit in a lower tier is copied into every tier above it before returning,
//   - Put writes through to every tier; failures below tier 0 are logged and swallowed,
//   - PutTop writes tier 0 only, which shadows lower tiers for that key until Clear.
type TieredCache struct {
	tiers    []Store
	logger   *logging.Logger
	observer Observer
}

// NewTieredCache creates a TieredCache over tiers. At least one tier is required.
func NewTieredCache(logger *logging.Logger, observer Observer, tiers ...Store) (*TieredCache, error) {
	if len(tiers) == 0 {
		return nil, errors.New("a tiered cache needs at least one store")
	}
	if logger == nil {
		logger = logging.GlobalLogger
	}
	return &TieredCache{
		tiers:    tiers,
		logger:   logger,
		observer: observer,
	}, nil
}

// TierNames returns the names of the tiers, fastest first.
func (c *TieredCache) TierNames() []string {
	names := make([]string, len(c.tiers))
	for i, t := range c.tiers {
		names[i] = t.Name()
	}
	return names
}

// Get returns the value for key and the name of the tier that served it. A read failure in one tier is logged
// and treated as a miss in that tier.
func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, string, error) {
	for i, tier := range c.tiers {
		value, err := tier.Get(ctx, key)
		if errors.Is(err, ErrCacheMiss) {
			continue
		}
		if err != nil {
			c.logger.Warn("Failed to read ", key, " from the ", tier.Name(), " cache tier", err)
			continue
		}

		// Backfill faster tiers so the next lookup stops earlier
		for j := i - 1; j >= 0; j-- {
			if putErr := c.tiers[j].Put(ctx, key, value); putErr != nil {
				c.logger.Warn("Failed to populate the ", c.tiers[j].Name(), " cache tier with ", key, putErr)
			}
		}
		if c.observer != nil {
			c.observer.CacheHit(tier.Name())
		}
		c.logger.Trace("Cache hit for ", key, " in the ", tier.Name(), " tier")
		return value, tier.Name(), nil
	}

	if c.observer != nil {
		c.observer.CacheMiss()
	}
	return nil, "", ErrCacheMiss
}

// GetTop consults tier 0 only.
func (c *TieredCache) GetTop(ctx context.Context, key string) ([]byte, error) {
	return c.tiers[0].Get(ctx, key)
}

// Put writes value to every tier. Only a tier 0 failure is returned.
func (c *TieredCache) Put(ctx context.Context, key string, value []byte) error {
	if err := c.tiers[0].Put(ctx, key, value); err != nil {
		return err
	}
	for _, tier := range c.tiers[1:] {
		if err := tier.Put(ctx, key, value); err != nil {
			c.logger.Warn("Failed to write ", key, " to the ", tier.Name(), " cache tier", err)
		}
	}
	return nil
}

// PutTop writes value to tier 0 only.
func (c *TieredCache) PutTop(ctx context.Context, key string, value []byte) error {
	return c.tiers[0].Put(ctx, key, value)
}

// Clear empties every tier. All tiers are attempted; the first failure is returned.
func (c *TieredCache) Clear(ctx context.Context) error {
	var firstErr error
	for _, tier := range c.tiers {
		if sized, ok := tier.(interface{ Len() int }); ok {
			c.logger.Debug("Clearing ", sized.Len(), " entries from the ", tier.Name(), " cache tier")
		}
		if err := tier.Clear(ctx); err != nil {
			c.logger.Error("Failed to clear the ", tier.Name(), " cache tier", err)
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "failed to clear the %s cache tier", tier.Name())
			}
		}
	}
	return firstErr
}

// Close closes every tier.
func (c *TieredCache) Close() error {
	var firstErr error
	for _, tier := range c.tiers {
		if err := tier.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
