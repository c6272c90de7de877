package contractabi

import (
	"context"
	"strings"

	"github.com/crytic/contractops/contractabi/cache"
	"github.com/crytic/contractops/failures"
	"github.com/crytic/contractops/logging"
	"github.com/crytic/contractops/logging/colors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// RemoteLookup fetches a raw JSON ABI from an external service.
type RemoteLookup interface {
	FetchABI(ctx context.Context, network string, address common.Address) ([]byte, error)
}

// LookupObserver is notified of every remote lookup outcome.
type LookupObserver interface {
	RemoteLookup(network string, outcome string)
}

// Resolver maps (network, address) to a Description, consulting the cache tiers before the remote lookup.
type Resolver struct {
	cache          *cache.TieredCache
	remote         RemoteLookup
	defaultNetwork string
	observer       LookupObserver
	logger         *logging.Logger
}

// NewResolver creates a Resolver. defaultNetwork is substituted when a caller passes no network.
func NewResolver(tiers *cache.TieredCache, remote RemoteLookup, defaultNetwork string, observer LookupObserver) *Resolver {
	return &Resolver{
		cache:          tiers,
		remote:         remote,
		defaultNetwork: defaultNetwork,
		observer:       observer,
		logger:         logging.GlobalLogger.NewSubLogger("module", logging.ABI_SERVICE),
	}
}

// CacheKey returns the cache key for an address on a network. The network comes first so persisted entries group
// by network.
func CacheKey(network string, address common.Address) string {
	return network + "_" + strings.ToLower(address.Hex())
}

func (r *Resolver) networkOrDefault(network string) string {
	if network == "" {
		return r.defaultNetwork
	}
	return network
}

// Resolve returns the description of the contract at address. Results are written through to every cache tier.
// Stale entries are never refreshed; only Clear invalidates them.
func (r *Resolver) Resolve(ctx context.Context, address common.Address, network string) (*Description, error) {
	network = r.networkOrDefault(network)
	key := CacheKey(network, address)

	if data, tier, err := r.cache.Get(ctx, key); err == nil {
		desc, parseErr := Parse(data)
		if parseErr == nil {
			r.logger.Debug("Resolved ABI for ", key, " from the ", tier, " cache")
			return desc, nil
		}
		r.logger.Warn("Ignoring unreadable cache entry ", key, " from the ", tier, " cache", parseErr)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		return nil, err
	}

	if r.remote == nil {
		return nil, &failures.InterfaceUnavailableError{Address: address.Hex(), Network: network, Err: failures.ErrUnsupportedNetwork}
	}
	raw, err := r.remote.FetchABI(ctx, network, address)
	if err != nil {
		r.observe(network, err)
		r.logger.Debug("ABI lookup for ", key, " failed", err)
		return nil, &failures.InterfaceUnavailableError{Address: address.Hex(), Network: network, Err: err}
	}
	desc, err := Parse(raw)
	if err != nil {
		r.observe(network, err)
		return nil, &failures.InterfaceUnavailableError{
			Address: address.Hex(),
			Network: network,
			Err:     failures.NewRemoteServiceError(failures.RemoteUnclassified, err, address.Hex()),
		}
	}
	r.observe(network, nil)

	canonical, err := desc.MarshalJSON()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err = r.cache.Put(ctx, key, canonical); err != nil {
		r.logger.Warn("Failed to cache ABI for ", key, err)
	}
	r.logger.Info("Fetched ABI for ", colors.Bold, address.Hex(), colors.Reset, " on ", network)
	return desc, nil
}

// Register stores desc for address in the in-process tier only. It shadows any persisted or remote description
// for the rest of the process lifetime, or until Clear.
func (r *Resolver) Register(ctx context.Context, address common.Address, network string, desc *Description) error {
	if desc == nil {
		return errors.New("a description must be provided")
	}
	network = r.networkOrDefault(network)
	data, err := desc.MarshalJSON()
	if err != nil {
		return errors.WithStack(err)
	}
	if err = r.cache.PutTop(ctx, CacheKey(network, address), data); err != nil {
		return err
	}
	r.logger.Info("Registered ABI for ", colors.Bold, address.Hex(), colors.Reset, " on ", network)
	return nil
}

// Peek returns a description already held in the in-process tier without touching slower tiers or the network.
func (r *Resolver) Peek(ctx context.Context, address common.Address, network string) (*Description, bool) {
	data, err := r.cache.GetTop(ctx, CacheKey(r.networkOrDefault(network), address))
	if err != nil {
		return nil, false
	}
	desc, err := Parse(data)
	if err != nil {
		return nil, false
	}
	return desc, true
}

// Clear empties every cache tier, including the on-disk store. A failure in any tier is returned.
func (r *Resolver) Clear(ctx context.Context) error {
	if err := r.cache.Clear(ctx); err != nil {
		return err
	}
	r.logger.Info("Cleared the ABI cache")
	return nil
}

// Close releases the cache tiers.
func (r *Resolver) Close() error {
	return r.cache.Close()
}

func (r *Resolver) observe(network string, err error) {
	if r.observer == nil {
		return
	}
	outcome := "success"
	var remoteErr *failures.RemoteServiceError
	switch {
	case err == nil:
	case errors.Is(err, failures.ErrSourceNotVerified):
		outcome = "unverified"
	case errors.Is(err, failures.ErrUnsupportedNetwork):
		outcome = "unsupported"
	case errors.As(err, &remoteErr):
		outcome = string(remoteErr.Category)
	default:
		outcome = "error"
	}
	r.observer.RemoteLookup(network, outcome)
}
