// Package networks holds the configured network profiles and hands out one memoized connection per network.
package networks

import (
	"context"
	"sync"

	"github.com/crytic/contractops/failures"
	"github.com/crytic/contractops/logging"
	"github.com/crytic/contractops/logging/colors"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Registry resolves network names to profiles and connections. Profiles are fixed at construction.
type Registry struct {
	profiles       map[string]*NetworkProfile
	names          []string
	defaultNetwork string
	dialer         Dialer

	// connections caches one dialed connection per network name.
	connections     map[string]Connection
	connectionsLock sync.Mutex

	logger *logging.Logger
}

// NewRegistry builds a registry over copies of the given profiles. A nil dialer uses DialEthClient.
func NewRegistry(profiles map[string]*NetworkProfile, defaultNetwork string, dialer Dialer) (*Registry, error) {
	if len(profiles) == 0 {
		return nil, errors.New("at least one network must be configured")
	}
	if dialer == nil {
		dialer = DialEthClient
	}

	r := &Registry{
		profiles:       make(map[string]*NetworkProfile, len(profiles)),
		defaultNetwork: defaultNetwork,
		dialer:         dialer,
		connections:    make(map[string]Connection),
		logger:         logging.GlobalLogger.NewSubLogger("module", logging.NETWORK_SERVICE),
	}
	for name, profile := range profiles {
		if profile == nil {
			return nil, errors.Errorf("network '%s' has no profile", name)
		}
		copied := *profile
		copied.Name = name
		if err := copied.Validate(); err != nil {
			return nil, err
		}
		r.profiles[name] = &copied
		r.names = append(r.names, name)
	}
	slices.Sort(r.names)

	if _, ok := r.profiles[defaultNetwork]; !ok {
		return nil, &failures.UnknownNetworkError{Name: defaultNetwork, Known: r.Names()}
	}
	return r, nil
}

// DefaultNetwork returns the network used when a request names none.
func (r *Registry) DefaultNetwork() string {
	return r.defaultNetwork
}

// Names returns the configured network names in sorted order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Resolve returns the network name to use for the requested one, substituting the default for an empty name.
func (r *Registry) Resolve(name string) (string, error) {
	if name == "" {
		name = r.defaultNetwork
	}
	if _, ok := r.profiles[name]; !ok {
		return "", &failures.UnknownNetworkError{Name: name, Known: r.Names()}
	}
	return name, nil
}

// Profile returns the profile for the requested network. The returned profile must not be modified.
func (r *Registry) Profile(name string) (*NetworkProfile, error) {
	resolved, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return r.profiles[resolved], nil
}

// Connection returns the connection for the requested network, dialing it on first use.
func (r *Registry) Connection(ctx context.Context, name string) (Connection, error) {
	profile, err := r.Profile(name)
	if err != nil {
		return nil, err
	}

	r.connectionsLock.Lock()
	defer r.connectionsLock.Unlock()
	if conn, ok := r.connections[profile.Name]; ok {
		return conn, nil
	}
	conn, err := r.dialer(ctx, profile.RPCURL)
	if err != nil {
		return nil, failures.TranslateNetworkError(err)
	}
	r.logger.Debug("Connected to network ", colors.Bold, profile.Name, colors.Reset)
	r.connections[profile.Name] = conn
	return conn, nil
}

// ValidateConnectivity probes the requested network by fetching its block height.
func (r *Registry) ValidateConnectivity(ctx context.Context, name string) (uint64, error) {
	conn, err := r.Connection(ctx, name)
	if err != nil {
		return 0, err
	}
	height, err := conn.BlockNumber(ctx)
	if err != nil {
		return 0, failures.TranslateNetworkError(err)
	}
	return height, nil
}

// Close closes every dialed connection.
func (r *Registry) Close() {
	r.connectionsLock.Lock()
	defer r.connectionsLock.Unlock()
	for name, conn := range r.connections {
		conn.Close()
		delete(r.connections, name)
	}
}
