package engine

import (
	"context"

	"github.com/crytic/contractops/contractabi"
	"github.com/crytic/contractops/utils"
)

// RegisterABI registers desc for address in memory. It shadows any cached or remote description until the cache is
// cleared.
func (e *Engine) RegisterABI(ctx context.Context, address string, network string, desc *contractabi.Description) error {
	target, err := utils.ValidateAddress(address)
	if err != nil {
		return err
	}
	resolved, err := e.registry.Resolve(network)
	if err != nil {
		return err
	}

	_, err = execute(e, ctx, operation{name: OperationAbi, network: resolved, queued: true}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, e.resolver.Register(ctx, target, resolved, desc)
	})
	return err
}

// ResolveABI returns the interface description of the contract at address, consulting the caches first.
func (e *Engine) ResolveABI(ctx context.Context, address string, network string) (*contractabi.Description, error) {
	target, err := utils.ValidateAddress(address)
	if err != nil {
		return nil, err
	}
	resolved, err := e.registry.Resolve(network)
	if err != nil {
		return nil, err
	}

	return execute(e, ctx, operation{name: OperationAbi, network: resolved, queued: true}, func(ctx context.Context) (*contractabi.Description, error) {
		return e.resolver.Resolve(ctx, target, resolved)
	})
}

// ClearABICache empties every cache tier, including manual registrations.
func (e *Engine) ClearABICache(ctx context.Context) error {
	_, err := execute(e, ctx, operation{name: OperationAbi, queued: true}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, e.resolver.Clear(ctx)
	})
	return err
}
