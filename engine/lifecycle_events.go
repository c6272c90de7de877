package engine

import (
	"time"

	"github.com/crytic/contractops/logging/colors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// OperationCompletedEvent describes a finished operation.
type OperationCompletedEvent struct {
	JobID     uuid.UUID
	Operation string
	Network   string
	// Outcome is OutcomeSuccess, OutcomeFailure for a well-formed failure result, or OutcomeError.
	Outcome string
	Elapsed time.Duration
	Err     error
}

// TransactionSubmittedEvent describes a transaction accepted by the network.
type TransactionSubmittedEvent struct {
	Network string
	Hash    common.Hash
	From    common.Address
	To      common.Address
}

func (e *Engine) onOperationCompleted(event OperationCompletedEvent) error {
	e.metrics.ObserveOperation(event.Operation, event.Network, event.Outcome, event.Elapsed)
	if event.Err != nil {
		e.logger.Debug("Operation ", event.Operation, " failed: ", event.Err.Error())
	}
	return nil
}

func (e *Engine) onTransactionSubmitted(event TransactionSubmittedEvent) error {
	e.logger.Info("Transaction ", colors.Bold, event.Hash.Hex(), colors.Reset, " submitted on ", event.Network)
	return nil
}
