package engine

import (
	"context"
	"math/big"
	"time"

	"github.com/crytic/contractops/failures"
	"github.com/crytic/contractops/networks"
	"github.com/crytic/contractops/utils"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Send signs and submits a state-changing call and blocks until its receipt is observed.
//
// The gas limit is the request's, else the network's estimate, else the profile default when estimation fails. The
// gas price is the request's as a legacy transaction, else the profile's max gas price and priority fee as a dynamic
// fee transaction, else the profile's max gas price alone, else the node's suggestion.
//
// Once submitted, a transaction is never retried. If its receipt cannot be obtained a *failures.ReceiptFailedError
// carrying the hash is returned, as the transaction may still be mined.
func (e *Engine) Send(ctx context.Context, req SendRequest) (*TransactionRecord, error) {
	key, sender, err := utils.ParsePrivateKey(req.PrivateKey)
	if err != nil {
		return nil, err
	}
	target, network, err := e.validateTarget(req.ContractAddress, req.FunctionName, req.Network)
	if err != nil {
		return nil, err
	}
	value, err := utils.ParseOptionalUint256("value", req.Value)
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = new(uint256.Int)
	}
	gasPrice, err := utils.ParseOptionalUint256("gas price", req.GasPrice)
	if err != nil {
		return nil, err
	}

	return execute(e, ctx, operation{name: OperationSend, network: network, queued: true}, func(ctx context.Context) (*TransactionRecord, error) {
		prepared, err := e.prepare(ctx, target, network, req.FunctionName, req.Parameters)
		if err != nil {
			return nil, err
		}
		profile, err := e.registry.Profile(network)
		if err != nil {
			return nil, err
		}
		conn, err := e.registry.Connection(ctx, network)
		if err != nil {
			return nil, err
		}
		customErrors := prepared.description.Errors()

		nonce, err := conn.PendingNonceAt(ctx, sender)
		if err != nil {
			return nil, failures.TranslateNetworkError(err)
		}

		gasLimit := req.GasLimit
		if gasLimit == 0 {
			gasLimit, err = conn.EstimateGas(ctx, callMessage(&sender, target, prepared.calldata, value))
			if err != nil {
				translated := failures.TranslateWithRevertReason(err, customErrors)
				if profile.DefaultGasLimit == 0 {
					return nil, errors.WithMessage(translated, "Gas estimation failed")
				}
				e.logger.Warn("Gas estimation failed, using the default gas limit of ", profile.DefaultGasLimit,
					" for ", network, ": ", translated.Error())
				gasLimit = profile.DefaultGasLimit
			}
		}

		chainID := new(big.Int).SetUint64(profile.ChainID)
		if profile.ChainID == 0 {
			chainID, err = conn.ChainID(ctx)
			if err != nil {
				return nil, failures.TranslateNetworkError(err)
			}
		}

		txData, err := e.transactionData(ctx, conn, profile, gasPrice, chainID, nonce, target, value, gasLimit, prepared.calldata)
		if err != nil {
			return nil, err
		}
		tx, err := types.SignTx(types.NewTx(txData), types.LatestSignerForChainID(chainID), key)
		if err != nil {
			return nil, &failures.CredentialError{Reason: err.Error()}
		}

		if err = conn.SendTransaction(ctx, tx); err != nil {
			return nil, failures.TranslateWithRevertReason(err, customErrors)
		}
		_ = e.TransactionSubmitted.Publish(TransactionSubmittedEvent{Network: network, Hash: tx.Hash(), From: sender, To: target})

		receipt, err := e.awaitReceipt(ctx, conn, tx.Hash())
		if err != nil {
			e.metrics.ObserveSubmission(network, 0)
			return nil, &failures.ReceiptFailedError{TxHash: tx.Hash(), Cause: err}
		}
		e.metrics.ObserveSubmission(network, receipt.GasUsed)
		return e.transactionRecord(ctx, conn, profile, tx, sender, receipt), nil
	})
}

// transactionData builds the unsigned transaction using the gas price policy described on Send.
func (e *Engine) transactionData(
	ctx context.Context,
	conn networks.Connection,
	profile *networks.NetworkProfile,
	gasPrice *uint256.Int,
	chainID *big.Int,
	nonce uint64,
	to common.Address,
	value *uint256.Int,
	gasLimit uint64,
	calldata []byte,
) (types.TxData, error) {
	legacy := func(price *big.Int) types.TxData {
		return &types.LegacyTx{Nonce: nonce, GasPrice: price, Gas: gasLimit, To: &to, Value: value.ToBig(), Data: calldata}
	}

	if gasPrice != nil {
		return legacy(gasPrice.ToBig()), nil
	}

	maxPrice, priorityFee := profile.MaxGasPrice(), profile.PriorityFee()
	switch {
	case maxPrice != nil && priorityFee != nil:
		tip := priorityFee
		if tip.Cmp(maxPrice) > 0 {
			tip = maxPrice
		}
		return &types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: maxPrice,
			Gas:       gasLimit,
			To:        &to,
			Value:     value.ToBig(),
			Data:      calldata,
		}, nil
	case maxPrice != nil:
		return legacy(maxPrice), nil
	}

	suggested, err := conn.SuggestGasPrice(ctx)
	if err != nil {
		return nil, failures.TranslateNetworkError(err)
	}
	return legacy(suggested), nil
}

// awaitReceipt polls for the receipt of hash until it is found, the node reports an error other than not found, or
// the receipt timeout elapses.
func (e *Engine) awaitReceipt(ctx context.Context, conn networks.Connection, hash common.Hash) (*types.Receipt, error) {
	if e.receiptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.receiptTimeout)
		defer cancel()
	}
	ticker := time.NewTicker(e.receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := conn.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, failures.TranslateNetworkError(err)
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "stopped waiting for the receipt")
		case <-ticker.C:
		}
	}
}

func (e *Engine) transactionRecord(
	ctx context.Context,
	conn networks.Connection,
	profile *networks.NetworkProfile,
	tx *types.Transaction,
	sender common.Address,
	receipt *types.Receipt,
) *TransactionRecord {
	price := receipt.EffectiveGasPrice
	if price == nil {
		price = tx.GasPrice()
	}
	fee := new(big.Int).Mul(new(big.Int).SetUint64(receipt.GasUsed), price)

	var timestamp uint64
	if receipt.BlockNumber != nil {
		if header, err := conn.HeaderByNumber(ctx, receipt.BlockNumber); err == nil && header != nil {
			timestamp = header.Time
		}
	}

	txType := "legacy"
	if tx.Type() == types.DynamicFeeTxType {
		txType = "dynamic-fee"
	}

	record := &TransactionRecord{
		Hash:        tx.Hash().Hex(),
		From:        sender.Hex(),
		To:          tx.To().Hex(),
		Value:       tx.Value().String(),
		ValueEther:  networks.WeiToEther(tx.Value()),
		GasUsed:     receipt.GasUsed,
		GasPrice:    price.String(),
		FeeEther:    networks.WeiToEther(fee),
		Timestamp:   timestamp,
		Status:      receipt.Status == types.ReceiptStatusSuccessful,
		TxType:      txType,
		ExplorerURL: profile.ExplorerTxURL(tx.Hash().Hex()),
	}
	if receipt.BlockNumber != nil {
		record.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return record
}
