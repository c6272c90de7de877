package handlers

import (
	"net/http"

	"github.com/crytic/contractops/engine"
	"github.com/crytic/contractops/failures"
	"github.com/pkg/errors"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
	// TxHash is set when a transaction was submitted even though the request failed.
	TxHash string `json:"tx_hash,omitempty"`
	// Contract carries the partial result of an inspection.
	Contract *engine.ContractInfo `json:"contract,omitempty"`
}

// statusFor maps an error to the HTTP status reported for it.
func statusFor(err error) int {
	var (
		requestErr     *requestError
		addressErr     *failures.AddressFormatError
		functionErr    *failures.FunctionNameError
		networkNameErr *failures.UnknownNetworkError
		notFoundErr    *failures.FunctionNotFoundError
		ambiguousErr   *failures.AmbiguousFunctionError
		paramErr       *failures.ParameterFormatError
		credentialErr  *failures.CredentialError
		valueErr       *failures.ValueFormatError
		unavailableErr *failures.InterfaceUnavailableError
		receiptErr     *failures.ReceiptFailedError
		networkErr     *failures.NetworkActionError
	)
	switch {
	case errors.As(err, &requestErr), errors.As(err, &addressErr), errors.As(err, &functionErr),
		errors.As(err, &networkNameErr), errors.As(err, &notFoundErr), errors.As(err, &ambiguousErr),
		errors.As(err, &paramErr), errors.As(err, &credentialErr), errors.As(err, &valueErr):
		return http.StatusBadRequest
	case errors.Is(err, failures.ErrWritesDisabled):
		return http.StatusForbidden
	case errors.Is(err, failures.ErrContractNotDeployed), errors.As(err, &unavailableErr):
		return http.StatusNotFound
	case errors.As(err, &receiptErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &networkErr):
		return http.StatusBadGateway
	case errors.Is(err, engine.ErrEngineClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorWithContract(w, err, nil)
}

func writeErrorWithContract(w http.ResponseWriter, err error, contract *engine.ContractInfo) {
	response := errorResponse{Error: err.Error(), Contract: contract}
	var networkErr *failures.NetworkActionError
	if errors.As(err, &networkErr) {
		response.Category = string(networkErr.Category)
	}
	var receiptErr *failures.ReceiptFailedError
	if errors.As(err, &receiptErr) {
		response.TxHash = receiptErr.TxHash.Hex()
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger().Error("Request failed", err)
	}
	writeJSON(w, status, response)
}
