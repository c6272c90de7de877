package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crytic/contractops/contractabi"
	"github.com/pkg/errors"
)

// RegisterAbiRequest registers an interface description for a contract that cannot be resolved remotely.
type RegisterAbiRequest struct {
	Address string          `json:"address"`
	Network string          `json:"network,omitempty"`
	Abi     json.RawMessage `json:"abi"`
}

func RegisterAbiHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterAbiRequest
		if err := decodeRequest(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		if len(req.Abi) == 0 {
			writeError(w, &requestError{errors.New("abi must be provided")})
			return
		}
		// An ABI may also arrive as a JSON encoded string, as explorers return it.
		raw := []byte(req.Abi)
		var encoded string
		if json.Unmarshal(req.Abi, &encoded) == nil {
			raw = []byte(encoded)
		}

		desc, err := contractabi.Parse(raw)
		if err != nil {
			writeError(w, &requestError{errors.WithMessage(err, "invalid ABI")})
			return
		}
		if err = deps.Engine.RegisterABI(r.Context(), req.Address, req.Network, desc); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"registered": true, "functions": desc.FunctionNames()})
	}
}

func ClearAbiCacheHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Engine.ClearABICache(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
	}
}
