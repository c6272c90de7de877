package handlers

import (
	"net/http"

	"github.com/crytic/contractops/engine"
	"github.com/crytic/contractops/utils"
)

// ContractInfoHandler serves engine.Engine.Inspect. A contract that is not deployed is reported with status 404
// together with the partial info.
func ContractInfoHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req engine.ContractInfoRequest
		if err := decodeRequest(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		info, err := deps.Engine.Inspect(r.Context(), req)
		if err != nil {
			writeErrorWithContract(w, err, info)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

// CallHandler serves engine.Engine.Call. Failed reads are still answered with status 200 and success=false.
func CallHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req engine.CallRequest
		if err := decodeRequest(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		result, err := deps.Engine.Call(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func EstimateGasHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req engine.EstimateRequest
		if err := decodeRequest(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		gas, err := deps.Engine.Estimate(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]uint64{"gas_estimate": gas})
	}
}

func EventsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req engine.EventsRequest
		if err := decodeRequest(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		events, err := deps.Engine.Events(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
	}
}

func SimulateHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req engine.SimulateRequest
		if err := decodeRequest(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		result, err := deps.Engine.Simulate(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// SendHandler checks the write gate and then serves engine.Engine.Send. A rejected request never reaches the
// engine.
func SendHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req engine.SendRequest
		if err := decodeRequest(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		value, err := utils.ParseOptionalUint256("value", req.Value)
		if err != nil {
			writeError(w, err)
			return
		}
		if err = deps.Security.CheckWrite(value); err != nil {
			logger().Warn("Rejected transaction to ", req.ContractAddress, ": ", err.Error())
			writeError(w, err)
			return
		}
		record, err := deps.Engine.Send(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}
