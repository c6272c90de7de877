package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/crytic/contractops/config"
	"github.com/crytic/contractops/engine"
	"github.com/crytic/contractops/logging"
	"github.com/crytic/contractops/metrics"
	"github.com/crytic/contractops/version"
	"github.com/pkg/errors"
)

// maxBodyBytes bounds request bodies. ABIs of large contracts are the biggest payloads.
const maxBodyBytes = 4 << 20

// logger is derived on use so it follows the global logger configured by the CLI.
func logger() *logging.Logger {
	return logging.GlobalLogger.NewSubLogger("module", logging.API_SERVICE)
}

// Dependencies is everything the handlers need to serve requests.
type Dependencies struct {
	Engine *engine.Engine

	// Security is the write gate checked before any transaction reaches the engine.
	Security config.SecurityConfig

	// Metrics is served on /metrics when set.
	Metrics *metrics.Recorder
}

// decodeRequest reads a JSON body into v. Numbers are kept as json.Number so large integers keep their precision.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.UseNumber()
	if err := decoder.Decode(v); err != nil {
		return &requestError{errors.Wrap(err, "invalid request body")}
	}
	return nil
}

// requestError is a malformed request that never reached the engine.
type requestError struct {
	error
}

func (e *requestError) Unwrap() error {
	return e.error
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger().Error("Failed to encode response", err)
	}
}

func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not Found"})
}

// HealthHandler reports liveness and the build version.
func HealthHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":          "ok",
			"version":         version.Version,
			"default_network": deps.Engine.Registry().DefaultNetwork(),
		})
	}
}

// NetworksHandler lists the configured networks. With ?check=true each network is probed for its block height.
func NetworksHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		check := false
		if raw := r.URL.Query().Get("check"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				writeError(w, &requestError{errors.Errorf("invalid check parameter '%s'", raw)})
				return
			}
			check = parsed
		}
		statuses := deps.Engine.Registry().Describe(r.Context(), check)
		writeJSON(w, http.StatusOK, map[string]any{"networks": statuses})
	}
}
