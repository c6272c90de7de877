package routes

import (
	"net/http"

	"github.com/crytic/contractops/api/handlers"
	"github.com/gorilla/mux"
)

func attachContractRoutes(router *mux.Router, deps *handlers.Dependencies) {
	contract := router.PathPrefix("/contract").Subrouter()
	contract.HandleFunc("/info", handlers.ContractInfoHandler(deps)).Methods(http.MethodPost)
	contract.HandleFunc("/call", handlers.CallHandler(deps)).Methods(http.MethodPost)
	contract.HandleFunc("/estimate-gas", handlers.EstimateGasHandler(deps)).Methods(http.MethodPost)
	contract.HandleFunc("/events", handlers.EventsHandler(deps)).Methods(http.MethodPost)
	contract.HandleFunc("/simulate", handlers.SimulateHandler(deps)).Methods(http.MethodPost)
	contract.HandleFunc("/send", handlers.SendHandler(deps)).Methods(http.MethodPost)
}

func attachAbiRoutes(router *mux.Router, deps *handlers.Dependencies) {
	router.HandleFunc("/abi/register", handlers.RegisterAbiHandler(deps)).Methods(http.MethodPost)
	router.HandleFunc("/abi/cache", handlers.ClearAbiCacheHandler(deps)).Methods(http.MethodDelete)
}

func attachStatusRoutes(router *mux.Router, deps *handlers.Dependencies) {
	router.HandleFunc("/networks", handlers.NetworksHandler(deps)).Methods(http.MethodGet)
	router.HandleFunc("/health", handlers.HealthHandler(deps)).Methods(http.MethodGet)
	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	}
}

func AttachRoutes(router *mux.Router, deps *handlers.Dependencies) {
	attachContractRoutes(router, deps)
	attachAbiRoutes(router, deps)
	attachStatusRoutes(router, deps)

	router.NotFoundHandler = http.HandlerFunc(handlers.NotFoundHandler)
}
