// Package api exposes contract operations over HTTP.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/crytic/contractops/api/handlers"
	"github.com/crytic/contractops/api/middleware"
	"github.com/crytic/contractops/api/routes"
	"github.com/crytic/contractops/logging"
	"github.com/crytic/contractops/logging/colors"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// portAttempts is the number of consecutive ports tried when the configured one is taken.
const portAttempts = 10

// NewRouter creates the router serving every route for deps.
func NewRouter(deps *handlers.Dependencies) *mux.Router {
	router := mux.NewRouter()
	middleware.AttachMiddleware(router)
	routes.AttachRoutes(router, deps)
	return router
}

// Start serves the API on port until ctx is cancelled. If the port is taken the following ones are tried.
func Start(ctx context.Context, deps *handlers.Dependencies, port int) error {
	if port == 0 {
		port = 8080
	}
	logger := logging.GlobalLogger.NewSubLogger("module", logging.API_SERVICE)

	var listener net.Listener
	var err error
	for i := 0; i < portAttempts; i++ {
		listener, err = net.Listen("tcp", fmt.Sprint(":", port))
		if err == nil {
			break
		}
		logger.Info("Server failed to start on port ", port)
		port++
	}
	if listener == nil {
		return errors.Wrap(err, "failed to start server")
	}

	server := &http.Server{
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("Server started on port ", colors.Bold, port, colors.Reset)

	serverErrorChan := make(chan error, 1)
	go func() {
		serverErrorChan <- server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server due to context cancellation")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", err)
			return err
		}
		return nil
	case err := <-serverErrorChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Server error", err)
		return err
	}
}
