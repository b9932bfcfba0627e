package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"
	"whatsapp-gateway-client/internal/config"
	"whatsapp-gateway-client/internal/infra/handlers"
	"whatsapp-gateway-client/internal/infra/logger"
	"whatsapp-gateway-client/internal/infra/provider"
	"whatsapp-gateway-client/internal/infra/routes"
	"whatsapp-gateway-client/internal/infra/services"
	"whatsapp-gateway-client/internal/middleware"

	"github.com/gorilla/mux"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.NewLogger(ctx, cfg.LogJSON, cfg.LogLevel)

	gateway := provider.NewGatewayClient(log, nil, cfg.GatewayURL, cfg.GatewayAPIKey, cfg.InstanceKey)
	gateway.SetPollInterval(cfg.PollIntervalMs)
	gateway.Begin()

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.TokenMiddleware(log, cfg.BridgeToken))

	bridgeHandlers := handlers.NewBridgeHandlers(log, gateway)

	routes := routes.NewRoutes(router, bridgeHandlers)
	routes.ServeMessages = !cfg.PollEnabled
	routes.Init()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	// Fetching consumes the gateway queue, so the poller and GET /messages
	// never run side by side.
	pollerDone := make(chan struct{})
	if cfg.PollEnabled {
		poller := services.NewPollerService(log, gateway, nil)
		go func() {
			poller.Run(ctx)
			close(pollerDone)
		}()
	} else {
		close(pollerDone)
	}

	go func() {
		log.Info(fmt.Sprintf("Bridge is running on port %s", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(fmt.Sprintf("Error running HTTP server: %s", err))
			os.Exit(1)
		}
	}()

	<-stop
	log.Info("Shutting down bridge...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), provider.RequestTimeout+5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	} else {
		log.Info("Server stopped gracefully.")
	}

	select {
	case <-pollerDone:
	case <-shutdownCtx.Done():
		log.Warn("Poller did not stop before shutdown deadline")
	}
}
