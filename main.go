package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"media-catalog/internal/catalog"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
	"media-catalog/internal/startup"
	"media-catalog/internal/store"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()

	catalogStart := time.Now()
	scanner, cat, err := catalog.NewFromConfig(context.Background(), config)
	if err != nil {
		logging.Fatal("Failed to initialize catalog: %v", err)
	}
	defer func() {
		if err := cat.Close(); err != nil {
			logging.Error("Failed to close catalog: %v", err)
		}
	}()
	startup.LogCatalogInit(time.Since(catalogStart))

	startup.LogScannerInit(config.ScanInterval, config.PollInterval)
	if err := scanner.Start(); err != nil {
		logging.Fatal("Failed to start scanner: %v", err)
	}
	startup.LogScannerStarted()

	var srv *http.Server
	if config.MetricsEnabled {
		srv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      setupMux(scanner, cat),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Fatal("Metrics server error: %v", err)
			}
		}()
	}

	startup.LogStarted(config.MetricsPort, config.MetricsEnabled, time.Since(startTime))

	waitForShutdown(srv, scanner)
}

func setupMux(scanner *catalog.Scanner, cat *store.Catalog) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, scanner.GetHealthStatus())
	})
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if scanner.IsReady() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, cat.GetStats())
	})
	mux.HandleFunc("/rescan", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		scanner.TriggerScan()
		w.WriteHeader(http.StatusAccepted)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Failed to encode response: %v", err)
	}
}

func waitForShutdown(srv *http.Server, scanner *catalog.Scanner) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping scanner")
	scanner.Stop()
	startup.LogShutdownStepComplete("Scanner stopped")

	if srv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := srv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
