package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"trading-server/src/config"
	"trading-server/src/interfaces"
	"trading-server/src/logger"
	"trading-server/src/models"
	"trading-server/src/monitor"
	"trading-server/src/server"
	"trading-server/src/services"
	"trading-server/src/services/reports"
	"trading-server/src/storage"
	"trading-server/src/transport"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "", "path to config file (optional; flags override)")
	host := flag.String("host", "", "listen host (overrides config)")
	port := flag.Int("port", 0, "listen port (overrides config)")
	certFile := flag.String("cert", "", "TLS certificate file (overrides config)")
	keyFile := flag.String("key", "", "TLS private key file (overrides config)")
	logLevel := flag.String("log-level", "", "log level: DEBUG, INFO, WARNING, ERROR (overrides config)")
	devCert := flag.Bool("dev-cert", false, "generate a throwaway self-signed certificate at the configured paths")
	flag.Parse()

	// Load config from YAML file, or run on defaults + flags
	var cfg *config.Config
	if *configPath != "" {
		loaded, err := config.NewConfig(*configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = config.NewDefaultConfig()
	}

	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *certFile != "" {
		cfg.TLS.CertFile = *certFile
	}
	if *keyFile != "" {
		cfg.TLS.KeyFile = *keyFile
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	if *devCert {
		if err := transport.GenerateDevCertificate(cfg.TLS.CertFile, cfg.TLS.KeyFile); err != nil {
			appLogger.Critical("Failed to generate dev certificate: %v", err)
		}
		appLogger.Info("Generated dev certificate at %s / %s", cfg.TLS.CertFile, cfg.TLS.KeyFile)
	}

	// Setup trade store
	var store interfaces.ITradeStore
	var err error

	switch cfg.Storage.DBType {
	case "postgres":
		store, err = storage.NewPostgresTradeStore(cfg.MConfig, appLogger)
	default:
		// Default to SQLite
		store = storage.NewSQLiteTradeStore(cfg.MConfig, appLogger)
	}
	if err != nil {
		appLogger.Critical("Failed to init trade store: %v", err)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to initialize trade store: %v", err)
	}
	defer store.Close()

	// Transport first: it must bind before anything is reachable.
	tlsTransport, err := transport.NewTLSTransport(cfg.MConfig, appLogger)
	if err != nil {
		appLogger.Critical("TLS setup failed: %v", err)
	}

	// Optional monitor sidecar, doubling as the market data fan-out hub.
	var exchanger interfaces.IDataExchanger
	if cfg.Monitor.Enabled {
		mon := monitor.NewMonitorServer(cfg.MConfig, appLogger, tlsTransport)
		if err := mon.Start(); err != nil {
			appLogger.Critical("Failed to start monitor: %v", err)
		}
		defer mon.Stop()
		exchanger = mon
	}

	// Business services
	marketData := services.NewMarketDataService(appLogger, exchanger)
	calculation := services.NewCalculationService(appLogger)
	manipulation := services.NewManipulationService(appLogger)

	reportService := services.NewReportService(appLogger)
	reportService.RegisterReport("EndOfDay", func(req models.MReportRequest) reports.IReport {
		return reports.NewEndOfDayReport(store, req)
	})

	// Dispatch pipeline
	registry := server.NewCommandRegistry()
	server.RegisterDefaultCommands(registry, marketData, calculation, manipulation, reportService)
	facade := server.NewTradingServerFacade(marketData, calculation, manipulation, reportService, registry, appLogger)

	if err := tlsTransport.Start(); err != nil {
		appLogger.Critical("Failed to start transport: %v", err)
	}
	defer tlsTransport.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := server.NewRequestLoop(tlsTransport, facade, appLogger)
	go loop.Run(ctx)

	appLogger.Info("Trading server ready on %s", tlsTransport.Addr())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	tlsTransport.Stop()
}
