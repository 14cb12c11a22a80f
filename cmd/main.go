package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"ai-marketplace-backend/pkg/clients/ipfs"
	tonclient "ai-marketplace-backend/pkg/clients/ton"
	"ai-marketplace-backend/pkg/httpServer"
	contractsService "ai-marketplace-backend/pkg/services/contracts"
	marketplaceService "ai-marketplace-backend/pkg/services/marketplace"
	"ai-marketplace-backend/pkg/workers"
	walletworker "ai-marketplace-backend/pkg/workers/wallet"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() (err error) {
	// Tools
	config := loadConfig()
	if config == nil {
		fmt.Println("failed to load configuration")
		return errors.New("failed to load configuration")
	}

	logLevel := slog.LevelInfo
	if level, ok := logLevels[config.System.LogLevel]; ok {
		logLevel = level
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Chain settings are checked before anything touches the network
	configURL, err := liteserverConfigURL(config.TON.Network, config.TON.ConfigURL)
	if err != nil {
		logger.Error("invalid TON network", slog.String("error", err.Error()))
		return
	}

	contractAddr, err := contractsService.ParsePrincipal(config.TON.ContractAddress)
	if err != nil {
		logger.Error("invalid contract address", slog.String("error", err.Error()))
		return
	}

	key, err := parsePrivateKey(config.TON.PrivateKey)
	if err != nil {
		logger.Error("invalid private key", slog.String("error", err.Error()))
		return
	}

	attachAmount, err := parseCoins("listing attach amount", config.TON.ListingAttachAmount)
	if err != nil {
		logger.Error("invalid listing attach amount", slog.String("error", err.Error()))
		return
	}

	minBalance, err := parseCoins("wallet min balance", config.TON.WalletMinBalance)
	if err != nil {
		logger.Error("invalid wallet min balance", slog.String("error", err.Error()))
		return
	}

	// Metrics
	servicesRequestsCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Metrics.Namespace,
			Subsystem: config.Metrics.ServerSubsystem,
			Name:      "services_requests_count",
			Help:      "Services requests count",
		},
		[]string{"method", "error"},
	)

	servicesRequestsDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Metrics.Namespace,
			Subsystem: config.Metrics.ServerSubsystem,
			Name:      "services_requests_duration",
			Help:      "Services requests duration",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"method", "error"},
	)

	clientsRequestsCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Metrics.Namespace,
			Subsystem: config.Metrics.ClientsSubsystem,
			Name:      "clients_requests_count",
			Help:      "Clients requests count",
		},
		[]string{"method", "error"},
	)

	clientsRequestsDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Metrics.Namespace,
			Subsystem: config.Metrics.ClientsSubsystem,
			Name:      "clients_requests_duration",
			Help:      "Clients requests duration",
		},
		[]string{"method", "error"},
	)

	workersRunCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Metrics.Namespace,
			Subsystem: config.Metrics.WorkersSubsystem,
			Name:      "workers_requests_count",
			Help:      "Workers requests count",
		},
		[]string{"method", "error"},
	)

	workersRunDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Metrics.Namespace,
			Subsystem: config.Metrics.WorkersSubsystem,
			Name:      "workers_requests_duration",
			Help:      "Workers requests duration",
		},
		[]string{"method", "error"},
	)

	walletBalance := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: config.Metrics.Namespace,
			Subsystem: config.Metrics.WorkersSubsystem,
			Name:      "wallet_balance_ton",
			Help:      "Balance of the listing wallet in TON",
		},
	)

	prometheus.MustRegister(
		servicesRequestsCount,
		servicesRequestsDuration,
		clientsRequestsCount,
		clientsRequestsDuration,
		workersRunCount,
		workersRunDuration,
		walletBalance,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Clients
	tonClient, err := tonclient.NewClient(ctx, configURL, key, logger)
	if err != nil {
		logger.Error("failed to create TON client", slog.String("error", err.Error()))
		return
	}
	tonClient = tonclient.NewMetrics(clientsRequestsCount, clientsRequestsDuration, tonClient)

	logger.Info("listing wallet ready",
		slog.String("wallet", tonClient.WalletAddress().String()),
		slog.String("contract", contractAddr.String()),
	)

	storage := ipfs.NewClient(
		config.IPFS.APIURL,
		config.IPFS.GatewayURL,
		config.IPFS.Timeout,
		&ipfs.Credentials{Token: config.IPFS.Token},
	)
	storage = ipfs.NewMetrics(clientsRequestsCount, clientsRequestsDuration, storage)
	if config.IPFS.CacheTTL > 0 {
		storage = ipfs.NewCacheMiddleware(storage, config.IPFS.CacheSize, config.IPFS.CacheTTL)
	}

	// Services
	contractsSvc := contractsService.NewService(tonClient, contractsService.Config{
		ContractAddress:     contractAddr,
		ContractName:        config.TON.ContractName,
		AttachAmount:        attachAmount,
		ConfirmationTimeout: config.TON.ConfirmationTimeout,
		PollInterval:        config.TON.ConfirmationPollInterval,
	}, logger)
	contractsSvc = contractsService.NewMetrics(servicesRequestsCount, servicesRequestsDuration, contractsSvc)

	marketplaceSvc := marketplaceService.NewService(storage, contractsSvc, logger)
	marketplaceSvc = marketplaceService.NewMetrics(servicesRequestsCount, servicesRequestsDuration, marketplaceSvc)

	// Workers
	walletWorker := walletworker.NewWorker(tonClient, minBalance, walletBalance, logger)
	walletWorker = walletworker.NewMetrics(workersRunCount, workersRunDuration, walletWorker)

	bgWorkers := workers.NewWorkers(walletWorker, logger)

	// HTTP Server
	adminAuthTokens := strings.Split(config.System.AdminAuthTokens, ",")
	app := fiber.New(fiber.Config{BodyLimit: config.System.BodyLimit})
	server := httpServer.New(
		app,
		marketplaceSvc,
		contractsSvc,
		storage,
		adminAuthTokens,
		config.System.AllowedOrigins,
		config.Metrics.Namespace,
		config.Metrics.ServerSubsystem,
		logger,
	)

	server.RegisterRoutes()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bgWorkers.Start(gCtx)
	})

	g.Go(func() error {
		logger.Info("starting server", slog.String("port", config.System.Port))
		if lErr := app.Listen(":" + config.System.Port); lErr != nil {
			return fmt.Errorf("error starting server: %w", lErr)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		return app.ShutdownWithTimeout(time.Second * 5)
	})

	if err = g.Wait(); err != nil {
		logger.Error("server stopped with error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")

	return nil
}
