package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wyfcoding/tradeexecution/internal/darkpool/infrastructure"
	"github.com/wyfcoding/tradeexecution/internal/execution/application"
	"github.com/wyfcoding/tradeexecution/pkg/config"
	"github.com/wyfcoding/tradeexecution/pkg/logger"
	"github.com/wyfcoding/tradeexecution/pkg/metrics"
)

var (
	configPath  = flag.String("config", "configs/config.toml", "config file path")
	metricsPort = flag.Int("metrics-port", 9090, "prometheus metrics port")
)

func main() {
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. Logger
	if err := logger.Init(cfg.Logger); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	ctx := context.Background()
	logger.Info(ctx, "starting execution service",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. Metrics
	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		logger.Error(ctx, "failed to register metrics", "error", err)
		os.Exit(1)
	}
	metrics.StartHTTPServer(*metricsPort, "/metrics")

	// 4. Service
	estimator := infrastructure.NewFillRateBandEstimator(nil)
	svc := application.NewExecutionService(cfg, m, estimator)

	summary := svc.GetExecutionSummary(ctx)
	logger.Info(ctx, "execution service ready",
		"algorithms", summary.SupportedAlgorithms,
		"strategies", summary.SupportedStrategies,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info(ctx, "shutting down", "signal", sig.String())
}
