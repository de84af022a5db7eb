package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/pack-planner/internal/application"
	"github.com/eugenenazirov/pack-planner/internal/config"
	"github.com/eugenenazirov/pack-planner/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("pack-planner", "Pack Planner - greedily assigns weighted items into packs under per-pack limits")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	maxItemsFlag := kingpinApp.Flag("max-items", "Default maximum number of items per pack").Default("0").Int()
	maxWeightFlag := kingpinApp.Flag("max-weight", "Default maximum pack weight").Default("0").Float64()
	sortOrderFlag := kingpinApp.Flag("sort-order", "Default sort order (NATURAL, SHORT_TO_LONG, LONG_TO_SHORT)").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()
	debugFlag := kingpinApp.Flag("debug", "Enable debug logging").Bool()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *maxItemsFlag > 0 {
		overrides.MaxItems = maxItemsFlag
	}

	if *maxWeightFlag > 0 {
		overrides.MaxWeight = maxWeightFlag
	}

	if *sortOrderFlag != "" {
		overrides.SortOrder = sortOrderFlag
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(*debugFlag)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
