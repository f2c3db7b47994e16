// Package main provides the jobmon monitoring service.
//
// jobmon is a read-only HTTP API that surfaces job execution and billing
// data from a Databricks account, combining lagged system table queries with
// real-time Jobs API reads for dashboard consumption.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jobmon-io/jobmon/internal/aliasing"
	"github.com/jobmon-io/jobmon/internal/api"
	"github.com/jobmon-io/jobmon/internal/api/middleware"
	"github.com/jobmon-io/jobmon/internal/identity"
	"github.com/jobmon-io/jobmon/internal/monitor"
	"github.com/jobmon-io/jobmon/internal/platform"
)

const name = "jobmon"

func main() {
	versionFlag := flag.Bool("version", false, "show version information")
	flag.Parse()

	serverConfig := api.LoadServerConfig()

	if *versionFlag {
		log.Printf("%s v%s\n", name, serverConfig.Version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: serverConfig.LogLevel,
	}))

	logger.Info("Starting jobmon service",
		slog.String("service", name),
		slog.String("version", serverConfig.Version),
	)

	logger.Info("Loaded server configuration",
		slog.String("host", serverConfig.Host),
		slog.Int("port", serverConfig.Port),
		slog.Duration("read_timeout", serverConfig.ReadTimeout),
		slog.Duration("write_timeout", serverConfig.WriteTimeout),
		slog.Duration("shutdown_timeout", serverConfig.ShutdownTimeout),
		slog.String("log_level", serverConfig.LogLevel.String()),
	)

	// Load rate limiter configuration
	middlewareConfig := middleware.LoadConfig()

	// Create rate limiter instance (graceful shutdown handled by server.shutdown())
	rateLimiter := middleware.NewInMemoryRateLimiter(middlewareConfig)

	logger.Info("Rate limiter initialized",
		slog.Int("global_rps", middlewareConfig.GlobalRPS),
		slog.Int("caller_rps", middlewareConfig.CallerRPS),
		slog.Int("anonymous_rps", middlewareConfig.AnonymousRPS),
	)

	// Workspace connection: missing host or warehouse id is a degraded
	// state, never a startup failure.
	platformConfig := platform.LoadConfig()

	resolver := identity.NewResolver(platformConfig, logger)

	aliasConfig, err := aliasing.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("Failed to load SKU alias configuration", slog.String("error", err.Error()))
	}

	skuResolver := aliasing.NewResolver(aliasConfig)
	if skuResolver.Count() > 0 {
		logger.Info("SKU aliasing enabled", slog.Int("aliases", skuResolver.Count()))
	}

	// The service principal client backs the system table store. A nil
	// concrete client must not be wrapped in the Querier interface.
	var querier monitor.Querier
	if service := resolver.Service(); service != nil {
		querier = service
	}

	store := monitor.NewStore(querier, platformConfig.WarehouseID, skuResolver)
	if store.Configured() {
		logger.Info("System table store configured",
			slog.String("warehouse_id", platformConfig.WarehouseID),
		)
	} else {
		logger.Warn("Warehouse not configured - system table endpoints serve empty results",
			slog.String("note", "Set DATABRICKS_HOST and JOBMON_WAREHOUSE_ID to enable"),
		)
	}

	server := api.NewServer(serverConfig, store, api.NewResolverSource(resolver), rateLimiter)

	if err := server.Start(); err != nil {
		logger.Error("Server failed to start",
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger.Info("jobmon service stopped")
}
