package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/buildgrid/azdo-mcp/internal/azdo"
	"github.com/buildgrid/azdo-mcp/internal/config"
	"github.com/buildgrid/azdo-mcp/internal/logger"
	"github.com/buildgrid/azdo-mcp/internal/server"
)

func main() {
	// Initialize logging first thing
	appLogger := setupLogging()

	appLogger.Info("Azure DevOps MCP Server - Starting...")

	// Load configuration (defaults, optional config file, environment)
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.LogError(err)
		appLogger.Fatal("Failed to load configuration")
	}

	// Configure logging based on config
	if cfg.Logging.Level != "" {
		appLogger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
		appLogger.Info("Log level set to %s", cfg.Logging.Level)
	}

	if cfg.Logging.Format == "json" {
		appLogger.SetFormat(logger.JSON)
		appLogger.Info("Log format set to JSON")
	}

	// Build the shared Azure DevOps connection. Missing connection
	// settings abort the process here, before any tool is registered.
	connLogger := appLogger.WithContext("connection")
	client, err := azdo.NewClient(context.Background(), azdo.Config{
		OrganizationURL: cfg.Azure.OrganizationURL,
		TenantID:        cfg.Azure.TenantID,
		ClientID:        cfg.Azure.ClientID,
	})
	if err != nil {
		logger.LogError(err)
		appLogger.Fatal("Failed to connect to Azure DevOps")
	}
	connLogger.Info("Azure DevOps connection established")

	// Initialize the MCP server
	srv := server.NewDevOpsToolServer(client, client)
	srv.SetDefaults(cfg.Boards.DefaultWorkItemType, cfg.Boards.DefaultMaxCount)
	srvLogger := appLogger.WithContext("server")

	if err := srv.Initialize(); err != nil {
		err = logger.ConfigError(err, "Failed to initialize MCP server")
		logger.LogError(err)
		appLogger.Fatal("Failed to initialize MCP server")
	}
	srvLogger.Info("MCP server initialized")

	// Handle graceful shutdown
	setupSignalHandler(appLogger)

	// Start the MCP server (this will block until server is terminated)
	srvLogger.Info("Starting MCP server...")
	if err := srv.Start(); err != nil {
		err = logger.APIError(err, "MCP server failed")
		logger.LogError(err)
		appLogger.Fatal("Failed to start MCP server")
	}
}

// setupLogging configures and returns the application logger
func setupLogging() *logger.Logger {
	// Create default configuration
	config := logger.DefaultConfig()

	// Try to get log level from environment variable
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		config.Level = logger.ParseLevel(levelStr)
	}

	// Create and return logger
	appLogger := logger.New(config)
	logger.SetDefaultLogger(appLogger)

	return appLogger
}

// setupSignalHandler sets up a signal handler for graceful shutdown.
// The connection holds no local state, so shutdown only needs to log.
func setupSignalHandler(log *logger.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Received shutdown signal, terminating gracefully...")
		log.Info("Shutdown complete")
		os.Exit(0)
	}()
}
