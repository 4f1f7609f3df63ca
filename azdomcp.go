// Package azdomcp exposes Azure DevOps work item and pipeline
// operations as MCP tools, and provides a high-level API for embedding
// those tools in another application.
package azdomcp

import (
	"context"
	"log/slog"

	"github.com/buildgrid/azdo-mcp/internal/azdo"
	"github.com/buildgrid/azdo-mcp/internal/config"
	"github.com/buildgrid/azdo-mcp/internal/errortypes"
	"github.com/buildgrid/azdo-mcp/internal/server"
	"github.com/buildgrid/azdo-mcp/internal/telemetry"
	"github.com/buildgrid/azdo-mcp/internal/tools"
)

// Config represents the configuration for the Azure DevOps MCP service.
type Config = config.Config

// Server wraps the configuration, the shared Azure DevOps connection,
// and the MCP tool server.
type Server struct {
	config     *config.Config
	client     *azdo.Client
	toolServer *server.MCPDevOpsToolServer
	logger     *slog.Logger
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewServer creates a new Azure DevOps MCP Server with the given options.
// If opts.Config is provided, it will be used directly. Otherwise, if
// opts.ConfigPath is provided, configuration will be loaded from that
// path; failing both, DefaultConfig() is used. Connection settings are
// validated here: a missing organization URL, tenant ID, or client ID
// fails construction before any tool can run.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for server initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration for server initialization")
		cfg = DefaultConfig()
	}

	client, err := CreateConnection(cfg, logger)
	if err != nil {
		logger.Error("Failed to create the Azure DevOps connection", "error", err)
		return nil, err
	}

	logger.Info("Initializing DevOps tool server component")
	toolServer := server.NewDevOpsToolServer(client, client)
	toolServer.SetDefaults(cfg.Boards.DefaultWorkItemType, cfg.Boards.DefaultMaxCount)
	if err := toolServer.Initialize(); err != nil {
		logger.Error("Failed to initialize MCP DevOps tool server component", "error", err)
		return nil, errortypes.ConfigError(err, "Failed to initialize MCP DevOps tool server component")
	}

	logger.Info("Azure DevOps MCP server successfully initialized")
	return &Server{
		config:     cfg,
		client:     client,
		toolServer: toolServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the service. The
// connection settings remain empty and must be supplied by the caller
// or the environment.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// CreateConnection builds the shared Azure DevOps client from the
// configured connection settings. The client is immutable and safe to
// share across concurrent callers.
func CreateConnection(cfg *Config, logger *slog.Logger) (*azdo.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Connecting to Azure DevOps", "organization_url", cfg.Azure.OrganizationURL)
	client, err := azdo.NewClient(context.Background(), azdo.Config{
		OrganizationURL: cfg.Azure.OrganizationURL,
		TenantID:        cfg.Azure.TenantID,
		ClientID:        cfg.Azure.ClientID,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Azure DevOps connection established")
	return client, nil
}

// Start starts the MCP server on the stdio transport. It blocks until
// the transport is closed.
func (s *Server) Start() error {
	s.logger.Info("Starting Azure DevOps MCP service")
	return s.toolServer.Start()
}

// Stop stops the service. The shared connection needs no teardown.
func (s *Server) Stop() error {
	s.logger.Info("Stopping Azure DevOps MCP service")
	return s.toolServer.Stop()
}

// ListProjects returns the names of all projects in the organization.
func (s *Server) ListProjects(ctx context.Context) ([]string, error) {
	return s.client.ListProjects(ctx)
}

// ListWorkItems returns recent work items of one type in a project.
// An empty workItemType or non-positive maxCount falls back to the
// configured defaults.
func (s *Server) ListWorkItems(ctx context.Context, project, workItemType string, maxCount int) ([]tools.WorkItemSummary, error) {
	if workItemType == "" {
		workItemType = s.config.Boards.DefaultWorkItemType
	}
	if maxCount <= 0 {
		maxCount = s.config.Boards.DefaultMaxCount
	}
	return s.client.ListWorkItems(ctx, project, workItemType, maxCount)
}

// Boards returns the work item service backed by the shared connection.
func (s *Server) Boards() azdo.BoardsService {
	return s.client
}

// Pipelines returns the pipeline service backed by the shared connection.
func (s *Server) Pipelines() azdo.PipelinesService {
	return s.client
}

// Metrics returns the tool server's metrics collector.
func (s *Server) Metrics() *telemetry.MetricsCollector {
	return s.toolServer.Metrics()
}
