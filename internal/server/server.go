// Package server provides the MCP server implementation for the Azure
// DevOps tool surface.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/localrivet/gomcp/server"

	"github.com/buildgrid/azdo-mcp/internal/azdo"
	"github.com/buildgrid/azdo-mcp/internal/errortypes"
	"github.com/buildgrid/azdo-mcp/internal/telemetry"
	"github.com/buildgrid/azdo-mcp/internal/tools"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// MCPDevOpsToolServer exposes the Azure DevOps tool handlers over MCP.
// Handlers hold no state of their own; the injected services are
// read-only and shared across concurrent invocations.
type MCPDevOpsToolServer struct {
	boards    azdo.BoardsService
	pipelines azdo.PipelinesService
	metrics   *telemetry.MetricsCollector
	mcpServer server.Server

	defaultWorkItemType string
	defaultMaxCount     int
}

// NewDevOpsToolServer creates a new MCPDevOpsToolServer instance.
func NewDevOpsToolServer(boards azdo.BoardsService, pipelines azdo.PipelinesService) *MCPDevOpsToolServer {
	return &MCPDevOpsToolServer{
		boards:              boards,
		pipelines:           pipelines,
		metrics:             telemetry.NewMetricsCollector(),
		defaultWorkItemType: tools.DefaultWorkItemType,
		defaultMaxCount:     tools.DefaultMaxCount,
	}
}

// SetDefaults overrides the work item query defaults. Zero values keep
// the current setting.
func (s *MCPDevOpsToolServer) SetDefaults(workItemType string, maxCount int) {
	if workItemType != "" {
		s.defaultWorkItemType = workItemType
	}
	if maxCount > 0 {
		s.defaultMaxCount = maxCount
	}
}

// Metrics returns the server's metrics collector.
func (s *MCPDevOpsToolServer) Metrics() *telemetry.MetricsCollector {
	return s.metrics
}

// Initialize initializes the server with dependencies and configurations.
func (s *MCPDevOpsToolServer) Initialize() error {
	slog.Info("Initializing MCP DevOps Tool Server")

	if s.boards == nil || s.pipelines == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}

	// Create the MCP server
	srv := server.NewServer("azdo-mcp")

	// Register work item tools
	srv = srv.Tool(tools.ToolListProjects, "List all projects in the Azure DevOps organization",
		s.handleListProjects)

	srv = srv.Tool(tools.ToolListWorkItems, "List recent work items of one type in a project",
		s.handleListWorkItems)

	srv = srv.Tool(tools.ToolCreateWorkItem, "Create a work item in a project",
		s.handleCreateWorkItem)

	// Register pipeline tools
	srv = srv.Tool(tools.ToolListPipelines, "List the pipelines of a project",
		s.handleListPipelines)

	srv = srv.Tool(tools.ToolRunPipeline, "Queue a run of a pipeline",
		s.handleRunPipeline)

	srv = srv.Tool(tools.ToolGetPipelineRunStatus, "Get the status of a pipeline run",
		s.handleGetPipelineRunStatus)

	// Register diagnostic tool
	srv = srv.Tool(tools.ToolSayHello, "Return a fixed greeting to verify the tool pathway",
		s.handleSayHello)

	s.mcpServer = srv
	slog.Info("MCP DevOps Tool Server initialized successfully", "tool_count", 7)
	return nil
}

// Start starts the MCP server on the stdio transport.
func (s *MCPDevOpsToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	slog.Info("Starting MCP DevOps Tool Server")

	stdioServer := s.mcpServer.AsStdio()
	return stdioServer.Run()
}

// Stop gracefully shuts down the MCP server.
func (s *MCPDevOpsToolServer) Stop() error {
	slog.Info("Stopping MCP DevOps Tool Server")
	// The server will exit when stdin is closed
	return nil
}

// handleSayHello handles the say_hello MCP tool call.
func (s *MCPDevOpsToolServer) handleSayHello(ctx *server.Context, req tools.SayHelloRequest) (string, error) {
	defer s.observe(tools.ToolSayHello, time.Now())
	return tools.HelloGreeting, nil
}

// requestContext returns the context used for remote calls. The stdio
// transport carries no per-request deadline.
func requestContext(_ *server.Context) context.Context {
	return context.Background()
}

// observe records the per-tool metrics for one invocation.
func (s *MCPDevOpsToolServer) observe(tool string, start time.Time) {
	s.metrics.IncrementCounter(telemetry.ToolCallsMetric(tool), 1)
	s.metrics.RecordTimer(telemetry.ToolDurationMetric(tool), time.Since(start))
	s.metrics.RecordTimestamp(telemetry.ToolLastCallMetric(tool))
}
