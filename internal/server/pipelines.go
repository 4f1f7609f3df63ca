package server

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/localrivet/gomcp/server"

	"github.com/buildgrid/azdo-mcp/internal/telemetry"
	"github.com/buildgrid/azdo-mcp/internal/tools"
)

// handleListPipelines handles the list_azure_pipelines MCP tool call.
func (s *MCPDevOpsToolServer) handleListPipelines(ctx *server.Context, req tools.ListPipelinesRequest) (any, error) {
	slog.Info("Processing list_azure_pipelines request", "project", req.Project)
	defer s.observe(tools.ToolListPipelines, time.Now())

	if strings.TrimSpace(req.Project) == "" {
		return s.failure(tools.ToolListPipelines, validationError(msgMissingProject)), nil
	}

	pipelines, err := s.pipelines.ListPipelines(requestContext(ctx), req.Project)
	if err != nil {
		return s.failure(tools.ToolListPipelines, err), nil
	}

	s.metrics.IncrementCounter(telemetry.MetricRemoteCallsSuccess, 1)
	slog.Info("Successfully listed pipelines", "project", req.Project, "count", len(pipelines))
	return pipelines, nil
}

// handleRunPipeline handles the run_azure_pipeline MCP tool call.
// Validation order: project, pipeline id, definition existence (remote),
// parameter JSON, queue.
func (s *MCPDevOpsToolServer) handleRunPipeline(ctx *server.Context, req tools.RunPipelineRequest) (any, error) {
	slog.Info("Processing run_azure_pipeline request",
		"project", req.Project, "pipeline_id", req.PipelineID, "branch", req.Branch)
	defer s.observe(tools.ToolRunPipeline, time.Now())

	if strings.TrimSpace(req.Project) == "" {
		return s.failure(tools.ToolRunPipeline, validationError(msgMissingProject)), nil
	}
	pipelineID, err := parsePositiveInt(req.PipelineID)
	if err != nil {
		return s.failure(tools.ToolRunPipeline, validationError(msgPipelineIDInvalid)), nil
	}

	run, err := s.pipelines.RunPipeline(requestContext(ctx), req.Project, pipelineID, req.Branch, req.Parameters)
	if err != nil {
		return s.failure(tools.ToolRunPipeline, err), nil
	}

	s.metrics.IncrementCounter(telemetry.MetricRemoteCallsSuccess, 1)
	slog.Info("Successfully queued pipeline run",
		"project", req.Project, "pipeline_id", pipelineID, "build_id", run.BuildID)
	return run, nil
}

// handleGetPipelineRunStatus handles the get_azure_pipeline_run_status MCP tool call.
func (s *MCPDevOpsToolServer) handleGetPipelineRunStatus(ctx *server.Context, req tools.GetPipelineRunStatusRequest) (any, error) {
	slog.Info("Processing get_azure_pipeline_run_status request",
		"project", req.Project, "build_id", req.BuildID)
	defer s.observe(tools.ToolGetPipelineRunStatus, time.Now())

	if strings.TrimSpace(req.Project) == "" {
		return s.failure(tools.ToolGetPipelineRunStatus, validationError(msgMissingProject)), nil
	}
	buildID, err := parsePositiveInt(req.BuildID)
	if err != nil {
		return s.failure(tools.ToolGetPipelineRunStatus, validationError(msgBuildIDInvalid)), nil
	}

	status, err := s.pipelines.GetRunStatus(requestContext(ctx), req.Project, buildID)
	if err != nil {
		return s.failure(tools.ToolGetPipelineRunStatus, err), nil
	}

	s.metrics.IncrementCounter(telemetry.MetricRemoteCallsSuccess, 1)
	slog.Info("Successfully fetched pipeline run status",
		"project", req.Project, "build_id", buildID, "status", status.Status)
	return status, nil
}

// parsePositiveInt parses an identifier string that must be a positive
// integer.
func parsePositiveInt(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, strconv.ErrRange
	}
	return value, nil
}
