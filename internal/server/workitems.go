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

// handleListProjects handles the list_azure_boards_projects MCP tool call.
func (s *MCPDevOpsToolServer) handleListProjects(ctx *server.Context, req tools.ListProjectsRequest) (any, error) {
	slog.Info("Processing list_azure_boards_projects request")
	defer s.observe(tools.ToolListProjects, time.Now())

	names, err := s.boards.ListProjects(requestContext(ctx))
	if err != nil {
		return s.failure(tools.ToolListProjects, err), nil
	}

	s.metrics.IncrementCounter(telemetry.MetricRemoteCallsSuccess, 1)
	slog.Info("Successfully listed projects", "count", len(names))
	return names, nil
}

// handleListWorkItems handles the list_azure_boards_work_items MCP tool call.
func (s *MCPDevOpsToolServer) handleListWorkItems(ctx *server.Context, req tools.ListWorkItemsRequest) (any, error) {
	slog.Info("Processing list_azure_boards_work_items request",
		"project", req.Project, "work_item_type", req.WorkItemType, "max_count", req.MaxCount)
	defer s.observe(tools.ToolListWorkItems, time.Now())

	if strings.TrimSpace(req.Project) == "" {
		return s.failure(tools.ToolListWorkItems, validationError(msgMissingProject)), nil
	}

	workItemType := req.WorkItemType
	if workItemType == "" {
		workItemType = s.defaultWorkItemType
		slog.Debug("Using default work item type", "work_item_type", workItemType)
	}

	// An unparseable or non-positive max_count falls back to the default
	// instead of failing the request.
	maxCount := s.defaultMaxCount
	if req.MaxCount != "" {
		parsed, err := strconv.Atoi(req.MaxCount)
		if err != nil || parsed <= 0 {
			slog.Warn("Invalid max_count value, using default",
				"max_count", req.MaxCount, "default", s.defaultMaxCount)
		} else {
			maxCount = parsed
		}
	}

	items, err := s.boards.ListWorkItems(requestContext(ctx), req.Project, workItemType, maxCount)
	if err != nil {
		return s.failure(tools.ToolListWorkItems, err), nil
	}

	s.metrics.IncrementCounter(telemetry.MetricRemoteCallsSuccess, 1)
	slog.Info("Successfully listed work items", "project", req.Project, "count", len(items))
	return items, nil
}

// handleCreateWorkItem handles the create_azure_boards_work_item MCP tool call.
func (s *MCPDevOpsToolServer) handleCreateWorkItem(ctx *server.Context, req tools.CreateWorkItemRequest) (any, error) {
	slog.Info("Processing create_azure_boards_work_item request",
		"project", req.Project, "work_item_type", req.WorkItemType)
	defer s.observe(tools.ToolCreateWorkItem, time.Now())

	if strings.TrimSpace(req.Project) == "" {
		return s.failure(tools.ToolCreateWorkItem, validationError(msgMissingProject)), nil
	}
	if strings.TrimSpace(req.WorkItemType) == "" {
		return s.failure(tools.ToolCreateWorkItem, validationError(msgMissingWorkItemType)), nil
	}
	if strings.TrimSpace(req.Title) == "" {
		return s.failure(tools.ToolCreateWorkItem, validationError(msgMissingTitle)), nil
	}

	created, err := s.boards.CreateWorkItem(requestContext(ctx), req)
	if err != nil {
		return s.failure(tools.ToolCreateWorkItem, err), nil
	}

	s.metrics.IncrementCounter(telemetry.MetricRemoteCallsSuccess, 1)
	slog.Info("Successfully created work item", "project", req.Project, "id", created.ID)
	return created, nil
}
