package server

import (
	"errors"
	"log/slog"

	"github.com/buildgrid/azdo-mcp/internal/errortypes"
	"github.com/buildgrid/azdo-mcp/internal/telemetry"
	"github.com/buildgrid/azdo-mcp/internal/tools"
)

// Uniform validation messages. These are complete sentences returned
// verbatim in the error body.
const (
	msgMissingProject      = "Project name is required and cannot be empty."
	msgMissingWorkItemType = "Work item type is required and cannot be empty."
	msgMissingTitle        = "Title is required and cannot be empty."
	msgPipelineIDInvalid   = "Pipeline ID must be a positive integer."
	msgBuildIDInvalid      = "Build ID must be a positive integer."
)

// validationError wraps a message that is shown to the caller verbatim.
func validationError(message string) error {
	return errortypes.ValidationError(errors.New("invalid tool request"), message)
}

// failure records a failed invocation and converts the error into the
// uniform {"error": ...} body. Every remote failure resolves here;
// nothing propagates to the MCP layer as a raw error.
func (s *MCPDevOpsToolServer) failure(tool string, err error) tools.ErrorBody {
	s.metrics.IncrementCounter(telemetry.ToolFailuresMetric(tool), 1)

	switch {
	case errortypes.IsNotFoundError(err):
		s.metrics.IncrementCounter(telemetry.MetricRemoteNotFound, 1)
		slog.Warn("Requested entity not found", "tool", tool, "error", err.Error())
	case errortypes.IsValidationError(err):
		slog.Warn("Rejected invalid tool request", "tool", tool, "error", err.Error())
	default:
		s.metrics.IncrementCounter(telemetry.MetricRemoteCallsFailure, 1)
		errortypes.LogError(nil, err)
	}

	return errorBody(err)
}

// errorBody renders an error as the uniform error shape. Validation and
// not-found messages stand on their own; other categories keep the
// underlying cause attached.
func errorBody(err error) tools.ErrorBody {
	var appErr *errortypes.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		switch appErr.Type {
		case errortypes.ErrorTypeValidation, errortypes.ErrorTypeNotFound:
			return tools.ErrorBody{Error: appErr.Message}
		}
		return tools.ErrorBody{Error: appErr.Error()}
	}
	return tools.ErrorBody{Error: err.Error()}
}
