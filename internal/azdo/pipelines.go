package azdo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"

	"github.com/buildgrid/azdo-mcp/internal/errortypes"
	"github.com/buildgrid/azdo-mcp/internal/tools"
)

// ListPipelines returns the build definitions of the project with both
// the raw folder and a normalized path.
func (c *Client) ListPipelines(ctx context.Context, project string) ([]tools.PipelineSummary, error) {
	resp, err := c.builds.GetDefinitions(ctx, build.GetDefinitionsArgs{Project: &project})
	if err != nil {
		return nil, errortypes.APIError(err, fmt.Sprintf("Failed to list pipelines in project '%s'", project))
	}

	pipelines := []tools.PipelineSummary{}
	if resp == nil {
		return pipelines, nil
	}
	for _, def := range resp.Value {
		summary := tools.PipelineSummary{WebURL: webLink(def.Links)}
		if def.Id != nil {
			summary.ID = *def.Id
		}
		if def.Name != nil {
			summary.Name = *def.Name
		}
		if def.Path != nil {
			summary.Folder = *def.Path
			summary.Path = normalizeFolder(*def.Path)
		}
		if def.Url != nil {
			summary.URL = *def.Url
		}
		pipelines = append(pipelines, summary)
	}
	return pipelines, nil
}

// RunPipeline looks up the definition, then queues a run of it. A
// missing definition is a not-found error and queues nothing.
func (c *Client) RunPipeline(ctx context.Context, project string, pipelineID int, branch, parametersJSON string) (*tools.RunPipelineResponse, error) {
	def, err := c.builds.GetDefinition(ctx, build.GetDefinitionArgs{
		Project:      &project,
		DefinitionId: &pipelineID,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errortypes.NotFoundError(err, fmt.Sprintf("Pipeline with ID %d not found in project '%s'.", pipelineID, project))
		}
		return nil, errortypes.APIError(err, fmt.Sprintf("Failed to look up pipeline %d in project '%s'", pipelineID, project))
	}

	definitionID := pipelineID
	if def != nil && def.Id != nil {
		definitionID = *def.Id
	}
	run := build.Build{
		Definition: &build.DefinitionReference{Id: &definitionID},
	}
	if branch != "" {
		ref := normalizeBranch(branch)
		run.SourceBranch = &ref
	}
	if parametersJSON != "" {
		parameters := map[string]string{}
		if err := json.Unmarshal([]byte(parametersJSON), &parameters); err != nil {
			return nil, errortypes.ValidationError(err, "Pipeline parameters must be a JSON object of string values.")
		}
		encoded, err := json.Marshal(parameters)
		if err != nil {
			return nil, errortypes.InternalError(err, "Failed to encode pipeline parameters")
		}
		serialized := string(encoded)
		run.Parameters = &serialized
	}

	queued, err := c.builds.QueueBuild(ctx, build.QueueBuildArgs{
		Project: &project,
		Build:   &run,
	})
	if err != nil {
		return nil, errortypes.APIError(err, fmt.Sprintf("Failed to queue pipeline %d in project '%s'", pipelineID, project))
	}

	resp := &tools.RunPipelineResponse{
		PipelineID: pipelineID,
		Project:    project,
	}
	if queued == nil {
		return resp, nil
	}
	resp.Status = statusString(queued.Status)
	resp.QueueTime = formatTime(queued.QueueTime)
	resp.Reason = reasonString(queued.Reason)
	resp.RequestedBy = identityName(queued.RequestedBy)
	resp.WebURL = webLink(queued.Links)
	if queued.Id != nil {
		resp.BuildID = *queued.Id
	}
	if queued.Url != nil {
		resp.URL = *queued.Url
	}
	return resp, nil
}

// GetRunStatus returns a snapshot of one build, including the pipeline
// it belongs to and all lifecycle timestamps.
func (c *Client) GetRunStatus(ctx context.Context, project string, buildID int) (*tools.PipelineRunStatus, error) {
	run, err := c.builds.GetBuild(ctx, build.GetBuildArgs{
		Project: &project,
		BuildId: &buildID,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errortypes.NotFoundError(err, fmt.Sprintf("Build with ID %d not found in project '%s'.", buildID, project))
		}
		return nil, errortypes.APIError(err, fmt.Sprintf("Failed to look up build %d in project '%s'", buildID, project))
	}

	status := &tools.PipelineRunStatus{
		BuildID: buildID,
		Project: project,
	}
	if run == nil {
		return status, nil
	}
	status.Status = statusString(run.Status)
	status.Result = resultString(run.Result)
	status.QueueTime = formatTime(run.QueueTime)
	status.StartTime = formatTime(run.StartTime)
	status.FinishTime = formatTime(run.FinishTime)
	status.Reason = reasonString(run.Reason)
	status.RequestedBy = identityName(run.RequestedBy)
	status.LastChanged = formatTime(run.LastChangedDate)
	status.WebURL = webLink(run.Links)
	if run.Id != nil {
		status.BuildID = *run.Id
	}
	if run.Definition != nil {
		if run.Definition.Id != nil {
			status.PipelineID = *run.Definition.Id
		}
		if run.Definition.Name != nil {
			status.PipelineName = *run.Definition.Name
		}
	}
	if run.SourceBranch != nil {
		status.SourceBranch = *run.SourceBranch
	}
	if run.SourceVersion != nil {
		status.SourceVersion = *run.SourceVersion
	}
	if run.Url != nil {
		status.URL = *run.Url
	}
	return status, nil
}

// webLink resolves the browser URL from the service's _links payload.
// The payload is loosely typed; anything unexpected yields "".
func webLink(links interface{}) string {
	relations, ok := links.(map[string]interface{})
	if !ok {
		return ""
	}
	web, ok := relations["web"].(map[string]interface{})
	if !ok {
		return ""
	}
	href, _ := web["href"].(string)
	return href
}

// normalizeFolder trims leading and trailing path separators from a
// definition folder, which the service reports in backslash form.
func normalizeFolder(folder string) string {
	return strings.Trim(folder, "\\/")
}

// normalizeBranch expands a short branch name into its full ref form.
func normalizeBranch(branch string) string {
	if strings.HasPrefix(branch, "refs/") {
		return branch
	}
	return "refs/heads/" + branch
}

func formatTime(t *azuredevops.Time) string {
	if t == nil {
		return ""
	}
	return t.Time.UTC().Format(time.RFC3339)
}

func identityName(identity *webapi.IdentityRef) string {
	if identity == nil || identity.DisplayName == nil {
		return ""
	}
	return *identity.DisplayName
}

func statusString(status *build.BuildStatus) string {
	if status == nil {
		return ""
	}
	return string(*status)
}

func resultString(result *build.BuildResult) string {
	if result == nil {
		return ""
	}
	return string(*result)
}

func reasonString(reason *build.BuildReason) string {
	if reason == nil {
		return ""
	}
	return string(*reason)
}
