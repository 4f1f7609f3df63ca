package azdo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	"github.com/buildgrid/azdo-mcp/internal/errortypes"
	"github.com/buildgrid/azdo-mcp/internal/tools"
)

// Work item field reference names.
const (
	fieldID         = "System.Id"
	fieldTitle      = "System.Title"
	fieldState      = "System.State"
	fieldAssignedTo = "System.AssignedTo"
	fieldTags       = "System.Tags"
)

// Fallback labels for absent or malformed work item fields.
const (
	fallbackTitle    = "Untitled"
	fallbackState    = "Unknown"
	fallbackAssignee = "Unassigned"
)

// wiqlRecentByType selects work item IDs of one type in one project,
// most recently changed first. Both literals are escaped before
// interpolation.
const wiqlRecentByType = "SELECT [System.Id] FROM WorkItems" +
	" WHERE [System.TeamProject] = '%s' AND [System.WorkItemType] = '%s'" +
	" ORDER BY [System.ChangedDate] DESC"

// ListProjects returns the names of all projects in the organization.
// The project list is paginated; pages are followed until the service
// stops returning a continuation token.
func (c *Client) ListProjects(ctx context.Context) ([]string, error) {
	names := []string{}
	var continuation *int

	for {
		resp, err := c.projects.GetProjects(ctx, core.GetProjectsArgs{ContinuationToken: continuation})
		if err != nil {
			return nil, errortypes.APIError(err, "Failed to list projects")
		}
		if resp == nil {
			return names, nil
		}
		for _, project := range resp.Value {
			if project.Name != nil {
				names = append(names, *project.Name)
			}
		}
		if resp.ContinuationToken == "" {
			return names, nil
		}
		// The project continuation token is a numeric offset.
		token, err := strconv.Atoi(resp.ContinuationToken)
		if err != nil {
			return names, nil
		}
		continuation = &token
	}
}

// ListWorkItems queries work item IDs via WIQL, truncates to maxCount,
// then batch-fetches the display fields.
func (c *Client) ListWorkItems(ctx context.Context, project, workItemType string, maxCount int) ([]tools.WorkItemSummary, error) {
	query := fmt.Sprintf(wiqlRecentByType, escapeWiqlLiteral(project), escapeWiqlLiteral(workItemType))

	result, err := c.workItems.QueryByWiql(ctx, workitemtracking.QueryByWiqlArgs{
		Wiql:    &workitemtracking.Wiql{Query: &query},
		Project: &project,
	})
	if err != nil {
		return nil, errortypes.APIError(err, fmt.Sprintf("Failed to query work items in project '%s'", project))
	}

	summaries := []tools.WorkItemSummary{}
	if result == nil || result.WorkItems == nil || len(*result.WorkItems) == 0 {
		return summaries, nil
	}

	refs := *result.WorkItems
	if len(refs) > maxCount {
		refs = refs[:maxCount]
	}
	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		if ref.Id != nil {
			ids = append(ids, *ref.Id)
		}
	}
	if len(ids) == 0 {
		return summaries, nil
	}

	fields := []string{fieldID, fieldTitle, fieldState, fieldAssignedTo, fieldTags}
	items, err := c.workItems.GetWorkItems(ctx, workitemtracking.GetWorkItemsArgs{
		Ids:    &ids,
		Fields: &fields,
	})
	if err != nil {
		return nil, errortypes.APIError(err, fmt.Sprintf("Failed to fetch work items in project '%s'", project))
	}
	if items == nil {
		return summaries, nil
	}

	for _, item := range *items {
		summaries = append(summaries, summarizeWorkItem(item))
	}
	return summaries, nil
}

// CreateWorkItem builds a JSON patch document (title always, optional
// fields only when provided) and creates one work item.
func (c *Client) CreateWorkItem(ctx context.Context, req tools.CreateWorkItemRequest) (*tools.CreateWorkItemResponse, error) {
	document := []webapi.JsonPatchOperation{
		patchAdd("/fields/"+fieldTitle, req.Title),
	}
	if req.Description != "" {
		document = append(document, patchAdd("/fields/System.Description", req.Description))
	}
	if req.AssignedTo != "" {
		document = append(document, patchAdd("/fields/"+fieldAssignedTo, req.AssignedTo))
	}
	if req.Tags != "" {
		document = append(document, patchAdd("/fields/"+fieldTags, req.Tags))
	}

	created, err := c.workItems.CreateWorkItem(ctx, workitemtracking.CreateWorkItemArgs{
		Type:     &req.WorkItemType,
		Project:  &req.Project,
		Document: &document,
	})
	if err != nil {
		if isIdentityError(err) {
			return nil, errortypes.APIError(err, fmt.Sprintf("Failed to resolve assignee '%s'", req.AssignedTo))
		}
		return nil, errortypes.APIError(err, fmt.Sprintf("Failed to create work item in project '%s'", req.Project))
	}

	resp := &tools.CreateWorkItemResponse{}
	if created != nil {
		if created.Id != nil {
			resp.ID = *created.Id
		}
		if created.Url != nil {
			resp.URL = *created.Url
		}
	}
	resp.Message = fmt.Sprintf("Work item %d created successfully.", resp.ID)
	return resp, nil
}

// summarizeWorkItem maps a loosely-typed work item payload to the
// summary shape, falling back per field when a value is absent or has an
// unexpected type.
func summarizeWorkItem(item workitemtracking.WorkItem) tools.WorkItemSummary {
	summary := tools.WorkItemSummary{
		Title:      fallbackTitle,
		State:      fallbackState,
		AssignedTo: fallbackAssignee,
	}
	if item.Id != nil {
		summary.ID = *item.Id
	}
	if item.Fields == nil {
		return summary
	}

	fields := *item.Fields
	if title, ok := fields[fieldTitle].(string); ok && title != "" {
		summary.Title = title
	}
	if state, ok := fields[fieldState].(string); ok && state != "" {
		summary.State = state
	}
	summary.AssignedTo = assigneeDisplayName(fields[fieldAssignedTo])
	if tags, ok := fields[fieldTags].(string); ok {
		summary.Tags = tags
	}
	return summary
}

// assigneeDisplayName decodes the System.AssignedTo value, which the
// service returns either as an identity object or a bare string.
func assigneeDisplayName(value interface{}) string {
	switch assignee := value.(type) {
	case map[string]interface{}:
		if name, ok := assignee["displayName"].(string); ok && name != "" {
			return name
		}
	case string:
		if assignee != "" {
			return assignee
		}
	}
	return fallbackAssignee
}

// escapeWiqlLiteral doubles single quotes so a user-supplied name cannot
// terminate the string literal it is interpolated into.
func escapeWiqlLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func patchAdd(path string, value interface{}) webapi.JsonPatchOperation {
	return webapi.JsonPatchOperation{
		Op:    &webapi.OperationValues.Add,
		Path:  &path,
		Value: value,
	}
}
