// Package tools defines the tool names and request/response shapes
// exposed by the Azure DevOps MCP server.
package tools

const (
	// ToolListProjects is the name of the project listing MCP tool
	ToolListProjects = "list_azure_boards_projects"

	// ToolListWorkItems is the name of the work item listing MCP tool
	ToolListWorkItems = "list_azure_boards_work_items"

	// ToolCreateWorkItem is the name of the work item creation MCP tool
	ToolCreateWorkItem = "create_azure_boards_work_item"

	// ToolListPipelines is the name of the pipeline listing MCP tool
	ToolListPipelines = "list_azure_pipelines"

	// ToolRunPipeline is the name of the pipeline run MCP tool
	ToolRunPipeline = "run_azure_pipeline"

	// ToolGetPipelineRunStatus is the name of the run status MCP tool
	ToolGetPipelineRunStatus = "get_azure_pipeline_run_status"

	// ToolSayHello is the name of the diagnostic MCP tool
	ToolSayHello = "say_hello"

	// DefaultWorkItemType is the work item type used when a
	// list_azure_boards_work_items request does not specify one
	DefaultWorkItemType = "Task"

	// DefaultMaxCount is the number of work items returned when a
	// request omits max_count or supplies an unparseable value
	DefaultMaxCount = 10

	// HelloGreeting is the fixed string returned by say_hello
	HelloGreeting = "Hello from the Azure DevOps MCP server!"
)

// ErrorBody is the uniform failure shape returned by every tool.
type ErrorBody struct {
	// Error is a human-readable description of the failure
	Error string `json:"error"`
}

// ListProjectsRequest defines the input schema for list_azure_boards_projects.
// The tool takes no parameters.
type ListProjectsRequest struct{}

// ListWorkItemsRequest defines the input schema for list_azure_boards_work_items
type ListWorkItemsRequest struct {
	// Project is the name of the Azure DevOps project (required)
	Project string `json:"project"`

	// WorkItemType filters results to one work item type.
	// Defaults to DefaultWorkItemType when empty.
	WorkItemType string `json:"work_item_type,omitempty"`

	// MaxCount is the maximum number of items to return, as a numeric
	// string. Unparseable values fall back to DefaultMaxCount.
	MaxCount string `json:"max_count,omitempty"`
}

// WorkItemSummary is one element of a list_azure_boards_work_items result
type WorkItemSummary struct {
	// ID is the work item identifier
	ID int `json:"id"`

	// Title is the work item title ("Untitled" when the field is absent)
	Title string `json:"title"`

	// State is the workflow state ("Unknown" when the field is absent)
	State string `json:"state"`

	// AssignedTo is the assignee display name ("Unassigned" when absent)
	AssignedTo string `json:"assignedTo"`

	// Tags is the semicolon-separated tag list ("" when absent)
	Tags string `json:"tags"`
}

// CreateWorkItemRequest defines the input schema for create_azure_boards_work_item
type CreateWorkItemRequest struct {
	// Project is the name of the Azure DevOps project (required)
	Project string `json:"project"`

	// WorkItemType is the type of work item to create (required)
	WorkItemType string `json:"work_item_type"`

	// Title is the work item title (required)
	Title string `json:"title"`

	// Description is the work item description (optional)
	Description string `json:"description,omitempty"`

	// AssignedTo is the assignee identity, typically an email (optional)
	AssignedTo string `json:"assigned_to,omitempty"`

	// Tags is a semicolon-separated tag list (optional)
	Tags string `json:"tags,omitempty"`
}

// CreateWorkItemResponse defines the output schema for create_azure_boards_work_item
type CreateWorkItemResponse struct {
	// ID is the identifier of the created work item
	ID int `json:"id"`

	// URL is the REST API URL of the created work item
	URL string `json:"url"`

	// Message is a confirmation message containing the new identifier
	Message string `json:"message"`
}

// ListPipelinesRequest defines the input schema for list_azure_pipelines
type ListPipelinesRequest struct {
	// Project is the name of the Azure DevOps project (required)
	Project string `json:"project"`
}

// PipelineSummary is one element of a list_azure_pipelines result
type PipelineSummary struct {
	// ID is the pipeline (build definition) identifier
	ID int `json:"id"`

	// Name is the pipeline name
	Name string `json:"name"`

	// Folder is the raw folder path as reported by the service
	Folder string `json:"folder"`

	// URL is the REST API URL of the definition
	URL string `json:"url"`

	// WebURL is the browser URL resolved from the "web" link
	// relation ("" when the relation is absent)
	WebURL string `json:"webUrl"`

	// Path is Folder with leading and trailing path separators trimmed
	Path string `json:"path"`
}

// RunPipelineRequest defines the input schema for run_azure_pipeline
type RunPipelineRequest struct {
	// Project is the name of the Azure DevOps project (required)
	Project string `json:"project"`

	// PipelineID is the pipeline identifier as a numeric string; it
	// must parse to a positive integer
	PipelineID string `json:"pipeline_id"`

	// Branch is the source branch to run against (optional; the
	// pipeline's default branch applies when empty)
	Branch string `json:"branch,omitempty"`

	// Parameters is an optional JSON object of string-to-string
	// pipeline parameters
	Parameters string `json:"parameters,omitempty"`
}

// RunPipelineResponse defines the output schema for run_azure_pipeline
type RunPipelineResponse struct {
	// BuildID is the identifier of the queued run
	BuildID int `json:"buildId"`

	// PipelineID is the identifier of the pipeline that was run
	PipelineID int `json:"pipelineId"`

	// Project is the project the run belongs to
	Project string `json:"project"`

	// Status is the run status at queue time
	Status string `json:"status"`

	// QueueTime is the RFC 3339 queue timestamp
	QueueTime string `json:"queueTime"`

	// Reason is the run reason reported by the service
	Reason string `json:"reason"`

	// RequestedBy is the display name of the requesting identity
	RequestedBy string `json:"requestedBy"`

	// WebURL is the browser URL of the run ("" when unresolvable)
	WebURL string `json:"webUrl"`

	// URL is the REST API URL of the run
	URL string `json:"url"`
}

// GetPipelineRunStatusRequest defines the input schema for get_azure_pipeline_run_status
type GetPipelineRunStatusRequest struct {
	// Project is the name of the Azure DevOps project (required)
	Project string `json:"project"`

	// BuildID is the run identifier as a numeric string; it must
	// parse to a positive integer
	BuildID string `json:"build_id"`
}

// PipelineRunStatus defines the output schema for get_azure_pipeline_run_status
type PipelineRunStatus struct {
	// BuildID is the run identifier
	BuildID int `json:"buildId"`

	// PipelineID is the identifier of the pipeline the run belongs to
	PipelineID int `json:"pipelineId"`

	// PipelineName is the name of the pipeline the run belongs to
	PipelineName string `json:"pipelineName"`

	// Project is the project the run belongs to
	Project string `json:"project"`

	// Status is the current run status
	Status string `json:"status"`

	// Result is the run result, empty while the run is in progress
	Result string `json:"result,omitempty"`

	// QueueTime, StartTime and FinishTime are RFC 3339 timestamps,
	// omitted while unset on the remote side
	QueueTime  string `json:"queueTime,omitempty"`
	StartTime  string `json:"startTime,omitempty"`
	FinishTime string `json:"finishTime,omitempty"`

	// SourceBranch is the branch the run was queued against
	SourceBranch string `json:"sourceBranch"`

	// SourceVersion is the commit the run was queued against
	SourceVersion string `json:"sourceVersion"`

	// Reason is the run reason reported by the service
	Reason string `json:"reason"`

	// RequestedBy is the display name of the requesting identity
	RequestedBy string `json:"requestedBy"`

	// LastChanged is the RFC 3339 last-changed timestamp
	LastChanged string `json:"lastChanged,omitempty"`

	// WebURL is the browser URL of the run ("" when unresolvable)
	WebURL string `json:"webUrl"`

	// URL is the REST API URL of the run
	URL string `json:"url"`
}

// SayHelloRequest defines the input schema for say_hello.
// The tool ignores all input.
type SayHelloRequest struct{}
