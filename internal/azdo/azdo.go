// Package azdo provides the shared Azure DevOps connection and the
// service implementations backing the MCP tool handlers. The connection
// is built once at startup and is read-only afterwards, so it is safe to
// share across concurrent tool invocations without locking.
package azdo

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	"github.com/buildgrid/azdo-mcp/internal/errortypes"
	"github.com/buildgrid/azdo-mcp/internal/tools"
)

// devopsResourceScope is the well-known OAuth scope of the Azure DevOps
// service, shared by every organization.
const devopsResourceScope = "499b84ac-1321-427f-aa17-267ca6975798/.default"

// Config holds the connection settings for one Azure DevOps organization.
type Config struct {
	// OrganizationURL is the base URL of the organization,
	// e.g. https://dev.azure.com/contoso.
	OrganizationURL string

	// TenantID is the Entra ID tenant used for credential negotiation.
	TenantID string

	// ClientID is the application (client) identity used for credential
	// negotiation.
	ClientID string
}

// Validate reports a configuration error for the first missing setting.
// All three settings are required; callers fail fast on a non-nil result.
func (c Config) Validate() error {
	if strings.TrimSpace(c.OrganizationURL) == "" {
		return errortypes.ConfigError(errors.New("missing organization URL"), "Azure DevOps organization URL is required")
	}
	if strings.TrimSpace(c.TenantID) == "" {
		return errortypes.ConfigError(errors.New("missing tenant ID"), "Azure tenant ID is required")
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return errortypes.ConfigError(errors.New("missing client ID"), "Azure client ID is required")
	}
	return nil
}

// BoardsService is the work-item surface consumed by the tool handlers.
type BoardsService interface {
	// ListProjects returns the names of all projects in the organization.
	ListProjects(ctx context.Context) ([]string, error)

	// ListWorkItems returns up to maxCount work items of the given type in
	// the project, most recently changed first.
	ListWorkItems(ctx context.Context, project, workItemType string, maxCount int) ([]tools.WorkItemSummary, error)

	// CreateWorkItem creates one work item from the given request.
	CreateWorkItem(ctx context.Context, req tools.CreateWorkItemRequest) (*tools.CreateWorkItemResponse, error)
}

// PipelinesService is the pipeline/build surface consumed by the tool
// handlers.
type PipelinesService interface {
	// ListPipelines returns the build definitions of the project.
	ListPipelines(ctx context.Context, project string) ([]tools.PipelineSummary, error)

	// RunPipeline queues a run of the given definition. The definition is
	// looked up first so that a missing pipeline is reported as a
	// not-found error instead of queueing anything. parametersJSON, when
	// non-empty, must be a JSON object of string values; it is decoded
	// and re-serialized before submission.
	RunPipeline(ctx context.Context, project string, pipelineID int, branch, parametersJSON string) (*tools.RunPipelineResponse, error)

	// GetRunStatus returns a snapshot of one build.
	GetRunStatus(ctx context.Context, project string, buildID int) (*tools.PipelineRunStatus, error)
}

// Client implements BoardsService and PipelinesService over the Azure
// DevOps REST API.
type Client struct {
	conn      *azuredevops.Connection
	projects  core.Client
	workItems workitemtracking.Client
	builds    build.Client
}

var (
	_ BoardsService    = (*Client)(nil)
	_ PipelinesService = (*Client)(nil)
)

// NewClient validates the configuration, negotiates a credential for the
// Azure DevOps resource, and mints the typed sub-clients. The returned
// client is immutable; there is no teardown.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cred, err := newCredential(cfg.TenantID, cfg.ClientID)
	if err != nil {
		return nil, errortypes.ConfigError(err, "failed to build Azure credential chain")
	}

	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{devopsResourceScope},
	})
	if err != nil {
		return nil, errortypes.PermissionError(err, "failed to obtain an Azure DevOps access token")
	}

	conn := &azuredevops.Connection{
		AuthorizationString:     "Bearer " + token.Token,
		BaseUrl:                 strings.TrimSuffix(cfg.OrganizationURL, "/"),
		SuppressFedAuthRedirect: true,
	}

	projects, err := core.NewClient(ctx, conn)
	if err != nil {
		return nil, errortypes.NetworkError(err, "failed to create the project client")
	}
	workItems, err := workitemtracking.NewClient(ctx, conn)
	if err != nil {
		return nil, errortypes.NetworkError(err, "failed to create the work item client")
	}
	builds, err := build.NewClient(ctx, conn)
	if err != nil {
		return nil, errortypes.NetworkError(err, "failed to create the build client")
	}

	return &Client{
		conn:      conn,
		projects:  projects,
		workItems: workItems,
		builds:    builds,
	}, nil
}

// newCredential builds the credential chain: a user-assigned managed
// identity selected by client ID, then the default credential chain
// scoped to the tenant for local development.
func newCredential(tenantID, clientID string) (azcore.TokenCredential, error) {
	managed, err := azidentity.NewManagedIdentityCredential(&azidentity.ManagedIdentityCredentialOptions{
		ID: azidentity.ClientID(clientID),
	})
	if err != nil {
		return nil, err
	}
	fallback, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
		TenantID: tenantID,
	})
	if err != nil {
		return nil, err
	}
	return azidentity.NewChainedTokenCredential([]azcore.TokenCredential{managed, fallback}, nil)
}

// isNotFound reports whether the remote call failed because the
// requested entity does not exist.
func isNotFound(err error) bool {
	var wrapped azuredevops.WrappedError
	if errors.As(err, &wrapped) {
		return wrapped.StatusCode != nil && *wrapped.StatusCode == http.StatusNotFound
	}
	return false
}

// isIdentityError reports whether the remote call failed inside the
// identity service, e.g. an unresolvable assignee.
func isIdentityError(err error) bool {
	var wrapped azuredevops.WrappedError
	if errors.As(err, &wrapped) {
		return wrapped.TypeKey != nil && strings.Contains(*wrapped.TypeKey, "Identity")
	}
	return false
}
