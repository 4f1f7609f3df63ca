package azdo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	"github.com/buildgrid/azdo-mcp/internal/errortypes"
	"github.com/buildgrid/azdo-mcp/internal/tools"
)

// fakeProjectsClient stubs the project listing calls. The embedded
// interface panics for anything the tests do not override.
type fakeProjectsClient struct {
	core.Client

	pages []*core.GetProjectsResponseValue
	calls int
	args  []core.GetProjectsArgs
}

func (f *fakeProjectsClient) GetProjects(ctx context.Context, args core.GetProjectsArgs) (*core.GetProjectsResponseValue, error) {
	f.args = append(f.args, args)
	resp := f.pages[f.calls]
	f.calls++
	return resp, nil
}

// fakeWorkItemsClient stubs the work item tracking calls used by the
// boards service.
type fakeWorkItemsClient struct {
	workitemtracking.Client

	queryResult *workitemtracking.WorkItemQueryResult
	items       *[]workitemtracking.WorkItem
	created     *workitemtracking.WorkItem

	lastGet    workitemtracking.GetWorkItemsArgs
	lastCreate workitemtracking.CreateWorkItemArgs
}

func (f *fakeWorkItemsClient) QueryByWiql(ctx context.Context, args workitemtracking.QueryByWiqlArgs) (*workitemtracking.WorkItemQueryResult, error) {
	return f.queryResult, nil
}

func (f *fakeWorkItemsClient) GetWorkItems(ctx context.Context, args workitemtracking.GetWorkItemsArgs) (*[]workitemtracking.WorkItem, error) {
	f.lastGet = args
	return f.items, nil
}

func (f *fakeWorkItemsClient) CreateWorkItem(ctx context.Context, args workitemtracking.CreateWorkItemArgs) (*workitemtracking.WorkItem, error) {
	f.lastCreate = args
	return f.created, nil
}

func TestListProjectsPagination(t *testing.T) {
	nameA, nameB, nameC := "Alpha", "Bravo", "Charlie"
	fake := &fakeProjectsClient{
		pages: []*core.GetProjectsResponseValue{
			{
				Value:             []core.TeamProjectReference{{Name: &nameA}, {Name: &nameB}},
				ContinuationToken: "2",
			},
			{
				Value: []core.TeamProjectReference{{Name: &nameC}},
			},
		},
	}
	client := &Client{projects: fake}

	names, err := client.ListProjects(nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(names) != 3 || names[0] != "Alpha" || names[1] != "Bravo" || names[2] != "Charlie" {
		t.Errorf("Expected names from both pages, got %v", names)
	}
	if fake.calls != 2 {
		t.Errorf("Expected 2 GetProjects calls, got %d", fake.calls)
	}
	if fake.args[0].ContinuationToken != nil {
		t.Errorf("Expected no token on the first call, got %v", *fake.args[0].ContinuationToken)
	}
	if fake.args[1].ContinuationToken == nil || *fake.args[1].ContinuationToken != 2 {
		t.Errorf("Expected the second call to carry token 2, got %v", fake.args[1].ContinuationToken)
	}
}

func TestListWorkItemsTruncation(t *testing.T) {
	ids := []int{1, 2, 3, 4, 5}
	refs := make([]workitemtracking.WorkItemReference, len(ids))
	for i := range ids {
		refs[i] = workitemtracking.WorkItemReference{Id: &ids[i]}
	}
	fake := &fakeWorkItemsClient{
		queryResult: &workitemtracking.WorkItemQueryResult{WorkItems: &refs},
		items:       &[]workitemtracking.WorkItem{},
	}
	client := &Client{workItems: fake}

	if _, err := client.ListWorkItems(nil, "Contoso", "Task", 2); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if fake.lastGet.Ids == nil {
		t.Fatal("Expected a batch fetch, got none")
	}
	got := *fake.lastGet.Ids
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected the first 2 IDs, got %v", got)
	}
}

func TestCreateWorkItemPatchDocument(t *testing.T) {
	id := 512
	url := "https://dev.azure.com/contoso/_apis/wit/workItems/512"
	fake := &fakeWorkItemsClient{
		created: &workitemtracking.WorkItem{Id: &id, Url: &url},
	}
	client := &Client{workItems: fake}

	resp, err := client.CreateWorkItem(nil, tools.CreateWorkItemRequest{
		Project:      "Contoso",
		WorkItemType: "Task",
		Title:        "Rotate signing keys",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if fake.lastCreate.Document == nil {
		t.Fatal("Expected a patch document, got none")
	}
	document := *fake.lastCreate.Document
	if len(document) != 1 {
		t.Fatalf("Expected a title-only document, got %d operations", len(document))
	}
	if document[0].Path == nil || *document[0].Path != "/fields/System.Title" {
		t.Errorf("Unexpected path: %v", document[0].Path)
	}
	if document[0].Value != "Rotate signing keys" {
		t.Errorf("Unexpected value: %v", document[0].Value)
	}

	if resp.ID != 512 || resp.URL != url {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if resp.Message != "Work item 512 created successfully." {
		t.Errorf("Unexpected message: %q", resp.Message)
	}
}

func TestCreateWorkItemOptionalFields(t *testing.T) {
	fake := &fakeWorkItemsClient{created: &workitemtracking.WorkItem{}}
	client := &Client{workItems: fake}

	_, err := client.CreateWorkItem(nil, tools.CreateWorkItemRequest{
		Project:      "Contoso",
		WorkItemType: "Bug",
		Title:        "Login loops on expired session",
		Description:  "Repro: sign in, wait an hour, refresh.",
		AssignedTo:   "jamie@contoso.com",
		Tags:         "auth; regression",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	document := *fake.lastCreate.Document
	wantPaths := []string{
		"/fields/System.Title",
		"/fields/System.Description",
		"/fields/System.AssignedTo",
		"/fields/System.Tags",
	}
	if len(document) != len(wantPaths) {
		t.Fatalf("Expected %d operations, got %d", len(wantPaths), len(document))
	}
	for i, want := range wantPaths {
		if document[i].Path == nil || *document[i].Path != want {
			t.Errorf("Operation %d: expected path %q, got %v", i, want, document[i].Path)
		}
	}
}

func TestCreateWorkItemEmptyRemoteResponse(t *testing.T) {
	fake := &fakeWorkItemsClient{}
	client := &Client{workItems: fake}

	resp, err := client.CreateWorkItem(nil, tools.CreateWorkItemRequest{
		Project:      "Contoso",
		WorkItemType: "Task",
		Title:        "Placeholder",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if resp.ID != 0 || resp.URL != "" {
		t.Errorf("Expected zero-value fields, got %+v", resp)
	}
	if resp.Message != "Work item 0 created successfully." {
		t.Errorf("Unexpected message: %q", resp.Message)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		OrganizationURL: "https://dev.azure.com/contoso",
		TenantID:        "tenant-id",
		ClientID:        "client-id",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid config to pass, got: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing organization URL", func(c *Config) { c.OrganizationURL = "" }},
		{"blank organization URL", func(c *Config) { c.OrganizationURL = "   " }},
		{"missing tenant ID", func(c *Config) { c.TenantID = "" }},
		{"missing client ID", func(c *Config) { c.ClientID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected a configuration error, got nil")
			}
			var appErr *errortypes.AppError
			if !errors.As(err, &appErr) || appErr.Type != errortypes.ErrorTypeConfig {
				t.Errorf("Expected a config error, got: %v", err)
			}
		})
	}
}

func TestEscapeWiqlLiteral(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Contoso", "Contoso"},
		{"O'Brien's Project", "O''Brien''s Project"},
		{"'; DROP", "''; DROP"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := escapeWiqlLiteral(tt.input); got != tt.want {
			t.Errorf("escapeWiqlLiteral(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWiqlQueryShape(t *testing.T) {
	query := fmt.Sprintf(wiqlRecentByType, escapeWiqlLiteral("Team's Project"), escapeWiqlLiteral("Task"))

	if !strings.Contains(query, "[System.TeamProject] = 'Team''s Project'") {
		t.Errorf("Expected escaped project literal in query: %s", query)
	}
	if !strings.Contains(query, "[System.WorkItemType] = 'Task'") {
		t.Errorf("Expected work item type clause in query: %s", query)
	}
	if !strings.Contains(query, "ORDER BY [System.ChangedDate] DESC") {
		t.Errorf("Expected recency ordering in query: %s", query)
	}
}

func TestSummarizeWorkItemFallbacks(t *testing.T) {
	id := 42
	item := workitemtracking.WorkItem{Id: &id}

	summary := summarizeWorkItem(item)
	if summary.ID != 42 {
		t.Errorf("Expected ID 42, got %d", summary.ID)
	}
	if summary.Title != fallbackTitle {
		t.Errorf("Expected fallback title, got %q", summary.Title)
	}
	if summary.State != fallbackState {
		t.Errorf("Expected fallback state, got %q", summary.State)
	}
	if summary.AssignedTo != fallbackAssignee {
		t.Errorf("Expected fallback assignee, got %q", summary.AssignedTo)
	}
	if summary.Tags != "" {
		t.Errorf("Expected empty tags, got %q", summary.Tags)
	}
}

func TestSummarizeWorkItemFields(t *testing.T) {
	id := 7
	fields := map[string]interface{}{
		fieldTitle: "Fix login flow",
		fieldState: "Active",
		fieldAssignedTo: map[string]interface{}{
			"displayName": "Jamie Rivera",
			"uniqueName":  "jamie@contoso.com",
		},
		fieldTags: "auth; frontend",
	}
	item := workitemtracking.WorkItem{Id: &id, Fields: &fields}

	summary := summarizeWorkItem(item)
	if summary.Title != "Fix login flow" {
		t.Errorf("Unexpected title: %q", summary.Title)
	}
	if summary.State != "Active" {
		t.Errorf("Unexpected state: %q", summary.State)
	}
	if summary.AssignedTo != "Jamie Rivera" {
		t.Errorf("Unexpected assignee: %q", summary.AssignedTo)
	}
	if summary.Tags != "auth; frontend" {
		t.Errorf("Unexpected tags: %q", summary.Tags)
	}
}

func TestAssigneeDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"identity object", map[string]interface{}{"displayName": "Sam Park"}, "Sam Park"},
		{"identity object without name", map[string]interface{}{"uniqueName": "sam@contoso.com"}, fallbackAssignee},
		{"bare string", "Sam Park <sam@contoso.com>", "Sam Park <sam@contoso.com>"},
		{"empty string", "", fallbackAssignee},
		{"absent", nil, fallbackAssignee},
		{"unexpected type", 12.5, fallbackAssignee},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := assigneeDisplayName(tt.value); got != tt.want {
				t.Errorf("assigneeDisplayName(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestPatchAdd(t *testing.T) {
	op := patchAdd("/fields/System.Title", "New item")

	if op.Op == nil || string(*op.Op) != "add" {
		t.Errorf("Expected add operation, got %v", op.Op)
	}
	if op.Path == nil || *op.Path != "/fields/System.Title" {
		t.Errorf("Unexpected path: %v", op.Path)
	}
	if op.Value != "New item" {
		t.Errorf("Unexpected value: %v", op.Value)
	}
}
