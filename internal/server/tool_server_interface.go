package server

// DevOpsToolServer defines the interface for the MCP server that handles
// Azure DevOps tool calls from MCP clients.
type DevOpsToolServer interface {
	// Initialize initializes the server with dependencies and configurations.
	Initialize() error

	// Start starts the MCP server on the specified transport.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}

var _ DevOpsToolServer = (*MCPDevOpsToolServer)(nil)
