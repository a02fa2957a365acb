package model

import "context"

// AgentService abstracts the remote agents API the research workflow drives.
//
// This interface is defined in the model package (not the provider package) to
// avoid import cycles: provider implementations import model, and the research
// package depends only on this interface.
type AgentService interface {
	// CreateAgent creates an agent with the given tools attached.
	CreateAgent(ctx context.Context, spec AgentSpec) (*Agent, error)

	// DeleteAgent removes an agent created by CreateAgent.
	DeleteAgent(ctx context.Context, agentID string) error

	// CreateThread creates an empty conversation thread.
	CreateThread(ctx context.Context) (*Thread, error)

	// CreateMessage appends a message to a thread.
	CreateMessage(ctx context.Context, threadID string, role Role, content string) (*Message, error)

	// CreateRun starts the agent on the thread.
	CreateRun(ctx context.Context, threadID, agentID string) (*Run, error)

	// GetRun re-fetches a run.
	GetRun(ctx context.Context, threadID, runID string) (*Run, error)

	// GetLastMessageByRole returns the most recent message with the given role,
	// or (nil, nil) when the thread has none.
	GetLastMessageByRole(ctx context.Context, threadID string, role Role) (*Message, error)

	// ListConnections lists the connected resources of the project.
	ListConnections(ctx context.Context) ([]Connection, error)
}

// Agent is a remote agent definition.
type Agent struct {
	ID    string
	Name  string
	Model string
}

// AgentSpec is the input to AgentService.CreateAgent.
type AgentSpec struct {
	Model        string
	Name         string
	Instructions string
	Tools        []ToolDefinition
}

// ToolDefinition is a tool attached to an agent. Only the Deep Research tool
// is used by this program.
type ToolDefinition struct {
	DeepResearch *DeepResearchTool
}

// DeepResearchTool grounds a research model on a Bing connection.
type DeepResearchTool struct {
	DeepResearchModel string
	BingConnectionID  string
}

// Connection is a resource connected to the project, such as a Bing grounding resource.
type Connection struct {
	ID   string
	Name string
	Type string
}
