package testutil

import (
	"context"
	"fmt"
	"sync"

	"deepresearch/model"
)

// MockAgentService implements model.AgentService for testing. Every method
// delegates to an overridable XxxFunc field; calls are counted.
type MockAgentService struct {
	CreateAgentFunc          func(ctx context.Context, spec model.AgentSpec) (*model.Agent, error)
	DeleteAgentFunc          func(ctx context.Context, agentID string) error
	CreateThreadFunc         func(ctx context.Context) (*model.Thread, error)
	CreateMessageFunc        func(ctx context.Context, threadID string, role model.Role, content string) (*model.Message, error)
	CreateRunFunc            func(ctx context.Context, threadID, agentID string) (*model.Run, error)
	GetRunFunc               func(ctx context.Context, threadID, runID string) (*model.Run, error)
	GetLastMessageByRoleFunc func(ctx context.Context, threadID string, role model.Role) (*model.Message, error)
	ListConnectionsFunc      func(ctx context.Context) ([]model.Connection, error)

	mu    sync.Mutex
	calls map[string]int

	// DeletedAgents lists agent IDs passed to DeleteAgent, in order.
	DeletedAgents []string
	// Specs lists the specs passed to CreateAgent.
	Specs []model.AgentSpec
}

// NewMockAgentService returns a mock whose run completes on creation and
// whose thread has no agent messages.
func NewMockAgentService() *MockAgentService {
	m := &MockAgentService{calls: make(map[string]int)}
	m.CreateAgentFunc = func(ctx context.Context, spec model.AgentSpec) (*model.Agent, error) {
		return &model.Agent{ID: "asst_test", Name: spec.Name, Model: spec.Model}, nil
	}
	m.DeleteAgentFunc = func(ctx context.Context, agentID string) error {
		return nil
	}
	m.CreateThreadFunc = func(ctx context.Context) (*model.Thread, error) {
		return &model.Thread{ID: "thread_test"}, nil
	}
	m.CreateMessageFunc = func(ctx context.Context, threadID string, role model.Role, content string) (*model.Message, error) {
		return &model.Message{ID: "msg_user", ThreadID: threadID, Role: role, TextSegments: []string{content}}, nil
	}
	m.CreateRunFunc = func(ctx context.Context, threadID, agentID string) (*model.Run, error) {
		return &model.Run{ID: "run_test", ThreadID: threadID, AgentID: agentID, Status: model.RunStatusCompleted}, nil
	}
	m.GetRunFunc = func(ctx context.Context, threadID, runID string) (*model.Run, error) {
		return &model.Run{ID: runID, ThreadID: threadID, Status: model.RunStatusCompleted}, nil
	}
	m.GetLastMessageByRoleFunc = func(ctx context.Context, threadID string, role model.Role) (*model.Message, error) {
		return nil, nil
	}
	m.ListConnectionsFunc = func(ctx context.Context) ([]model.Connection, error) {
		return nil, nil
	}
	return m
}

func (m *MockAgentService) count(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
}

// Calls returns how many times the named method was invoked.
func (m *MockAgentService) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockAgentService) CreateAgent(ctx context.Context, spec model.AgentSpec) (*model.Agent, error) {
	m.count("CreateAgent")
	m.mu.Lock()
	m.Specs = append(m.Specs, spec)
	m.mu.Unlock()
	return m.CreateAgentFunc(ctx, spec)
}

func (m *MockAgentService) DeleteAgent(ctx context.Context, agentID string) error {
	m.count("DeleteAgent")
	m.mu.Lock()
	m.DeletedAgents = append(m.DeletedAgents, agentID)
	m.mu.Unlock()
	return m.DeleteAgentFunc(ctx, agentID)
}

func (m *MockAgentService) CreateThread(ctx context.Context) (*model.Thread, error) {
	m.count("CreateThread")
	return m.CreateThreadFunc(ctx)
}

func (m *MockAgentService) CreateMessage(ctx context.Context, threadID string, role model.Role, content string) (*model.Message, error) {
	m.count("CreateMessage")
	return m.CreateMessageFunc(ctx, threadID, role, content)
}

func (m *MockAgentService) CreateRun(ctx context.Context, threadID, agentID string) (*model.Run, error) {
	m.count("CreateRun")
	return m.CreateRunFunc(ctx, threadID, agentID)
}

func (m *MockAgentService) GetRun(ctx context.Context, threadID, runID string) (*model.Run, error) {
	m.count("GetRun")
	return m.GetRunFunc(ctx, threadID, runID)
}

func (m *MockAgentService) GetLastMessageByRole(ctx context.Context, threadID string, role model.Role) (*model.Message, error) {
	m.count("GetLastMessageByRole")
	return m.GetLastMessageByRoleFunc(ctx, threadID, role)
}

func (m *MockAgentService) ListConnections(ctx context.Context) ([]model.Connection, error) {
	m.count("ListConnections")
	return m.ListConnectionsFunc(ctx)
}

// Script replays a fixed sequence of run statuses and agent messages, one
// entry per GetRun call. The message lookup made after a GetRun sees the
// message of the same step; once the script is exhausted the last step repeats.
type Script struct {
	mu       sync.Mutex
	Statuses []model.RunStatus
	// Messages holds the latest agent message visible at each step; nil means none.
	Messages  []*model.Message
	LastError *model.RunError
	step      int
}

// Install wires the script into m's CreateRun, GetRun and GetLastMessageByRole.
// The run starts queued.
func (s *Script) Install(m *MockAgentService) {
	m.CreateRunFunc = func(ctx context.Context, threadID, agentID string) (*model.Run, error) {
		return &model.Run{ID: "run_test", ThreadID: threadID, AgentID: agentID, Status: model.RunStatusQueued}, nil
	}
	m.GetRunFunc = func(ctx context.Context, threadID, runID string) (*model.Run, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.Statuses) == 0 {
			return nil, fmt.Errorf("script has no statuses")
		}
		if s.step < len(s.Statuses) {
			s.step++
		}
		status := s.Statuses[s.step-1]
		run := &model.Run{ID: runID, ThreadID: threadID, Status: status}
		if status == model.RunStatusFailed {
			run.LastError = s.LastError
		}
		return run, nil
	}
	m.GetLastMessageByRoleFunc = func(ctx context.Context, threadID string, role model.Role) (*model.Message, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if role != model.RoleAgent || s.step == 0 || len(s.Messages) == 0 {
			return nil, nil
		}
		idx := s.step - 1
		if idx >= len(s.Messages) {
			idx = len(s.Messages) - 1
		}
		return s.Messages[idx], nil
	}
}
