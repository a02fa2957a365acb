package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepresearch/model"
	"deepresearch/research/testutil"
)

func repeatStatus(status model.RunStatus, n int) []model.RunStatus {
	out := make([]model.RunStatus, n)
	for i := range out {
		out[i] = status
	}
	return out
}

func newTestPoller(svc model.AgentService, sched Scheduler) (*Poller, func() string) {
	console, buf := newTestConsole()
	detector := NewDetector(svc, sched, console)
	return NewPoller(svc, sched, detector, console, 0, 10), buf.String
}

func TestPollerHeartbeat(t *testing.T) {
	tests := []struct {
		name           string
		ticks          int
		wantHeartbeats int
	}{
		{"completes on tick 9", 9, 0},
		{"completes on tick 10", 10, 1},
		{"completes on tick 25", 25, 2},
		{"completes on tick 30", 30, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewMockAgentService()
			statuses := append(repeatStatus(model.RunStatusInProgress, tt.ticks-1), model.RunStatusCompleted)
			(&testutil.Script{Statuses: statuses}).Install(svc)

			poller, output := newTestPoller(svc, SyncScheduler{})
			start := &model.Run{ID: "run_1", Status: model.RunStatusQueued}

			final, state, err := poller.Wait(context.Background(), "thread_1", start)
			require.NoError(t, err)

			assert.Equal(t, model.RunStatusCompleted, final.Status)
			assert.Equal(t, tt.ticks, state.Ticks)
			assert.Equal(t, tt.ticks, svc.Calls("GetRun"))
			assert.Equal(t, tt.ticks, svc.Calls("GetLastMessageByRole"))
			assert.Equal(t, tt.wantHeartbeats, countLines(output(), "Still running..."))
			assert.Equal(t, tt.ticks-tt.wantHeartbeats, countLines(output(), "Run status: "))
		})
	}
}

func TestPollerHeartbeatOnEveryTenthTick(t *testing.T) {
	svc := testutil.NewMockAgentService()
	statuses := append(repeatStatus(model.RunStatusInProgress, 20), model.RunStatusCompleted)
	(&testutil.Script{Statuses: statuses}).Install(svc)

	poller, output := newTestPoller(svc, SyncScheduler{})
	_, _, err := poller.Wait(context.Background(), "thread_1", &model.Run{ID: "run_1", Status: model.RunStatusQueued})
	require.NoError(t, err)

	assert.Contains(t, output(), "[2025-07-01 09:30:00] Still running... status: in_progress (10 polls")
	assert.Contains(t, output(), "[2025-07-01 09:30:00] Still running... status: in_progress (20 polls")
	assert.NotContains(t, output(), "(11 polls")
}

func TestPollerTerminalStartSkipsLoop(t *testing.T) {
	svc := testutil.NewMockAgentService()
	poller, output := newTestPoller(svc, SyncScheduler{})

	final, state, err := poller.Wait(context.Background(), "thread_1", &model.Run{ID: "run_1", Status: model.RunStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, final.Status)
	assert.Zero(t, state.Ticks)
	assert.Zero(t, svc.Calls("GetRun"))
	assert.Empty(t, output())
}

func TestPollerStopsOnUnknownStatus(t *testing.T) {
	svc := testutil.NewMockAgentService()
	(&testutil.Script{Statuses: []model.RunStatus{model.RunStatusInProgress, "incomplete"}}).Install(svc)

	poller, _ := newTestPoller(svc, SyncScheduler{})
	final, state, err := poller.Wait(context.Background(), "thread_1", &model.Run{ID: "run_1", Status: model.RunStatusQueued})
	require.NoError(t, err)
	assert.Equal(t, model.RunStatus("incomplete"), final.Status)
	assert.Equal(t, 2, state.Ticks)
}

// Two consecutive ticks returning the same agent message produce a single response block.
func TestPollerSameMessageReportedOnce(t *testing.T) {
	msg := &model.Message{ID: "msg_1", TextSegments: []string{"partial findings"}}
	svc := testutil.NewMockAgentService()
	(&testutil.Script{
		Statuses: []model.RunStatus{model.RunStatusInProgress, model.RunStatusInProgress, model.RunStatusCompleted},
		Messages: []*model.Message{msg, msg, msg},
	}).Install(svc)

	poller, output := newTestPoller(svc, SyncScheduler{})
	_, state, err := poller.Wait(context.Background(), "thread_1", &model.Run{ID: "run_1", Status: model.RunStatusQueued})
	require.NoError(t, err)

	assert.Equal(t, "msg_1", state.LastMessageID)
	assert.Equal(t, 1, countLines(output(), "New agent response received"))
	assert.Equal(t, 1, countLines(output(), "Agent response:"))
}

// Only the latest agent message is observed per tick; messages superseded
// between two ticks are never printed.
func TestPollerSkipsIntermediateMessages(t *testing.T) {
	first := &model.Message{ID: "msg_1", TextSegments: []string{"one"}}
	third := &model.Message{ID: "msg_3", TextSegments: []string{"three"}}
	svc := testutil.NewMockAgentService()
	(&testutil.Script{
		Statuses: []model.RunStatus{model.RunStatusInProgress, model.RunStatusCompleted},
		Messages: []*model.Message{first, third},
	}).Install(svc)

	poller, output := newTestPoller(svc, SyncScheduler{})
	_, _, err := poller.Wait(context.Background(), "thread_1", &model.Run{ID: "run_1", Status: model.RunStatusQueued})
	require.NoError(t, err)

	assert.Contains(t, output(), "one")
	assert.Contains(t, output(), "three")
	assert.Equal(t, 2, countLines(output(), "Agent response:"))
}

func TestPollerPropagatesGetRunError(t *testing.T) {
	boom := errors.New("connection reset")
	svc := testutil.NewMockAgentService()
	svc.GetRunFunc = func(ctx context.Context, threadID, runID string) (*model.Run, error) {
		return nil, boom
	}

	poller, _ := newTestPoller(svc, SyncScheduler{})
	start := &model.Run{ID: "run_1", Status: model.RunStatusQueued}
	final, _, err := poller.Wait(context.Background(), "thread_1", start)
	require.ErrorIs(t, err, boom)
	assert.Same(t, start, final)
	assert.Zero(t, svc.Calls("GetLastMessageByRole"))
}

func TestPollerCancelled(t *testing.T) {
	svc := testutil.NewMockAgentService()
	svc.GetRunFunc = func(ctx context.Context, threadID, runID string) (*model.Run, error) {
		return &model.Run{ID: runID, Status: model.RunStatusInProgress}, nil
	}

	console, _ := newTestConsole()
	sched := AsyncScheduler{}
	poller := NewPoller(svc, sched, NewDetector(svc, sched, console), console, 5*time.Millisecond, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, state, err := poller.Wait(ctx, "thread_1", &model.Run{ID: "run_1", Status: model.RunStatusQueued})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, state.Ticks)
}
