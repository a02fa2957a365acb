// Package research drives one deep research invocation: it creates an agent
// with the Deep Research tool, posts the prompt, polls the run while
// streaming new agent output, and writes the final answer with its
// references to a Markdown file.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deepresearch/config"
	"deepresearch/model"
	"deepresearch/storage"
	"deepresearch/ui"
)

// HistoryRecorder persists a record of each finished invocation.
type HistoryRecorder interface {
	Record(rec storage.RunRecord) error
}

// Result describes the outcome of Runner.Run. Fields are filled as far as
// the workflow got.
type Result struct {
	AgentID      string
	ThreadID     string
	Run          *model.Run
	State        model.PollState
	FinalMessage *model.Message
	// SummaryPath is empty when no summary was written.
	SummaryPath string
}

// Runner executes the create agent → thread → message → run → poll →
// summarize workflow. The agent is deleted on every exit path.
type Runner struct {
	cfg      *config.Config
	service  model.AgentService
	sched    Scheduler
	console  *ui.Console
	detector *Detector
	poller   *Poller
	writer   *SummaryWriter
	history  HistoryRecorder
	now      func() time.Time
}

func NewRunner(cfg *config.Config, service model.AgentService, sched Scheduler, console *ui.Console) *Runner {
	detector := NewDetector(service, sched, console)
	return &Runner{
		cfg:      cfg,
		service:  service,
		sched:    sched,
		console:  console,
		detector: detector,
		poller:   NewPoller(service, sched, detector, console, cfg.PollInterval, cfg.HeartbeatEvery),
		writer:   NewSummaryWriter(console),
		now:      time.Now,
	}
}

// WithHistory records every invocation in h.
func (r *Runner) WithHistory(h HistoryRecorder) *Runner {
	r.history = h
	return r
}

// Run executes the workflow for prompt. A failed run is not an error: it is
// logged and the summary step still runs against whatever agent message
// exists. Remote call failures abort the workflow.
func (r *Runner) Run(ctx context.Context, prompt string) (res *Result, err error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("research prompt is empty")
	}

	startedAt := r.now()
	res = &Result{}

	connectionID, err := r.ResolveConnection(ctx)
	if err != nil {
		return res, err
	}

	r.console.Logf("Deep Research tool ready - model: %s", r.cfg.DeepResearchModelDeploymentName)

	agent, err := call(ctx, r.sched, func(ctx context.Context) (*model.Agent, error) {
		return r.service.CreateAgent(ctx, model.AgentSpec{
			Model:        r.cfg.ModelDeploymentName,
			Name:         r.cfg.AgentName,
			Instructions: r.cfg.AgentInstructions,
			Tools: []model.ToolDefinition{{
				DeepResearch: &model.DeepResearchTool{
					DeepResearchModel: r.cfg.DeepResearchModelDeploymentName,
					BingConnectionID:  connectionID,
				},
			}},
		})
	})
	if err != nil {
		return res, fmt.Errorf("failed to create agent: %w", err)
	}
	res.AgentID = agent.ID
	r.console.Logf("Created agent - ID: %s", agent.ID)

	defer func() {
		err = errors.Join(err, r.deleteAgent(ctx, agent.ID))
		r.record(prompt, startedAt, res, err)
	}()

	thread, err := call(ctx, r.sched, func(ctx context.Context) (*model.Thread, error) {
		return r.service.CreateThread(ctx)
	})
	if err != nil {
		return res, fmt.Errorf("failed to create thread: %w", err)
	}
	res.ThreadID = thread.ID
	r.console.Logf("Created thread - ID: %s", thread.ID)

	message, err := call(ctx, r.sched, func(ctx context.Context) (*model.Message, error) {
		return r.service.CreateMessage(ctx, thread.ID, model.RoleUser, prompt)
	})
	if err != nil {
		return res, fmt.Errorf("failed to create message: %w", err)
	}
	r.console.Logf("Created message - ID: %s", message.ID)

	r.console.Logf("Starting run (this may take several minutes)...")
	run, err := call(ctx, r.sched, func(ctx context.Context) (*model.Run, error) {
		return r.service.CreateRun(ctx, thread.ID, agent.ID)
	})
	if err != nil {
		return res, fmt.Errorf("failed to create run: %w", err)
	}
	res.Run = run

	run, res.State, err = r.poller.Wait(ctx, thread.ID, run)
	res.Run = run
	if err != nil {
		return res, err
	}

	r.console.Logf("Run finished - status: %s, ID: %s", run.Status, run.ID)
	if run.Status == model.RunStatusFailed {
		r.console.Errorf("Run failed: %s", run.LastError)
	}

	r.console.Logf("Fetching final message...")
	final, err := call(ctx, r.sched, func(ctx context.Context) (*model.Message, error) {
		return r.service.GetLastMessageByRole(ctx, thread.ID, model.RoleAgent)
	})
	if err != nil {
		return res, fmt.Errorf("failed to fetch final message: %w", err)
	}
	res.FinalMessage = final

	if final != nil {
		r.console.Logf("Creating research summary...")
	}
	written, err := r.writer.Write(final, r.cfg.SummaryPath)
	if err != nil {
		return res, err
	}
	if written {
		res.SummaryPath = r.cfg.SummaryPath
	}

	return res, nil
}

// deleteAgent removes the agent even when ctx has been cancelled.
func (r *Runner) deleteAgent(ctx context.Context, agentID string) error {
	cleanupCtx := context.WithoutCancel(ctx)
	if err := r.sched.Call(cleanupCtx, func(ctx context.Context) error {
		return r.service.DeleteAgent(ctx, agentID)
	}); err != nil {
		r.console.Errorf("Failed to delete agent %s: %v", agentID, err)
		return fmt.Errorf("failed to delete agent %s: %w", agentID, err)
	}
	r.console.Logf("Deleted agent - ID: %s", agentID)
	return nil
}

func (r *Runner) record(prompt string, startedAt time.Time, res *Result, runErr error) {
	if r.history == nil {
		return
	}

	rec := storage.RunRecord{
		Prompt:      prompt,
		Mode:        r.cfg.Mode,
		AgentID:     res.AgentID,
		ThreadID:    res.ThreadID,
		SummaryPath: res.SummaryPath,
		StartedAt:   startedAt,
		FinishedAt:  r.now(),
	}
	if res.Run != nil {
		rec.RunID = res.Run.ID
		rec.Status = string(res.Run.Status)
		if res.Run.LastError != nil {
			rec.LastError = res.Run.LastError.String()
		}
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	if err := r.history.Record(rec); err != nil {
		r.console.Warnf("Failed to record run history: %v", err)
	}
}
