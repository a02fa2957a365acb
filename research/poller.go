package research

import (
	"context"
	"fmt"
	"time"

	"deepresearch/model"
	"deepresearch/ui"
)

// Poller re-fetches a run at a fixed interval until it leaves the queued and
// in_progress states, checking for new agent output on every tick.
type Poller struct {
	service        model.AgentService
	sched          Scheduler
	detector       *Detector
	console        *ui.Console
	interval       time.Duration
	heartbeatEvery int
}

func NewPoller(service model.AgentService, sched Scheduler, detector *Detector, console *ui.Console, interval time.Duration, heartbeatEvery int) *Poller {
	if heartbeatEvery <= 0 {
		heartbeatEvery = 10
	}
	return &Poller{
		service:        service,
		sched:          sched,
		detector:       detector,
		console:        console,
		interval:       interval,
		heartbeatEvery: heartbeatEvery,
	}
}

// Wait polls run until its status is terminal and returns the final run and
// loop state. Every heartbeatEvery-th tick prints a timestamped progress
// line; all other ticks print a bare status line. There is no deadline: only
// cancellation of ctx ends the loop early.
func (p *Poller) Wait(ctx context.Context, threadID string, run *model.Run) (*model.Run, model.PollState, error) {
	var state model.PollState

	for run.Status.Active() {
		if err := p.sched.Sleep(ctx, p.interval); err != nil {
			return run, state, err
		}

		runID := run.ID
		next, err := call(ctx, p.sched, func(ctx context.Context) (*model.Run, error) {
			return p.service.GetRun(ctx, threadID, runID)
		})
		if err != nil {
			return run, state, fmt.Errorf("failed to poll run %s: %w", runID, err)
		}
		run = next
		state.Ticks++

		state.LastMessageID, err = p.detector.Check(ctx, threadID, state.LastMessageID)
		if err != nil {
			return run, state, err
		}

		if state.Ticks%p.heartbeatEvery == 0 {
			p.console.Logf("Still running... status: %s (%d polls, ~%s elapsed)", run.Status, state.Ticks, time.Duration(state.Ticks)*p.interval)
		} else {
			p.console.Println(fmt.Sprintf("Run status: %s", run.Status))
		}
	}

	return run, state, nil
}
