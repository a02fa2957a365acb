package research

import (
	"context"
	"fmt"
	"strings"

	"deepresearch/model"
	"deepresearch/ui"
)

// Detector prints the latest agent message of a thread when it differs from
// the last one printed.
//
// Only the single most recent agent message is inspected. If the service
// emits several agent messages between two checks, the earlier ones are never
// printed; the API only exposes the last message by role.
type Detector struct {
	service model.AgentService
	sched   Scheduler
	console *ui.Console
}

func NewDetector(service model.AgentService, sched Scheduler, console *ui.Console) *Detector {
	return &Detector{
		service: service,
		sched:   sched,
		console: console,
	}
}

// Check fetches the latest agent message. When there is none, or it is the
// message identified by lastSeen, it prints nothing and returns lastSeen.
// Otherwise it prints the message body and every citation (not deduplicated)
// and returns the new message ID.
func (d *Detector) Check(ctx context.Context, threadID, lastSeen string) (string, error) {
	msg, err := call(ctx, d.sched, func(ctx context.Context) (*model.Message, error) {
		return d.service.GetLastMessageByRole(ctx, threadID, model.RoleAgent)
	})
	if err != nil {
		return lastSeen, fmt.Errorf("failed to fetch latest agent message: %w", err)
	}
	if msg == nil || msg.ID == lastSeen {
		return lastSeen, nil
	}

	d.console.Logf("New agent response received")
	d.console.Println("")
	d.console.Heading("Agent response:")
	d.console.Println(strings.Join(msg.TextSegments, "\n"))
	for _, c := range msg.Citations {
		d.console.Citation(c.Label(), c.URL)
	}

	return msg.ID, nil
}
