package model

import "time"

// Role identifies who authored a message in a thread.
type Role string

const (
	RoleUser Role = "user"
	// RoleAgent is the wire value the service uses for agent-authored messages.
	RoleAgent Role = "assistant"
)

// Citation is a URL annotation attached to a response segment.
// The URL is the identity key; Title is optional.
type Citation struct {
	URL   string
	Title string
}

// Label returns the citation title, falling back to the URL when the title is empty.
func (c Citation) Label() string {
	if c.Title == "" {
		return c.URL
	}
	return c.Title
}

// Message is a read-only snapshot of one message in a remote thread.
type Message struct {
	ID           string
	ThreadID     string
	Role         Role
	TextSegments []string
	Citations    []Citation
	CreatedAt    time.Time
}

// Thread is the conversation container a run executes against.
type Thread struct {
	ID string
}
