package provider

import (
	"strings"
	"time"

	"deepresearch/model"
)

// Wire types of the Assistants-style agents API. Only the fields this program
// reads or writes are modelled.

type wireDeepResearchConnection struct {
	ConnectionID string `json:"connection_id"`
}

type wireDeepResearchDetails struct {
	Model           string                       `json:"deep_research_model"`
	BingConnections []wireDeepResearchConnection `json:"deep_research_bing_grounding_connections"`
}

type wireTool struct {
	Type         string                   `json:"type"`
	DeepResearch *wireDeepResearchDetails `json:"deep_research,omitempty"`
}

type wireCreateAgentRequest struct {
	Model        string     `json:"model"`
	Name         string     `json:"name,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
	Tools        []wireTool `json:"tools,omitempty"`
}

type wireAgent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Model string `json:"model"`
}

type wireThread struct {
	ID string `json:"id"`
}

type wireCreateMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireURLCitation struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type wireAnnotation struct {
	Type        string           `json:"type"`
	Text        string           `json:"text"`
	URLCitation *wireURLCitation `json:"url_citation,omitempty"`
}

type wireText struct {
	Value       string           `json:"value"`
	Annotations []wireAnnotation `json:"annotations"`
}

type wireContent struct {
	Type string    `json:"type"`
	Text *wireText `json:"text,omitempty"`
}

type wireMessage struct {
	ID        string        `json:"id"`
	ThreadID  string        `json:"thread_id"`
	Role      string        `json:"role"`
	CreatedAt int64         `json:"created_at"`
	Content   []wireContent `json:"content"`
}

type wireMessageList struct {
	Data    []wireMessage `json:"data"`
	LastID  string        `json:"last_id"`
	HasMore bool          `json:"has_more"`
}

type wireCreateRunRequest struct {
	AssistantID string `json:"assistant_id"`
}

type wireRunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type wireRun struct {
	ID          string        `json:"id"`
	ThreadID    string        `json:"thread_id"`
	AssistantID string        `json:"assistant_id"`
	Status      string        `json:"status"`
	LastError   *wireRunError `json:"last_error"`
}

type wireConnection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type wireConnectionList struct {
	Value    []wireConnection `json:"value"`
	NextLink string           `json:"nextLink"`
}

// ConvertToWireTools converts tool definitions to the API format.
func ConvertToWireTools(tools []model.ToolDefinition) []wireTool {
	out := make([]wireTool, 0, len(tools))
	for _, t := range tools {
		if t.DeepResearch == nil {
			continue
		}
		out = append(out, wireTool{
			Type: "deep_research",
			DeepResearch: &wireDeepResearchDetails{
				Model: t.DeepResearch.DeepResearchModel,
				BingConnections: []wireDeepResearchConnection{
					{ConnectionID: t.DeepResearch.BingConnectionID},
				},
			},
		})
	}
	return out
}

// ConvertFromWireMessage converts an API message into a model.Message.
// Text segments and URL citations keep their original order; other content
// and annotation types are skipped.
func ConvertFromWireMessage(m wireMessage) *model.Message {
	msg := &model.Message{
		ID:       m.ID,
		ThreadID: m.ThreadID,
		Role:     model.Role(m.Role),
	}
	if m.CreatedAt > 0 {
		msg.CreatedAt = time.Unix(m.CreatedAt, 0)
	}

	for _, c := range m.Content {
		if c.Type != "text" || c.Text == nil {
			continue
		}
		msg.TextSegments = append(msg.TextSegments, c.Text.Value)
		for _, ann := range c.Text.Annotations {
			if ann.Type != "url_citation" || ann.URLCitation == nil {
				continue
			}
			msg.Citations = append(msg.Citations, model.Citation{
				URL:   ann.URLCitation.URL,
				Title: ann.URLCitation.Title,
			})
		}
	}

	return msg
}

// ConvertFromWireRun converts an API run into a model.Run.
func ConvertFromWireRun(r wireRun) *model.Run {
	run := &model.Run{
		ID:       r.ID,
		ThreadID: r.ThreadID,
		AgentID:  r.AssistantID,
		Status:   model.RunStatus(strings.ToLower(r.Status)),
	}
	if r.LastError != nil {
		run.LastError = &model.RunError{
			Code:    r.LastError.Code,
			Message: r.LastError.Message,
		}
	}
	return run
}
