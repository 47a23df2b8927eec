package types

import "time"

type TabState string

const (
	TabStateIdle TabState = "idle"
	TabStateBusy TabState = "busy"
)

type LogRole string

const (
	LogRoleUser      LogRole = "user"
	LogRoleAssistant LogRole = "assistant"
	LogRoleSystem    LogRole = "system"
)

type LogEntry struct {
	ID         string    `json:"id"`
	Role       LogRole   `json:"role"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	TokenCount int       `json:"token_count,omitempty"`
}

type Attachment struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	MimeType string `json:"mime_type,omitempty"`
}

type UsageStats struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd,omitempty"`
}

// Tab is one conversational thread with one agent invocation. Tab IDs are
// generated locally and never reused; AgentSessionID stays nil until the
// spawned agent process reports one and is the sole identity key for
// duplicate detection.
type Tab struct {
	ID              string       `json:"id"`
	AgentSessionID  *string      `json:"agent_session_id,omitempty"`
	Name            *string      `json:"name,omitempty"`
	Starred         bool         `json:"starred,omitempty"`
	Logs            []LogEntry   `json:"logs"`
	Draft           string       `json:"draft,omitempty"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	State           TabState     `json:"state"`
	Unread          bool         `json:"unread,omitempty"`
	Usage           *UsageStats  `json:"usage,omitempty"`
	SaveToHistory   *bool        `json:"save_to_history,omitempty"`
	WizardActive    bool         `json:"wizard_active,omitempty"`
	PendingContext  string       `json:"pending_context,omitempty"`
	AutoSendPending bool         `json:"auto_send_pending,omitempty"`
}

// SameAgentSession reports whether both tabs are backed by the same external
// agent session. A nil backing identifier on either side never matches.
func (t *Tab) SameAgentSession(other *Tab) bool {
	if t == nil || other == nil {
		return false
	}
	if t.AgentSessionID == nil || other.AgentSessionID == nil {
		return false
	}
	return *t.AgentSessionID == *other.AgentSessionID
}

func (t *Tab) Clone() *Tab {
	if t == nil {
		return nil
	}
	out := *t
	if t.AgentSessionID != nil {
		id := *t.AgentSessionID
		out.AgentSessionID = &id
	}
	if t.Name != nil {
		name := *t.Name
		out.Name = &name
	}
	if t.Logs != nil {
		out.Logs = append([]LogEntry{}, t.Logs...)
	}
	if t.Attachments != nil {
		out.Attachments = append([]Attachment{}, t.Attachments...)
	}
	if t.Usage != nil {
		usage := *t.Usage
		out.Usage = &usage
	}
	if t.SaveToHistory != nil {
		save := *t.SaveToHistory
		out.SaveToHistory = &save
	}
	return &out
}
