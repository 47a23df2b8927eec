package types

import "time"

// Session is a project-scoped container of tabs plus the bounded closed-tab
// history. Lifecycle operations never mutate a Session in place; they return
// a fresh value.
type Session struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	ProjectRoot      string      `json:"project_root"`
	AgentKind        string      `json:"agent_kind"`
	AITabs           []*Tab      `json:"ai_tabs"`
	ActiveTabID      string      `json:"active_tab_id"`
	ClosedTabHistory []ClosedTab `json:"-"`
	CreatedAt        time.Time   `json:"created_at"`
}

// ClosedTab is an immutable snapshot taken at close time, consumed at most
// once by reopen. History is newest first.
type ClosedTab struct {
	Tab           *Tab      `json:"tab"`
	OriginalIndex int       `json:"original_index"`
	ClosedAt      time.Time `json:"closed_at"`
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.AITabs != nil {
		out.AITabs = make([]*Tab, len(s.AITabs))
		for i, tab := range s.AITabs {
			out.AITabs[i] = tab.Clone()
		}
	}
	if s.ClosedTabHistory != nil {
		out.ClosedTabHistory = make([]ClosedTab, len(s.ClosedTabHistory))
		for i, closed := range s.ClosedTabHistory {
			out.ClosedTabHistory[i] = ClosedTab{
				Tab:           closed.Tab.Clone(),
				OriginalIndex: closed.OriginalIndex,
				ClosedAt:      closed.ClosedAt,
			}
		}
	}
	return &out
}

// TabByID returns the tab and its display index, or (nil, -1).
func (s *Session) TabByID(tabID string) (*Tab, int) {
	if s == nil || tabID == "" {
		return nil, -1
	}
	for i, tab := range s.AITabs {
		if tab.ID == tabID {
			return tab, i
		}
	}
	return nil, -1
}

// TabByAgentSessionID resolves a tab by its backing external identifier.
// A nil backing identifier never matches.
func (s *Session) TabByAgentSessionID(agentSessionID *string) (*Tab, int) {
	if s == nil || agentSessionID == nil {
		return nil, -1
	}
	for i, tab := range s.AITabs {
		if tab.AgentSessionID != nil && *tab.AgentSessionID == *agentSessionID {
			return tab, i
		}
	}
	return nil, -1
}
