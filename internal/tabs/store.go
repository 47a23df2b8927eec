package tabs

import (
	"time"

	"tabflow/internal/types"
)

const DefaultHistoryCapacity = 25

// Store holds the tunables and wiring for tab lifecycle transitions. The
// methods themselves are pure: they never mutate the session they are given
// and return a fresh value instead.
type Store struct {
	HistoryCapacity int
	Now             func() time.Time
	NewID           func() string
}

func NewStore() *Store {
	return &Store{
		HistoryCapacity: DefaultHistoryCapacity,
		Now:             time.Now,
		NewID:           types.NewID,
	}
}

func (s *Store) historyCapacity() int {
	if s.HistoryCapacity > 0 {
		return s.HistoryCapacity
	}
	return DefaultHistoryCapacity
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return types.NewID()
}

// ActiveTab resolves the session's active tab pointer. A stale pointer falls
// back to the first tab; false is returned only when the tab list is empty.
func (s *Store) ActiveTab(session *types.Session) (*types.Tab, bool) {
	if session == nil || len(session.AITabs) == 0 {
		return nil, false
	}
	if tab, _ := session.TabByID(session.ActiveTabID); tab != nil {
		return tab, true
	}
	return session.AITabs[0], true
}

// CreateTabOptions carries the non-default fields for a new tab.
type CreateTabOptions struct {
	Name            string
	AgentSessionID  *string
	Logs            []types.LogEntry
	Draft           string
	PendingContext  string
	AutoSendPending bool
	State           types.TabState
	SaveToHistory   *bool
}

func (s *Store) buildTab(opts CreateTabOptions) *types.Tab {
	tab := &types.Tab{
		ID:              s.newID(),
		Logs:            append([]types.LogEntry{}, opts.Logs...),
		Draft:           opts.Draft,
		CreatedAt:       s.now(),
		State:           types.TabStateIdle,
		PendingContext:  opts.PendingContext,
		AutoSendPending: opts.AutoSendPending,
	}
	if opts.Name != "" {
		name := opts.Name
		tab.Name = &name
	}
	if opts.AgentSessionID != nil {
		id := *opts.AgentSessionID
		tab.AgentSessionID = &id
	}
	if opts.State != "" {
		tab.State = opts.State
	}
	if opts.SaveToHistory != nil {
		save := *opts.SaveToHistory
		tab.SaveToHistory = &save
	} else {
		save := true
		tab.SaveToHistory = &save
	}
	return tab
}

// CreateTab appends a new tab and makes it active.
func (s *Store) CreateTab(session *types.Session, opts CreateTabOptions) (*types.Session, *types.Tab) {
	next := session.Clone()
	tab := s.buildTab(opts)
	next.AITabs = append(next.AITabs, tab)
	next.ActiveTabID = tab.ID
	return next, tab
}

// CreateTabAt splices a new tab immediately after afterTabID in display
// order and makes it active. An unknown afterTabID falls back to append.
func (s *Store) CreateTabAt(session *types.Session, afterTabID string, opts CreateTabOptions) (*types.Session, *types.Tab) {
	_, idx := session.TabByID(afterTabID)
	if idx < 0 {
		return s.CreateTab(session, opts)
	}
	next := session.Clone()
	tab := s.buildTab(opts)
	at := idx + 1
	next.AITabs = append(next.AITabs[:at], append([]*types.Tab{tab}, next.AITabs[at:]...)...)
	next.ActiveTabID = tab.ID
	return next, tab
}

// SetActiveTab switches the active pointer. Unknown tabs are not applicable;
// switching to the already-active tab is an identity result.
func (s *Store) SetActiveTab(session *types.Session, tabID string) (*types.Session, bool) {
	if session == nil {
		return nil, false
	}
	if _, idx := session.TabByID(tabID); idx < 0 {
		return session, false
	}
	if session.ActiveTabID == tabID {
		return session, true
	}
	next := session.Clone()
	next.ActiveTabID = tabID
	return next, true
}

// CloseTabResult reports what CloseTab did.
type CloseTabResult struct {
	ClosedTab   *types.Tab
	NewActiveID string
	Synthesized bool
	Recorded    bool
}

// CloseTab removes a tab, records it in the closed-tab history unless
// skipHistory is set, and repairs the active pointer. Closing the last tab
// synthesizes a fresh idle replacement so the tab list never empties.
func (s *Store) CloseTab(session *types.Session, tabID string, unreadOnly bool, skipHistory bool) (*types.Session, CloseTabResult, bool) {
	if session == nil || len(session.AITabs) == 0 {
		return session, CloseTabResult{}, false
	}
	closing, closedIdx := session.TabByID(tabID)
	if closedIdx < 0 {
		return session, CloseTabResult{}, false
	}

	// Relative position of the closing tab within the pre-removal navigable
	// subset; used to keep the active pointer at the equivalent spot when the
	// unread-only filter is on.
	navIdx := 0
	if unreadOnly {
		for _, tab := range session.AITabs[:closedIdx] {
			if tabIsNavigable(tab) {
				navIdx++
			}
		}
	}

	next := session.Clone()
	result := CloseTabResult{ClosedTab: closing.Clone()}

	if !skipHistory {
		entry := types.ClosedTab{
			Tab:           closing.Clone(),
			OriginalIndex: closedIdx,
			ClosedAt:      s.now(),
		}
		next.ClosedTabHistory = append([]types.ClosedTab{entry}, next.ClosedTabHistory...)
		if capacity := s.historyCapacity(); len(next.ClosedTabHistory) > capacity {
			next.ClosedTabHistory = next.ClosedTabHistory[:capacity]
		}
		result.Recorded = true
	}

	next.AITabs = append(next.AITabs[:closedIdx], next.AITabs[closedIdx+1:]...)

	if len(next.AITabs) == 0 {
		replacement := s.buildTab(CreateTabOptions{})
		next.AITabs = []*types.Tab{replacement}
		next.ActiveTabID = replacement.ID
		result.Synthesized = true
		result.NewActiveID = replacement.ID
		return next, result, true
	}

	if session.ActiveTabID != tabID {
		result.NewActiveID = next.ActiveTabID
		return next, result, true
	}

	next.ActiveTabID = s.selectReplacement(next, closedIdx, navIdx, unreadOnly)
	result.NewActiveID = next.ActiveTabID
	return next, result, true
}

func (s *Store) selectReplacement(session *types.Session, closedIdx, navIdx int, unreadOnly bool) string {
	if unreadOnly {
		navigable := NavigableTabs(session, true)
		if len(navigable) > 0 {
			if navIdx > len(navigable)-1 {
				navIdx = len(navigable) - 1
			}
			return navigable[navIdx].ID
		}
	}
	idx := closedIdx
	if idx > len(session.AITabs)-1 {
		idx = len(session.AITabs) - 1
	}
	return session.AITabs[idx].ID
}

// ReopenResult reports the outcome of ReopenClosedTab.
type ReopenResult struct {
	Tab          *types.Tab
	WasDuplicate bool
}

// ReopenClosedTab pops the newest history entry. If an existing tab shares
// the entry's backing agent-session identifier the existing tab is activated
// instead and the entry is still consumed. Otherwise the tab is restored
// under a fresh identifier at its original position (clamped) and activated.
func (s *Store) ReopenClosedTab(session *types.Session) (*types.Session, ReopenResult, bool) {
	if session == nil || len(session.ClosedTabHistory) == 0 {
		return session, ReopenResult{}, false
	}
	next := session.Clone()
	entry := next.ClosedTabHistory[0]
	next.ClosedTabHistory = next.ClosedTabHistory[1:]

	if existing, _ := next.TabByAgentSessionID(entry.Tab.AgentSessionID); existing != nil {
		next.ActiveTabID = existing.ID
		return next, ReopenResult{Tab: existing, WasDuplicate: true}, true
	}

	restored := entry.Tab.Clone()
	restored.ID = s.newID()
	at := entry.OriginalIndex
	if at > len(next.AITabs) {
		at = len(next.AITabs)
	}
	next.AITabs = append(next.AITabs[:at], append([]*types.Tab{restored}, next.AITabs[at:]...)...)
	next.ActiveTabID = restored.ID
	return next, ReopenResult{Tab: restored}, true
}
