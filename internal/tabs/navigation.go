package tabs

import "tabflow/internal/types"

// Navigation operates over the navigable subset and wraps at both ends. When
// the active tab sits outside the subset, NextTab lands on the first
// navigable tab and PrevTab on the last, rather than computing an offset.

func (s *Store) NextTab(session *types.Session, unreadOnly bool) (*types.Session, bool) {
	return s.step(session, unreadOnly, 1)
}

func (s *Store) PrevTab(session *types.Session, unreadOnly bool) (*types.Session, bool) {
	return s.step(session, unreadOnly, -1)
}

func (s *Store) step(session *types.Session, unreadOnly bool, dir int) (*types.Session, bool) {
	if session == nil || len(session.AITabs) < 2 {
		return session, false
	}
	navigable := NavigableTabs(session, unreadOnly)
	if len(navigable) == 0 {
		return session, false
	}
	active, _ := s.ActiveTab(session)
	current := -1
	for i, tab := range navigable {
		if active != nil && tab.ID == active.ID {
			current = i
			break
		}
	}
	var target *types.Tab
	switch {
	case current >= 0:
		n := len(navigable)
		target = navigable[((current+dir)%n+n)%n]
	case dir > 0:
		target = navigable[0]
	default:
		target = navigable[len(navigable)-1]
	}
	return s.SetActiveTab(session, target.ID)
}

// TabByIndex activates the tab at the given position within the navigable
// subset. Out-of-bounds indexes are not applicable.
func (s *Store) TabByIndex(session *types.Session, index int, unreadOnly bool) (*types.Session, bool) {
	navigable := NavigableTabs(session, unreadOnly)
	if index < 0 || index >= len(navigable) {
		return session, false
	}
	return s.SetActiveTab(session, navigable[index].ID)
}

// LastTab activates the final tab of the navigable subset.
func (s *Store) LastTab(session *types.Session, unreadOnly bool) (*types.Session, bool) {
	navigable := NavigableTabs(session, unreadOnly)
	if len(navigable) == 0 {
		return session, false
	}
	return s.SetActiveTab(session, navigable[len(navigable)-1].ID)
}
