package tabs

import (
	"strings"

	"tabflow/internal/types"
)

// NavigableTabs returns the tabs keyboard navigation may land on. With
// unreadOnly off this is the full display-ordered list; with it on, a tab
// qualifies when it is unread, carries non-blank draft text, or has staged
// attachments.
func NavigableTabs(session *types.Session, unreadOnly bool) []*types.Tab {
	if session == nil {
		return nil
	}
	if !unreadOnly {
		return session.AITabs
	}
	out := make([]*types.Tab, 0, len(session.AITabs))
	for _, tab := range session.AITabs {
		if tabIsNavigable(tab) {
			out = append(out, tab)
		}
	}
	return out
}

func tabIsNavigable(tab *types.Tab) bool {
	if tab == nil {
		return false
	}
	if tab.Unread {
		return true
	}
	if strings.TrimSpace(tab.Draft) != "" {
		return true
	}
	return len(tab.Attachments) > 0
}
