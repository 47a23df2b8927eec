package contextops

import (
	"fmt"
	"strings"
	"time"

	"tabflow/internal/types"
)

// OpStatus is the terminal outcome of one workflow invocation. Cancellation
// is its own outcome, not an error.
type OpStatus string

const (
	OpComplete  OpStatus = "complete"
	OpCancelled OpStatus = "cancelled"
	OpError     OpStatus = "error"
)

const (
	msgOpInProgress      = "a transfer or merge is already in progress"
	msgTabAlreadyRunning = "an operation for this tab is already running"
	msgEmptySource       = "source tab has no context"
	msgSourceNotFound    = "source tab not found"
	msgTargetNotFound    = "target tab not found"
	msgSelfMerge         = "cannot merge a tab with itself"
)

// tabDisplayName mirrors how the UI derives a label: user-assigned name,
// then the backing agent-session identifier, then the ordinal position.
func tabDisplayName(tab *types.Tab, index int) string {
	if tab == nil {
		return ""
	}
	if tab.Name != nil && strings.TrimSpace(*tab.Name) != "" {
		return strings.TrimSpace(*tab.Name)
	}
	if tab.AgentSessionID != nil && *tab.AgentSessionID != "" {
		return *tab.AgentSessionID
	}
	return fmt.Sprintf("Tab %d", index+1)
}

func systemNotice(text string, at time.Time) types.LogEntry {
	return types.LogEntry{
		ID:        types.NewID(),
		Role:      types.LogRoleSystem,
		Text:      text,
		Timestamp: at,
	}
}

func transferNotice(sourceAgent, targetAgent string, groomed bool, at time.Time) types.LogEntry {
	grooming := "no grooming applied"
	if groomed {
		grooming = "grooming applied"
	}
	text := fmt.Sprintf("Context transferred from %s to %s (%s).", sourceAgent, targetAgent, grooming)
	return systemNotice(text, at)
}

func mergeNotice(sourceName, targetName string, groomed bool, at time.Time) types.LogEntry {
	grooming := "no grooming applied"
	if groomed {
		grooming = "grooming applied"
	}
	text := fmt.Sprintf("Merged context from %s and %s (%s). Review the combined context above.", sourceName, targetName, grooming)
	return systemNotice(text, at)
}

func summarizeNotice(originalTokens, compactedTokens, reductionPercent int, at time.Time) types.LogEntry {
	text := fmt.Sprintf("Context compacted: %d tokens down to %d (%d%% reduction).",
		originalTokens, compactedTokens, reductionPercent)
	return systemNotice(text, at)
}
