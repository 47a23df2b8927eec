package contextops

import "tabflow/internal/types"

// EstimateTokens approximates the token count of a transcript. Entries that
// carry an exact count from the agent use it; the rest fall back to the
// four-characters-per-token heuristic.
func EstimateTokens(logs []types.LogEntry) int {
	total := 0
	for _, entry := range logs {
		if entry.TokenCount > 0 {
			total += entry.TokenCount
			continue
		}
		total += (len(entry.Text) + 3) / 4
	}
	return total
}
