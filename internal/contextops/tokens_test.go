package contextops

import (
	"testing"

	"tabflow/internal/types"
)

func TestEstimateTokensHeuristic(t *testing.T) {
	logs := []types.LogEntry{
		{Text: "abcd"},     // 1 token
		{Text: "abcdefgh"}, // 2 tokens
		{Text: "abc"},      // rounds up to 1
	}
	if got := EstimateTokens(logs); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}

func TestEstimateTokensPrefersExactCounts(t *testing.T) {
	logs := []types.LogEntry{
		{Text: "this text is ignored when a count is present", TokenCount: 3},
		{Text: "abcd"},
	}
	if got := EstimateTokens(logs); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := EstimateTokens(nil); got != 0 {
		t.Fatalf("expected 0 for empty transcript, got %d", got)
	}
}
