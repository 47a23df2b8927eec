package extract

import (
	"context"
	"errors"

	"tabflow/internal/contextops"
	"tabflow/internal/types"
)

// Extractor is the default in-process context extractor: it normalizes a
// tab's transcript into the shape the grooming service consumes. Deployments
// that read transcripts from agent files substitute their own.
type Extractor struct{}

var _ contextops.Extractor = Extractor{}

func (Extractor) Extract(ctx context.Context, tab *types.Tab, displayName string, session *types.Session) (*types.ExtractedContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tab == nil {
		return nil, errors.New("no tab to extract")
	}
	out := &types.ExtractedContext{
		SourceTabID:     tab.ID,
		DisplayName:     displayName,
		Logs:            append([]types.LogEntry{}, tab.Logs...),
		EstimatedTokens: contextops.EstimateTokens(tab.Logs),
	}
	if session != nil {
		out.SourceAgent = session.AgentKind
		out.ProjectRoot = session.ProjectRoot
	}
	return out, nil
}
