package contextops

import (
	"context"

	"tabflow/internal/types"
)

// Extractor converts a tab's transcript into a normalized context object.
type Extractor interface {
	Extract(ctx context.Context, tab *types.Tab, displayName string, session *types.Session) (*types.ExtractedContext, error)
}

// GroomRequest asks the grooming service to clean and deduplicate one or
// more extracted contexts for consumption by the target agent. Merge passes
// both of its sources in a single request so the service can deduplicate
// across them.
type GroomRequest struct {
	Sources           []*types.ExtractedContext
	TargetAgent       string
	TargetProjectRoot string
	GroomingPrompt    string
}

type GroomResult struct {
	GroomedLogs []types.LogEntry
	TokensSaved int
}

// Groomer is the external grooming/summarization service. Timeouts are the
// service's responsibility; whatever it reports comes back through the
// normal error path. CancelGrooming aborts an in-flight call promptly and
// must be invoked alongside any cancellation flag.
type Groomer interface {
	Groom(ctx context.Context, req GroomRequest, onProgress ProgressFunc) (*GroomResult, error)
	CancelGrooming()
}

// AgentDirectory answers advisory availability questions about agent kinds.
type AgentDirectory interface {
	Probe(kind string) (available bool, displayName string, err error)
}
