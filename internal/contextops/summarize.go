package contextops

import (
	"context"
	"fmt"
	"time"

	"tabflow/internal/logging"
	"tabflow/internal/tabs"
	"tabflow/internal/types"
)

// SummarizePolicy authorizes compaction of a tab. The default policy keys
// off the estimated transcript size.
type SummarizePolicy func(tab *types.Tab, estimatedTokens int) bool

func TokenThresholdPolicy(threshold int) SummarizePolicy {
	return func(_ *types.Tab, estimatedTokens int) bool {
		return estimatedTokens >= threshold
	}
}

type SummarizeRequest struct {
	Session    *types.Session
	TabID      string
	OnProgress ProgressFunc
}

type SummarizeResult struct {
	Status           OpStatus
	Err              string
	Session          *types.Session
	NewTab           *types.Tab
	OriginalTokens   int
	CompactedTokens  int
	ReductionPercent int
	// SourceNote is a system log entry documenting the reduction, for the
	// caller to append to the source tab. The workflow never mutates the
	// source tab itself.
	SourceNote types.LogEntry
}

// Summarizer compacts one tab's own context into a new sibling tab placed
// immediately after the source. It tracks only per-tab state; it is not
// covered by the transfer/merge lock, so distinct tabs may summarize
// concurrently.
type Summarizer struct {
	extractor Extractor
	compactor Groomer
	tracker   *Tracker
	policy    SummarizePolicy
	tabStore  *tabs.Store
	log       logging.Logger
}

func NewSummarizer(extractor Extractor, compactor Groomer, tracker *Tracker, policy SummarizePolicy, log logging.Logger) *Summarizer {
	if tracker == nil {
		tracker = NewTracker()
	}
	if policy == nil {
		policy = func(*types.Tab, int) bool { return true }
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Summarizer{
		extractor: extractor,
		compactor: compactor,
		tracker:   tracker,
		policy:    policy,
		tabStore:  tabs.NewStore(),
		log:       log,
	}
}

func (s *Summarizer) State(tabID string) TabOpState { return s.tracker.State(tabID) }

func (s *Summarizer) AnyRunning() bool { return s.tracker.AnyRunning() }

func (s *Summarizer) Clear(tabID string) { s.tracker.Clear(tabID) }

// Cancel aborts the in-flight compaction for the tab.
func (s *Summarizer) Cancel(tabID string) {
	if s.tracker.Cancel(tabID) && s.compactor != nil {
		s.compactor.CancelGrooming()
	}
}

func (s *Summarizer) CancelAll() {
	s.tracker.CancelAll()
	if s.compactor != nil {
		s.compactor.CancelGrooming()
	}
}

func (s *Summarizer) Run(ctx context.Context, req SummarizeRequest) *SummarizeResult {
	source, sourceIdx := req.Session.TabByID(req.TabID)
	if source == nil {
		return &SummarizeResult{Status: OpError, Err: msgSourceNotFound}
	}
	if len(source.Logs) == 0 {
		return &SummarizeResult{Status: OpError, Err: msgEmptySource}
	}
	originalTokens := EstimateTokens(source.Logs)
	if !s.policy(source, originalTokens) {
		return &SummarizeResult{Status: OpError, Err: "context is below the summarization threshold"}
	}

	// Re-invocation while a compaction for this tab is running is a no-op
	// rejection, never a queue.
	if !s.tracker.Begin(source.ID) {
		return &SummarizeResult{Status: OpError, Err: msgTabAlreadyRunning}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.tracker.registerCancel(source.ID, cancel)

	progress := monotonic(fanout(req.OnProgress, func(p Progress) {
		s.tracker.Progress(source.ID, p)
	}))
	progress(Progress{Stage: StageValidating, Percent: 0})

	result := s.run(ctx, req, source, sourceIdx, originalTokens, progress)
	switch result.Status {
	case OpComplete:
		s.tracker.Complete(source.ID)
	case OpCancelled:
		s.tracker.Clear(source.ID)
	default:
		s.tracker.Fail(source.ID, result.Err)
	}
	return result
}

func (s *Summarizer) run(ctx context.Context, req SummarizeRequest, source *types.Tab, sourceIdx, originalTokens int, progress ProgressFunc) *SummarizeResult {
	if ctx.Err() != nil {
		return &SummarizeResult{Status: OpCancelled}
	}

	progress(Progress{Stage: StageExtracting, Percent: 10})
	extracted, err := s.extractor.Extract(ctx, source, tabDisplayName(source, sourceIdx), req.Session)
	if err != nil {
		if ctx.Err() != nil {
			return &SummarizeResult{Status: OpCancelled}
		}
		return &SummarizeResult{Status: OpError, Err: fmt.Sprintf("context extraction failed: %v", err)}
	}
	if ctx.Err() != nil {
		return &SummarizeResult{Status: OpCancelled}
	}

	compacted, err := s.compactor.Groom(ctx, GroomRequest{
		Sources:           []*types.ExtractedContext{extracted},
		TargetAgent:       req.Session.AgentKind,
		TargetProjectRoot: req.Session.ProjectRoot,
		GroomingPrompt:    summarizePrompt(req.Session.AgentKind),
	}, progress)
	if err != nil {
		if ctx.Err() != nil {
			return &SummarizeResult{Status: OpCancelled}
		}
		return &SummarizeResult{Status: OpError, Err: fmt.Sprintf("summarization failed: %v", err)}
	}
	if ctx.Err() != nil {
		return &SummarizeResult{Status: OpCancelled}
	}

	progress(Progress{Stage: StageCreating, Percent: 95})
	compactedTokens := EstimateTokens(compacted.GroomedLogs)
	reduction := 0
	if originalTokens > 0 && compactedTokens < originalTokens {
		reduction = (originalTokens - compactedTokens) * 100 / originalTokens
	}

	name := tabDisplayName(source, sourceIdx) + " (compacted)"
	session, newTab := s.tabStore.CreateTabAt(req.Session, source.ID, tabs.CreateTabOptions{
		Name: name,
		Logs: compacted.GroomedLogs,
	})

	progress(Progress{Stage: StageCreating, Percent: 100})
	s.log.Info("summarize complete",
		logging.F("source_tab", source.ID),
		logging.F("original_tokens", originalTokens),
		logging.F("compacted_tokens", compactedTokens),
		logging.F("reduction_percent", reduction))
	return &SummarizeResult{
		Status:           OpComplete,
		Session:          session,
		NewTab:           newTab,
		OriginalTokens:   originalTokens,
		CompactedTokens:  compactedTokens,
		ReductionPercent: reduction,
		SourceNote:       summarizeNotice(originalTokens, compactedTokens, reduction, time.Now()),
	}
}

func summarizePrompt(agentKind string) string {
	return fmt.Sprintf(
		"Compact this %s conversation into the smallest transcript that still lets the agent continue the work. Keep decisions, file paths, error messages, and pending tasks.",
		agentKind)
}
