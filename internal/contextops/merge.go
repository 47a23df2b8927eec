package contextops

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tabflow/internal/logging"
	"tabflow/internal/tabs"
	"tabflow/internal/types"
)

const opMerge = "merge"

type MergeMode string

const (
	// MergeModeNewSession constructs a brand-new session holding the merged
	// transcript, exactly as transfer does.
	MergeModeNewSession MergeMode = "new_session"
	// MergeModeInject returns the merged transcript for the caller to splice
	// into the existing target tab, with an auto-send flag so the target
	// agent reviews the injected context immediately.
	MergeModeInject MergeMode = "inject"
)

// MergeRequest combines two tabs' contexts, from the same session or
// different ones. An empty TargetTabID resolves to the target session's
// active tab.
type MergeRequest struct {
	SourceSession      *types.Session
	SourceTabID        string
	TargetSession      *types.Session
	TargetTabID        string
	Mode               MergeMode
	Groom              bool
	PreserveTimestamps bool
	OnProgress         ProgressFunc
}

// MergeInjection is the inject-mode payload the caller splices into the
// target tab.
type MergeInjection struct {
	TargetTabID string
	Logs        []types.LogEntry
	Notice      types.LogEntry
	AutoSend    bool
}

type MergeResult struct {
	Status      OpStatus
	Err         string
	Session     *types.Session
	Injection   *MergeInjection
	Groomed     bool
	TokensSaved int
}

// Merger runs the two-source merge workflow. It shares the single-flight
// lock with transfer and tracks per-source-tab state in the tracker.
type Merger struct {
	extractor Extractor
	groomer   Groomer
	flight    *SingleFlight
	tracker   *Tracker
	tabStore  *tabs.Store
	log       logging.Logger
}

func NewMerger(extractor Extractor, groomer Groomer, flight *SingleFlight, tracker *Tracker, log logging.Logger) *Merger {
	if flight == nil {
		flight = &SingleFlight{}
	}
	if tracker == nil {
		tracker = NewTracker()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Merger{
		extractor: extractor,
		groomer:   groomer,
		flight:    flight,
		tracker:   tracker,
		tabStore:  tabs.NewStore(),
		log:       log,
	}
}

// State returns the per-tab record for the given source tab.
func (m *Merger) State(tabID string) TabOpState { return m.tracker.State(tabID) }

func (m *Merger) AnyRunning() bool { return m.tracker.AnyRunning() }

// Clear drops the source tab's terminal record after the caller consumed it.
func (m *Merger) Clear(tabID string) { m.tracker.Clear(tabID) }

// Cancel aborts the in-flight merge for the source tab and pokes the
// grooming service so an in-flight groom call stops promptly.
func (m *Merger) Cancel(tabID string) {
	if m.tracker.Cancel(tabID) && m.groomer != nil {
		m.groomer.CancelGrooming()
	}
}

func (m *Merger) Run(ctx context.Context, req MergeRequest) *MergeResult {
	if !m.flight.TryAcquire(opMerge) {
		return &MergeResult{Status: OpError, Err: msgOpInProgress}
	}
	defer m.flight.Release()

	source, sourceIdx := req.SourceSession.TabByID(req.SourceTabID)
	if source == nil {
		return &MergeResult{Status: OpError, Err: msgSourceNotFound}
	}
	target, targetIdx := m.resolveTarget(req)
	if target == nil {
		return &MergeResult{Status: OpError, Err: msgTargetNotFound}
	}
	if req.SourceSession.ID == req.TargetSession.ID && source.ID == target.ID {
		return &MergeResult{Status: OpError, Err: msgSelfMerge}
	}
	if len(source.Logs) == 0 {
		return &MergeResult{Status: OpError, Err: msgEmptySource}
	}

	if !m.tracker.Begin(source.ID) {
		return &MergeResult{Status: OpError, Err: msgTabAlreadyRunning}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.tracker.registerCancel(source.ID, cancel)

	progress := monotonic(fanout(req.OnProgress, func(p Progress) {
		m.tracker.Progress(source.ID, p)
	}))
	progress(Progress{Stage: StageValidating, Percent: 0})

	result := m.run(ctx, req, source, sourceIdx, target, targetIdx, progress)
	switch result.Status {
	case OpComplete:
		m.tracker.Complete(source.ID)
	case OpCancelled:
		m.tracker.Clear(source.ID)
	default:
		m.tracker.Fail(source.ID, result.Err)
	}
	return result
}

func (m *Merger) resolveTarget(req MergeRequest) (*types.Tab, int) {
	if req.TargetSession == nil {
		return nil, -1
	}
	if req.TargetTabID != "" {
		return req.TargetSession.TabByID(req.TargetTabID)
	}
	if tab, idx := req.TargetSession.TabByID(req.TargetSession.ActiveTabID); tab != nil {
		return tab, idx
	}
	if len(req.TargetSession.AITabs) > 0 {
		return req.TargetSession.AITabs[0], 0
	}
	return nil, -1
}

func (m *Merger) run(ctx context.Context, req MergeRequest, source *types.Tab, sourceIdx int, target *types.Tab, targetIdx int, progress ProgressFunc) *MergeResult {
	if ctx.Err() != nil {
		return &MergeResult{Status: OpCancelled}
	}

	progress(Progress{Stage: StageExtracting, Percent: 10})
	sourceCtx, err := m.extractor.Extract(ctx, source, tabDisplayName(source, sourceIdx), req.SourceSession)
	if err != nil {
		return m.collaboratorFailure(ctx, "context extraction failed", err)
	}
	targetCtx, err := m.extractor.Extract(ctx, target, tabDisplayName(target, targetIdx), req.TargetSession)
	if err != nil {
		return m.collaboratorFailure(ctx, "context extraction failed", err)
	}
	if ctx.Err() != nil {
		return &MergeResult{Status: OpCancelled}
	}

	result := &MergeResult{}
	var merged []types.LogEntry
	if req.Groom && m.groomer != nil {
		// Both contexts go to the service in one request so it can
		// deduplicate across them.
		groomed, err := m.groomer.Groom(ctx, GroomRequest{
			Sources:           []*types.ExtractedContext{sourceCtx, targetCtx},
			TargetAgent:       req.TargetSession.AgentKind,
			TargetProjectRoot: req.TargetSession.ProjectRoot,
			GroomingPrompt:    groomingPrompt(req.SourceSession.AgentKind, req.TargetSession.AgentKind),
		}, progress)
		if err != nil {
			return m.collaboratorFailure(ctx, "grooming failed", err)
		}
		merged = groomed.GroomedLogs
		result.Groomed = true
		result.TokensSaved = groomed.TokensSaved
	} else {
		merged = append(append([]types.LogEntry{}, sourceCtx.Logs...), targetCtx.Logs...)
		if req.PreserveTimestamps {
			sort.SliceStable(merged, func(i, j int) bool {
				return merged[i].Timestamp.Before(merged[j].Timestamp)
			})
		}
	}
	if ctx.Err() != nil {
		return &MergeResult{Status: OpCancelled}
	}

	progress(Progress{Stage: StageCreating, Percent: 95})
	now := time.Now()
	notice := mergeNotice(tabDisplayName(source, sourceIdx), tabDisplayName(target, targetIdx), result.Groomed, now)

	switch req.Mode {
	case MergeModeInject:
		result.Injection = &MergeInjection{
			TargetTabID: target.ID,
			Logs:        merged,
			Notice:      notice,
			AutoSend:    true,
		}
	default:
		session := &types.Session{
			ID:          types.NewID(),
			Name:        fmt.Sprintf("Merged: %s + %s", tabDisplayName(source, sourceIdx), tabDisplayName(target, targetIdx)),
			ProjectRoot: req.TargetSession.ProjectRoot,
			AgentKind:   req.TargetSession.AgentKind,
			CreatedAt:   now,
		}
		session, _ = m.tabStore.CreateTab(session, tabs.CreateTabOptions{
			Logs: append([]types.LogEntry{notice}, merged...),
		})
		result.Session = session
	}

	progress(Progress{Stage: StageCreating, Percent: 100})
	result.Status = OpComplete
	m.log.Info("merge complete",
		logging.F("source_tab", source.ID),
		logging.F("target_tab", target.ID),
		logging.F("mode", string(req.Mode)),
		logging.F("groomed", result.Groomed))
	return result
}

func (m *Merger) collaboratorFailure(ctx context.Context, prefix string, err error) *MergeResult {
	if ctx.Err() != nil {
		return &MergeResult{Status: OpCancelled}
	}
	return &MergeResult{Status: OpError, Err: fmt.Sprintf("%s: %v", prefix, err)}
}
