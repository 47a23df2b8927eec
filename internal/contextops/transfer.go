package contextops

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tabflow/internal/logging"
	"tabflow/internal/tabs"
	"tabflow/internal/types"
)

const opTransfer = "transfer"

// TransferRequest moves one tab's context to a freshly created session under
// a different agent kind.
type TransferRequest struct {
	Session     *types.Session
	SourceTabID string
	TargetAgent string
	Groom       bool
	OnProgress  ProgressFunc
}

type TransferResult struct {
	Status      OpStatus
	Err         string
	Session     *types.Session
	Warnings    []string
	Groomed     bool
	TokensSaved int
}

// Transferrer runs the cross-agent transfer workflow. It shares the
// grooming-service singleton with the merge workflow through the injected
// single-flight lock.
type Transferrer struct {
	extractor Extractor
	groomer   Groomer
	directory AgentDirectory
	flight    *SingleFlight
	tabStore  *tabs.Store
	log       logging.Logger

	// TokenWarningCeiling triggers an advisory warning when the estimated
	// source token count exceeds it. Zero disables the check.
	TokenWarningCeiling int

	mu      sync.Mutex
	lastReq *TransferRequest
	cancel  context.CancelFunc
}

func NewTransferrer(extractor Extractor, groomer Groomer, directory AgentDirectory, flight *SingleFlight, log logging.Logger) *Transferrer {
	if flight == nil {
		flight = &SingleFlight{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Transferrer{
		extractor: extractor,
		groomer:   groomer,
		directory: directory,
		flight:    flight,
		tabStore:  tabs.NewStore(),
		log:       log,
	}
}

// Run executes one transfer. Collaborator failures come back in the
// result's Err field, never as a panic; the lock is released on every exit
// path.
func (t *Transferrer) Run(ctx context.Context, req TransferRequest) *TransferResult {
	if !t.flight.TryAcquire(opTransfer) {
		return &TransferResult{Status: OpError, Err: msgOpInProgress}
	}
	defer t.flight.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	t.mu.Lock()
	reqCopy := req
	t.lastReq = &reqCopy
	t.cancel = cancel
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.cancel = nil
		t.mu.Unlock()
	}()

	progress := monotonic(req.OnProgress)
	progress(Progress{Stage: StageValidating, Percent: 0})

	result := &TransferResult{}
	source, sourceIdx := req.Session.TabByID(req.SourceTabID)
	if source == nil {
		return &TransferResult{Status: OpError, Err: msgSourceNotFound}
	}
	if len(source.Logs) == 0 {
		return &TransferResult{Status: OpError, Err: msgEmptySource}
	}
	if ceiling := t.TokenWarningCeiling; ceiling > 0 {
		if estimated := EstimateTokens(source.Logs); estimated > ceiling {
			warning := fmt.Sprintf("estimated context size %d tokens exceeds the configured ceiling of %d", estimated, ceiling)
			result.Warnings = append(result.Warnings, warning)
			t.log.Warn("transfer context over token ceiling",
				logging.F("tab", source.ID), logging.F("estimated", estimated), logging.F("ceiling", ceiling))
		}
	}
	if t.directory != nil {
		available, label, err := t.directory.Probe(req.TargetAgent)
		switch {
		case err != nil:
			// Advisory check only; proceed when it cannot be completed.
			result.Warnings = append(result.Warnings, fmt.Sprintf("could not verify availability of %s: %v", req.TargetAgent, err))
			t.log.Warn("agent availability check failed", logging.F("agent", req.TargetAgent), logging.F("error", err))
		case !available:
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s does not appear to be available on this machine", label))
			t.log.Warn("target agent not available", logging.F("agent", req.TargetAgent))
		}
	}

	if ctx.Err() != nil {
		return &TransferResult{Status: OpCancelled, Warnings: result.Warnings}
	}

	progress(Progress{Stage: StageExtracting, Percent: 10})
	extracted, err := t.extractor.Extract(ctx, source, tabDisplayName(source, sourceIdx), req.Session)
	if err != nil {
		if ctx.Err() != nil {
			return &TransferResult{Status: OpCancelled, Warnings: result.Warnings}
		}
		return &TransferResult{Status: OpError, Err: fmt.Sprintf("context extraction failed: %v", err), Warnings: result.Warnings}
	}
	if ctx.Err() != nil {
		return &TransferResult{Status: OpCancelled, Warnings: result.Warnings}
	}

	logs := extracted.Logs
	if req.Groom && t.groomer != nil {
		groomed, err := t.groomer.Groom(ctx, GroomRequest{
			Sources:           []*types.ExtractedContext{extracted},
			TargetAgent:       req.TargetAgent,
			TargetProjectRoot: req.Session.ProjectRoot,
			GroomingPrompt:    groomingPrompt(req.Session.AgentKind, req.TargetAgent),
		}, progress)
		if err != nil {
			if ctx.Err() != nil {
				return &TransferResult{Status: OpCancelled, Warnings: result.Warnings}
			}
			return &TransferResult{Status: OpError, Err: fmt.Sprintf("grooming failed: %v", err), Warnings: result.Warnings}
		}
		logs = groomed.GroomedLogs
		result.Groomed = true
		result.TokensSaved = groomed.TokensSaved
	}
	if ctx.Err() != nil {
		return &TransferResult{Status: OpCancelled, Warnings: result.Warnings}
	}

	progress(Progress{Stage: StageCreating, Percent: 95})
	now := time.Now()
	notice := transferNotice(req.Session.AgentKind, req.TargetAgent, result.Groomed, now)
	session := &types.Session{
		ID:          types.NewID(),
		Name:        fmt.Sprintf("%s (from %s)", req.Session.Name, req.Session.AgentKind),
		ProjectRoot: req.Session.ProjectRoot,
		AgentKind:   req.TargetAgent,
		CreatedAt:   now,
	}
	session, _ = t.tabStore.CreateTab(session, tabs.CreateTabOptions{
		Logs: append([]types.LogEntry{notice}, logs...),
	})

	progress(Progress{Stage: StageCreating, Percent: 100})
	result.Status = OpComplete
	result.Session = session
	t.log.Info("transfer complete",
		logging.F("source_tab", source.ID),
		logging.F("target_agent", req.TargetAgent),
		logging.F("groomed", result.Groomed))
	return result
}

// Cancel aborts the in-flight transfer, if any. The grooming service's own
// cancellation entry point is invoked alongside the context so an in-flight
// groom call stops promptly.
func (t *Transferrer) Cancel() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if t.groomer != nil {
		t.groomer.CancelGrooming()
	}
}

// RetryLast re-runs the most recent request unchanged.
func (t *Transferrer) RetryLast(ctx context.Context) *TransferResult {
	req, ok := t.lastRequest()
	if !ok {
		return &TransferResult{Status: OpError, Err: "no transfer to retry"}
	}
	return t.Run(ctx, req)
}

// RetryLastWithoutGrooming re-runs the most recent request with grooming
// forced off, for recovery from grooming failures.
func (t *Transferrer) RetryLastWithoutGrooming(ctx context.Context) *TransferResult {
	req, ok := t.lastRequest()
	if !ok {
		return &TransferResult{Status: OpError, Err: "no transfer to retry"}
	}
	req.Groom = false
	return t.Run(ctx, req)
}

func (t *Transferrer) lastRequest() (TransferRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastReq == nil {
		return TransferRequest{}, false
	}
	return *t.lastReq, true
}

// groomingPrompt builds the agent-pair-specific instruction for the
// grooming service.
func groomingPrompt(sourceAgent, targetAgent string) string {
	return fmt.Sprintf(
		"Rewrite this %s conversation so a fresh %s session can continue the work. Remove duplicated tool output and dead ends; keep decisions, file paths, and open tasks.",
		sourceAgent, targetAgent)
}
