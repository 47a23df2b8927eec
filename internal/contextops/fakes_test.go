package contextops

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tabflow/internal/types"
)

type fakeExtractor struct {
	err error
}

func (f *fakeExtractor) Extract(ctx context.Context, tab *types.Tab, displayName string, session *types.Session) (*types.ExtractedContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	out := &types.ExtractedContext{
		SourceTabID:     tab.ID,
		DisplayName:     displayName,
		Logs:            append([]types.LogEntry{}, tab.Logs...),
		EstimatedTokens: EstimateTokens(tab.Logs),
	}
	if session != nil {
		out.SourceAgent = session.AgentKind
		out.ProjectRoot = session.ProjectRoot
	}
	return out, nil
}

// fakeGroomer concatenates its sources, optionally dropping every entry
// whose text repeats, and can block until released to exercise concurrency.
type fakeGroomer struct {
	mu        sync.Mutex
	calls     []GroomRequest
	cancelled int
	err       error
	block     chan struct{}
	keep      int // keep only the first N entries, 0 keeps all
}

func (f *fakeGroomer) Groom(ctx context.Context, req GroomRequest, onProgress ProgressFunc) (*GroomResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	block := f.block
	f.mu.Unlock()

	if onProgress != nil {
		onProgress(Progress{Stage: StageGrooming, Percent: 30})
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	var logs []types.LogEntry
	for _, source := range req.Sources {
		logs = append(logs, source.Logs...)
	}
	before := EstimateTokens(logs)
	if f.keep > 0 && len(logs) > f.keep {
		logs = logs[:f.keep]
	}
	if onProgress != nil {
		onProgress(Progress{Stage: StageGrooming, Percent: 90})
	}
	return &GroomResult{GroomedLogs: logs, TokensSaved: before - EstimateTokens(logs)}, nil
}

func (f *fakeGroomer) CancelGrooming() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
}

func (f *fakeGroomer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGroomer) lastCall() (GroomRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return GroomRequest{}, false
	}
	return f.calls[len(f.calls)-1], true
}

type fakeDirectory struct {
	available bool
	err       error
}

func (f *fakeDirectory) Probe(kind string) (bool, string, error) {
	if f.err != nil {
		return false, kind, f.err
	}
	return f.available, kind, nil
}

func workflowSession(id, agent string, tabCount, logsPerTab int) *types.Session {
	session := &types.Session{
		ID:          id,
		Name:        id,
		ProjectRoot: "/tmp/" + id,
		AgentKind:   agent,
		CreatedAt:   time.Now(),
	}
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < tabCount; i++ {
		tab := &types.Tab{
			ID:        fmt.Sprintf("%s-tab-%d", id, i+1),
			CreatedAt: time.Now(),
			State:     types.TabStateIdle,
		}
		for j := 0; j < logsPerTab; j++ {
			tab.Logs = append(tab.Logs, types.LogEntry{
				ID:        fmt.Sprintf("%s-log-%d-%d", tab.ID, i, j),
				Role:      types.LogRoleUser,
				Text:      fmt.Sprintf("entry %d of %s", j, tab.ID),
				Timestamp: base.Add(time.Duration(i*100+j) * time.Minute),
			})
		}
		session.AITabs = append(session.AITabs, tab)
	}
	if tabCount > 0 {
		session.ActiveTabID = session.AITabs[0].ID
	}
	return session
}

var errBoom = errors.New("boom")
