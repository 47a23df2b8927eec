package contextops

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"tabflow/internal/types"
)

func TestTransferConstructsNewSession(t *testing.T) {
	groomer := &fakeGroomer{}
	transferrer := NewTransferrer(&fakeExtractor{}, groomer, nil, &SingleFlight{}, nil)
	source := workflowSession("src", "claude", 1, 3)

	result := transferrer.Run(context.Background(), TransferRequest{
		Session:     source,
		SourceTabID: "src-tab-1",
		TargetAgent: "codex",
		Groom:       true,
	})
	if result.Status != OpComplete {
		t.Fatalf("expected complete, got %s (%s)", result.Status, result.Err)
	}
	if !result.Groomed {
		t.Fatalf("expected grooming applied")
	}
	session := result.Session
	if session == nil || len(session.AITabs) != 1 {
		t.Fatalf("expected a single-tab session")
	}
	if session.AgentKind != "codex" {
		t.Fatalf("expected target agent kind, got %s", session.AgentKind)
	}
	if session.ProjectRoot != source.ProjectRoot {
		t.Fatalf("expected project root carried over")
	}
	tab := session.AITabs[0]
	if tab.AgentSessionID != nil {
		t.Fatalf("expected empty backing identifier on the new tab")
	}
	if len(tab.Logs) != 4 {
		t.Fatalf("expected notice plus 3 entries, got %d", len(tab.Logs))
	}
	notice := tab.Logs[0]
	if notice.Role != types.LogRoleSystem {
		t.Fatalf("expected a system notice first")
	}
	if !strings.Contains(notice.Text, "claude") || !strings.Contains(notice.Text, "codex") {
		t.Fatalf("notice must name both agents: %q", notice.Text)
	}
	if !strings.Contains(notice.Text, "grooming applied") {
		t.Fatalf("notice must state grooming occurred: %q", notice.Text)
	}
}

func TestTransferWithoutGroomingUsesRawTranscript(t *testing.T) {
	groomer := &fakeGroomer{}
	transferrer := NewTransferrer(&fakeExtractor{}, groomer, nil, &SingleFlight{}, nil)
	source := workflowSession("src", "claude", 1, 2)

	result := transferrer.Run(context.Background(), TransferRequest{
		Session:     source,
		SourceTabID: "src-tab-1",
		TargetAgent: "codex",
	})
	if result.Status != OpComplete {
		t.Fatalf("expected complete, got %s (%s)", result.Status, result.Err)
	}
	if result.Groomed {
		t.Fatalf("expected no grooming")
	}
	if groomer.callCount() != 0 {
		t.Fatalf("grooming service must not be called")
	}
	if !strings.Contains(result.Session.AITabs[0].Logs[0].Text, "no grooming applied") {
		t.Fatalf("notice must state grooming did not occur")
	}
}

func TestTransferRejectsEmptySource(t *testing.T) {
	transferrer := NewTransferrer(&fakeExtractor{}, &fakeGroomer{}, nil, &SingleFlight{}, nil)
	source := workflowSession("src", "claude", 1, 0)
	result := transferrer.Run(context.Background(), TransferRequest{
		Session:     source,
		SourceTabID: "src-tab-1",
		TargetAgent: "codex",
	})
	if result.Status != OpError || result.Err != msgEmptySource {
		t.Fatalf("expected empty-source rejection, got %s (%s)", result.Status, result.Err)
	}
}

func TestTransferRejectsUnknownSourceTab(t *testing.T) {
	transferrer := NewTransferrer(&fakeExtractor{}, &fakeGroomer{}, nil, &SingleFlight{}, nil)
	result := transferrer.Run(context.Background(), TransferRequest{
		Session:     workflowSession("src", "claude", 1, 2),
		SourceTabID: "missing",
		TargetAgent: "codex",
	})
	if result.Status != OpError || result.Err != msgSourceNotFound {
		t.Fatalf("expected source-not-found rejection, got %s (%s)", result.Status, result.Err)
	}
}

func TestTransferMutualExclusion(t *testing.T) {
	flight := &SingleFlight{}
	block := make(chan struct{})
	groomer := &fakeGroomer{block: block}
	transferrer := NewTransferrer(&fakeExtractor{}, groomer, nil, flight, nil)
	source := workflowSession("src", "claude", 1, 2)

	var wg sync.WaitGroup
	wg.Add(1)
	var first *TransferResult
	go func() {
		defer wg.Done()
		first = transferrer.Run(context.Background(), TransferRequest{
			Session:     source,
			SourceTabID: "src-tab-1",
			TargetAgent: "codex",
			Groom:       true,
		})
	}()

	// Wait for the first invocation to reach the grooming stage.
	for groomer.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	second := transferrer.Run(context.Background(), TransferRequest{
		Session:     source,
		SourceTabID: "src-tab-1",
		TargetAgent: "codex",
	})
	if second.Status != OpError || second.Err != msgOpInProgress {
		t.Fatalf("expected in-progress rejection, got %s (%s)", second.Status, second.Err)
	}

	close(block)
	wg.Wait()
	if first.Status != OpComplete {
		t.Fatalf("in-flight transfer must be unaffected, got %s (%s)", first.Status, first.Err)
	}
	if _, held := flight.Current(); held {
		t.Fatalf("lock must be released after completion")
	}
}

func TestTransferCancellation(t *testing.T) {
	block := make(chan struct{})
	groomer := &fakeGroomer{block: block}
	transferrer := NewTransferrer(&fakeExtractor{}, groomer, nil, &SingleFlight{}, nil)
	source := workflowSession("src", "claude", 1, 2)

	done := make(chan *TransferResult, 1)
	go func() {
		done <- transferrer.Run(context.Background(), TransferRequest{
			Session:     source,
			SourceTabID: "src-tab-1",
			TargetAgent: "codex",
			Groom:       true,
		})
	}()
	for groomer.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	transferrer.Cancel()

	result := <-done
	if result.Status != OpCancelled {
		t.Fatalf("expected cancelled outcome, got %s (%s)", result.Status, result.Err)
	}
	if result.Session != nil {
		t.Fatalf("cancelled transfer must not construct a session")
	}
	groomer.mu.Lock()
	cancelled := groomer.cancelled
	groomer.mu.Unlock()
	if cancelled == 0 {
		t.Fatalf("grooming service cancellation entry point must be invoked")
	}
	if _, held := transferrer.flight.Current(); held {
		t.Fatalf("lock must be released after cancellation")
	}
}

func TestTransferGroomingFailureAndRetryWithoutGrooming(t *testing.T) {
	groomer := &fakeGroomer{err: errBoom}
	transferrer := NewTransferrer(&fakeExtractor{}, groomer, nil, &SingleFlight{}, nil)
	source := workflowSession("src", "claude", 1, 2)

	result := transferrer.Run(context.Background(), TransferRequest{
		Session:     source,
		SourceTabID: "src-tab-1",
		TargetAgent: "codex",
		Groom:       true,
	})
	if result.Status != OpError || !strings.Contains(result.Err, "grooming failed") {
		t.Fatalf("expected grooming failure, got %s (%s)", result.Status, result.Err)
	}

	retried := transferrer.RetryLastWithoutGrooming(context.Background())
	if retried.Status != OpComplete {
		t.Fatalf("expected retry without grooming to succeed, got %s (%s)", retried.Status, retried.Err)
	}
	if retried.Groomed {
		t.Fatalf("retry must run with grooming forced off")
	}
}

func TestTransferRetryLastRepeatsRequest(t *testing.T) {
	groomer := &fakeGroomer{}
	transferrer := NewTransferrer(&fakeExtractor{}, groomer, nil, &SingleFlight{}, nil)
	if result := transferrer.RetryLast(context.Background()); result.Status != OpError {
		t.Fatalf("expected error with no request to retry")
	}
	source := workflowSession("src", "claude", 1, 2)
	first := transferrer.Run(context.Background(), TransferRequest{
		Session:     source,
		SourceTabID: "src-tab-1",
		TargetAgent: "codex",
		Groom:       true,
	})
	if first.Status != OpComplete {
		t.Fatalf("unexpected first result: %s", first.Status)
	}
	second := transferrer.RetryLast(context.Background())
	if second.Status != OpComplete || !second.Groomed {
		t.Fatalf("expected identical retry, got %s groomed=%v", second.Status, second.Groomed)
	}
}

func TestTransferAvailabilityCheckIsAdvisory(t *testing.T) {
	transferrer := NewTransferrer(&fakeExtractor{}, &fakeGroomer{}, &fakeDirectory{err: errBoom}, &SingleFlight{}, nil)
	source := workflowSession("src", "claude", 1, 2)
	result := transferrer.Run(context.Background(), TransferRequest{
		Session:     source,
		SourceTabID: "src-tab-1",
		TargetAgent: "codex",
	})
	if result.Status != OpComplete {
		t.Fatalf("availability-check failure must not abort the transfer, got %s (%s)", result.Status, result.Err)
	}
	if len(result.Warnings) == 0 {
		t.Fatalf("expected an advisory warning")
	}
}

func TestTransferTokenCeilingWarning(t *testing.T) {
	transferrer := NewTransferrer(&fakeExtractor{}, &fakeGroomer{}, nil, &SingleFlight{}, nil)
	transferrer.TokenWarningCeiling = 1
	source := workflowSession("src", "claude", 1, 2)
	result := transferrer.Run(context.Background(), TransferRequest{
		Session:     source,
		SourceTabID: "src-tab-1",
		TargetAgent: "codex",
	})
	if result.Status != OpComplete {
		t.Fatalf("ceiling warning must be non-fatal, got %s", result.Status)
	}
	found := false
	for _, warning := range result.Warnings {
		if strings.Contains(warning, "ceiling") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a token-ceiling warning, got %v", result.Warnings)
	}
}

func TestTransferProgressNeverDecreases(t *testing.T) {
	transferrer := NewTransferrer(&fakeExtractor{}, &fakeGroomer{}, nil, &SingleFlight{}, nil)
	source := workflowSession("src", "claude", 1, 2)
	last := -1
	result := transferrer.Run(context.Background(), TransferRequest{
		Session:     source,
		SourceTabID: "src-tab-1",
		TargetAgent: "codex",
		Groom:       true,
		OnProgress: func(p Progress) {
			if p.Percent < last {
				t.Fatalf("progress went backwards: %d after %d", p.Percent, last)
			}
			last = p.Percent
		},
	})
	if result.Status != OpComplete {
		t.Fatalf("unexpected result: %s (%s)", result.Status, result.Err)
	}
	if last != 100 {
		t.Fatalf("expected final progress 100, got %d", last)
	}
}
