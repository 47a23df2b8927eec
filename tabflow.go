// Package tabflow assembles the tab-lifecycle store and the context
// workflows from their collaborators. Callers that need custom extraction
// or grooming backends construct the internal packages directly; this is
// the default wiring.
package tabflow

import (
	"tabflow/internal/agents"
	"tabflow/internal/config"
	"tabflow/internal/contextops"
	"tabflow/internal/extract"
	"tabflow/internal/logging"
	"tabflow/internal/tabs"
)

// Workflows bundles the three context operations behind one wiring point.
// Transfer and Merge share a single-flight lock and a grooming backend;
// Summarize runs its own compactor outside that lock.
type Workflows struct {
	Tabs       *tabs.Store
	Transfer   *contextops.Transferrer
	Merge      *contextops.Merger
	Summarize  *contextops.Summarizer
	MergeState *contextops.Tracker
}

// NewWorkflows wires the default collaborators: the in-process extractor,
// a PATH-probing agent directory, and thresholds taken from settings.
// The groomer and compactor are the caller's grooming-service clients; a
// nil compactor falls back to the groomer.
func NewWorkflows(settings config.Settings, groomer, compactor contextops.Groomer, log logging.Logger) *Workflows {
	if log == nil {
		log = logging.Nop()
	}
	if compactor == nil {
		compactor = groomer
	}
	extractor := extract.Extractor{}
	directory := agents.NewDirectory()
	flight := &contextops.SingleFlight{}
	tracker := contextops.NewTracker()

	store := tabs.NewStore()
	store.HistoryCapacity = settings.Tabs.ClosedHistoryCapacity

	transfer := contextops.NewTransferrer(extractor, groomer, directory, flight, log.With(logging.F("workflow", "transfer")))
	transfer.TokenWarningCeiling = settings.Transfer.TokenWarningCeiling

	merge := contextops.NewMerger(extractor, groomer, flight, tracker, log.With(logging.F("workflow", "merge")))

	policy := contextops.TokenThresholdPolicy(settings.Summarize.TokenThreshold)
	summarize := contextops.NewSummarizer(extractor, compactor, contextops.NewTracker(), policy, log.With(logging.F("workflow", "summarize")))

	return &Workflows{
		Tabs:       store,
		Transfer:   transfer,
		Merge:      merge,
		Summarize:  summarize,
		MergeState: tracker,
	}
}
