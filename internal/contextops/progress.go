package contextops

// Progress is one staged progress report from a running workflow.
type Progress struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message,omitempty"`
}

type ProgressFunc func(Progress)

const (
	StageValidating = "validating"
	StageExtracting = "extracting"
	StageGrooming   = "grooming"
	StageCreating   = "creating"
)

// monotonic wraps a progress callback so reported percentages never
// decrease within one invocation, regardless of what the grooming service
// reports.
func monotonic(fn ProgressFunc) ProgressFunc {
	if fn == nil {
		return func(Progress) {}
	}
	best := 0
	return func(p Progress) {
		if p.Percent < best {
			p.Percent = best
		} else {
			best = p.Percent
		}
		fn(p)
	}
}

// fanout reports each update to every non-nil callback in order.
func fanout(fns ...ProgressFunc) ProgressFunc {
	return func(p Progress) {
		for _, fn := range fns {
			if fn != nil {
				fn(p)
			}
		}
	}
}
