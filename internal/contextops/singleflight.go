package contextops

import "sync"

// SingleFlight serializes the workflows that share the grooming service
// singleton. A second caller is rejected immediately, never queued. The
// handle is injected into both the transfer and merge workflows so tests can
// instantiate independent instances.
type SingleFlight struct {
	mu   sync.Mutex
	held bool
	op   string
}

// TryAcquire takes the lock for the named operation. It returns false
// without blocking when another operation holds it.
func (f *SingleFlight) TryAcquire(op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held {
		return false
	}
	f.held = true
	f.op = op
	return true
}

func (f *SingleFlight) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = false
	f.op = ""
}

// Current returns the operation currently holding the lock, if any.
func (f *SingleFlight) Current() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.op, f.held
}
