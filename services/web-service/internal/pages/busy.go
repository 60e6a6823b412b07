package pages

import "sync"

// busyTracker remembers which session is already running which action, so a
// second submit while the first is in flight is refused.
type busyTracker struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func newBusyTracker() *busyTracker {
	return &busyTracker{inflight: map[string]struct{}{}}
}

// acquire marks sid/action busy. The returned func clears the mark; ok is false
// when it was already set.
func (b *busyTracker) acquire(sid, action string) (func(), bool) {
	key := sid + "/" + action
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.inflight[key]; ok {
		return nil, false
	}
	b.inflight[key] = struct{}{}
	return func() {
		b.mu.Lock()
		delete(b.inflight, key)
		b.mu.Unlock()
	}, true
}
