package events

import "sync"

// ListenerAggregate attaches a group of listeners at once and can remove
// them again.
type ListenerAggregate interface {
	Attach(events *EventManager, priority int)
	Detach(events *EventManager)
}

// ListenerSet owns the handles created by one aggregate. DetachAll revokes
// exactly those subscriptions and nothing else on the manager.
type ListenerSet struct {
	mu      sync.Mutex
	handles []ListenerHandle
}

// Add records a handle; zero handles are ignored.
func (s *ListenerSet) Add(handle ListenerHandle) {
	if handle.IsZero() {
		return
	}
	s.mu.Lock()
	s.handles = append(s.handles, handle)
	s.mu.Unlock()
}

// DetachAll detaches every owned handle issued by events and forgets them.
// Handles issued by other managers are kept. It returns how many
// subscriptions were actually removed.
func (s *ListenerSet) DetachAll(events *EventManager) int {
	if events == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	kept := s.handles[:0]
	for _, handle := range s.handles {
		if handle.owner != events {
			kept = append(kept, handle)
			continue
		}
		if events.Detach(handle) {
			removed++
		}
	}
	s.handles = kept
	return removed
}

// Len returns the number of handles still owned.
func (s *ListenerSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}
