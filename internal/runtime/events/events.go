// Package events is a small synchronous event manager modelled on the MVC
// lifecycle: listeners subscribe to named events with a priority and receive
// a mutable MvcEvent when the event is triggered.
package events

import (
	"sort"
	"sync"
)

// Lifecycle event names.
const (
	EventDispatchError = "dispatch.error"
	EventRenderError   = "render.error"
	EventFinish        = "finish"
)

// Error codes carried by MvcEvent.Error.
const (
	ErrorException          = "error-exception"
	ErrorControllerNotFound = "error-controller-not-found"
	ErrorControllerInvalid  = "error-controller-invalid"
	ErrorRouterNoMatch      = "error-router-no-match"
)

// ParamException is the event parameter holding the exception payload.
const ParamException = "exception"

// Listener reacts to a triggered event.
type Listener func(e *MvcEvent)

// ListenerHandle identifies one subscription returned by Attach.
type ListenerHandle struct {
	owner *EventManager
	event string
	id    uint64
}

// Event returns the name of the event the handle is subscribed to.
func (h ListenerHandle) Event() string { return h.event }

// IsZero reports whether the handle was never issued.
func (h ListenerHandle) IsZero() bool { return h.id == 0 }

type subscription struct {
	handle   ListenerHandle
	priority int
	listener Listener
}

// EventManager dispatches events to listeners in priority order. Higher
// priorities run first; equal priorities run in attach order.
type EventManager struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[string][]subscription
}

// NewEventManager returns an empty manager.
func NewEventManager() *EventManager {
	return &EventManager{listeners: make(map[string][]subscription)}
}

// Attach subscribes listener to the named event and returns a handle that
// Detach accepts. A nil listener is ignored and yields a zero handle.
func (m *EventManager) Attach(name string, priority int, listener Listener) ListenerHandle {
	if listener == nil {
		return ListenerHandle{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listeners == nil {
		m.listeners = make(map[string][]subscription)
	}
	m.nextID++
	handle := ListenerHandle{owner: m, event: name, id: m.nextID}

	subs := append(m.listeners[name], subscription{handle: handle, priority: priority, listener: listener})
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].priority > subs[j].priority
	})
	m.listeners[name] = subs
	return handle
}

// Detach removes the subscription identified by handle. It returns false if
// the handle is unknown, already detached, or issued by another manager.
func (m *EventManager) Detach(handle ListenerHandle) bool {
	if handle.IsZero() || handle.owner != m {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.listeners[handle.event]
	for i, sub := range subs {
		if sub.handle != handle {
			continue
		}
		subs = append(subs[:i:i], subs[i+1:]...)
		if len(subs) == 0 {
			delete(m.listeners, handle.event)
		} else {
			m.listeners[handle.event] = subs
		}
		return true
	}
	return false
}

// Trigger runs every listener of the named event against e. Listeners run
// on a snapshot taken before dispatch, so they may attach or detach freely.
func (m *EventManager) Trigger(name string, e *MvcEvent) {
	if e == nil {
		e = NewMvcEvent()
	}
	e.name = name
	e.propagationStopped = false

	m.mu.RLock()
	snapshot := append([]subscription(nil), m.listeners[name]...)
	m.mu.RUnlock()

	for _, sub := range snapshot {
		sub.listener(e)
		if e.propagationStopped {
			return
		}
	}
}

// ListenerCount returns the number of subscriptions on the named event.
func (m *EventManager) ListenerCount(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.listeners[name])
}
