package alfresco

import "sync"

// EventName identifies a session event.
type EventName string

const (
	// EventError is emitted for every resource call failure, after 401
	// handling, and for every failed joint login or logout.
	EventError EventName = "error"

	// EventUnauthorized is emitted before EventError when a joint login or
	// logout fails with an authentication rejection.
	EventUnauthorized EventName = "unauthorized"

	// EventLogin is emitted after a successful login of any kind.
	EventLogin EventName = "login"

	// EventLogout is emitted after a successful logout.
	EventLogout EventName = "logout"

	// EventTokenRefreshed is emitted after the OAuth2 access token was refreshed.
	EventTokenRefreshed EventName = "token_refreshed"
)

// Event is delivered to subscribers.
type Event struct {
	Name EventName
	// Source names the component that produced the event, such as "ecm",
	// "search", "bpm", "login" or "logout".
	Source     string
	StatusCode int
	Err        error
}

// EventHandler receives events.
type EventHandler func(Event)

type subscription struct {
	id      uint64
	handler EventHandler
	once    bool
}

// Emitter delivers events to subscribers synchronously, in subscription order.
// The zero value is ready to use.
type Emitter struct {
	mutex    sync.Mutex
	nextID   uint64
	handlers map[EventName][]subscription
}

// On subscribes handler to name. The returned function unsubscribes it.
func (e *Emitter) On(name EventName, handler EventHandler) func() {
	return e.subscribe(name, handler, false)
}

// Once subscribes handler to the next occurrence of name only.
func (e *Emitter) Once(name EventName, handler EventHandler) func() {
	return e.subscribe(name, handler, true)
}

// Emit delivers event to the subscribers of event.Name.
// Handlers run outside the emitter lock and may subscribe or unsubscribe.
func (e *Emitter) Emit(event Event) {
	e.mutex.Lock()
	subs := e.handlers[event.Name]
	current := make([]subscription, len(subs))
	copy(current, subs)

	kept := subs[:0]
	for _, sub := range subs {
		if !sub.once {
			kept = append(kept, sub)
		}
	}

	if e.handlers != nil {
		e.handlers[event.Name] = kept
	}
	e.mutex.Unlock()

	for _, sub := range current {
		sub.handler(event)
	}
}

// ListenerCount returns the number of subscribers of name.
func (e *Emitter) ListenerCount(name EventName) int {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return len(e.handlers[name])
}

func (e *Emitter) subscribe(name EventName, handler EventHandler, once bool) func() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.handlers == nil {
		e.handlers = make(map[EventName][]subscription)
	}

	e.nextID++
	id := e.nextID
	e.handlers[name] = append(e.handlers[name], subscription{id: id, handler: handler, once: once})

	return func() {
		e.mutex.Lock()
		defer e.mutex.Unlock()

		subs := e.handlers[name]
		for i, sub := range subs {
			if sub.id == id {
				e.handlers[name] = append(subs[:i:i], subs[i+1:]...)

				return
			}
		}
	}
}
