// Package hooks lets callers observe chat exchanges without touching the
// session engine. Handlers run synchronously and their errors are logged,
// never returned to the caller of chat.
package hooks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/soyeahso/reviewbot/internal/logging"
)

// Exchange lifecycle events.
const (
	EventExchangeStart  = "exchange_start"
	EventExchangeDone   = "exchange_done"
	EventExchangeFailed = "exchange_failed"
)

// AllEvents lists all known hook event names.
var AllEvents = []string{
	EventExchangeStart,
	EventExchangeDone,
	EventExchangeFailed,
}

// Exchange describes one chat call. On EventExchangeStart only the request
// side is filled in.
type Exchange struct {
	Provider        string        `json:"provider"`
	Model           string        `json:"model"`
	Key             string        `json:"key,omitempty"`
	Prompt          string        `json:"prompt"`
	Reply           string        `json:"reply,omitempty"`
	ParentMessageID string        `json:"parentMessageId,omitempty"`
	ConversationID  string        `json:"conversationId,omitempty"`
	Duration        time.Duration `json:"duration,omitempty"`
	Err             error         `json:"-"`
}

// Payload carries event data to hook handlers.
type Payload struct {
	Event    string   `json:"event"`
	Exchange Exchange `json:"exchange"`
}

// Handler handles a hook event. A returned error is logged only.
type Handler func(ctx context.Context, p Payload) error

// Manager manages hook registrations and dispatches events.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	log      *logging.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("hooks"),
	}
}

// On registers a handler for the given event. The name identifies the
// handler in logs and for Off.
func (m *Manager) On(event, name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")
}

// Off removes all handlers with the given name from the event.
func (m *Manager) Off(event, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.handlers[event][:0:0]
	for _, h := range m.handlers[event] {
		if h.name != name {
			kept = append(kept, h)
		}
	}
	m.handlers[event] = kept
}

// Emit calls every handler for event in registration order. A panicking
// handler is recovered and logged like an error.
func (m *Manager) Emit(ctx context.Context, event string, ex Exchange) {
	if m == nil {
		return
	}

	m.mu.RLock()
	handlers := append([]namedHandler(nil), m.handlers[event]...)
	m.mu.RUnlock()

	payload := Payload{Event: event, Exchange: ex}
	for _, h := range handlers {
		m.call(ctx, h, payload)
	}
}

func (m *Manager) call(ctx context.Context, h namedHandler, p Payload) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().
				Interface("panic", r).
				Str("event", p.Event).
				Str("handler", h.name).
				Msg("hook handler panicked")
		}
	}()

	if err := h.handler(ctx, p); err != nil {
		m.log.Warn().
			Err(err).
			Str("event", p.Event).
			Str("handler", h.name).
			Msg("hook handler error")
	}
}

// Count returns the number of handlers registered for an event.
func (m *Manager) Count(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}

// Events returns the sorted events that have at least one handler.
func (m *Manager) Events() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]string, 0, len(m.handlers))
	for event, handlers := range m.handlers {
		if len(handlers) > 0 {
			events = append(events, event)
		}
	}
	sort.Strings(events)
	return events
}
