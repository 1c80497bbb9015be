// Package conversation keeps per-conversation message history in a
// bounded, least-recently-used store.
package conversation

import (
	"container/list"
	"errors"
	"sync"

	"github.com/soyeahso/reviewbot/internal/llm"
	"github.com/soyeahso/reviewbot/internal/logging"
)

// DefaultMaxEntries is used when NewStore is given a non-positive size.
const DefaultMaxEntries = 100

// ErrNotFound is returned when appending to a key that was never created
// or has since been evicted.
var ErrNotFound = errors.New("conversation: key not found")

// Store maps conversation keys to ordered message histories. It holds at
// most MaxEntries keys; inserting past that evicts the least recently
// touched key. Get, Create and Append all count as a touch.
//
// Store is safe for concurrent use. It does not serialize calls for the
// same key beyond individual method calls.
type Store struct {
	mu    sync.Mutex
	max   int
	order *list.List // front is most recently touched
	items map[string]*list.Element
	log   *logging.Logger
}

type entry struct {
	key      string
	messages []llm.Message
}

// NewStore creates a store bounded to maxEntries keys.
func NewStore(maxEntries int, log *logging.Logger) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		max:   maxEntries,
		order: list.New(),
		items: make(map[string]*list.Element),
		log:   log.Sub("conversation"),
	}
}

// MaxEntries returns the configured capacity.
func (s *Store) MaxEntries() int { return s.max }

// Get returns a copy of the history for key and marks it most recently used.
func (s *Store) Get(key string) ([]llm.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(el)
	return cloneMessages(el.Value.(*entry).messages), true
}

// Create seeds a new history for key with a single system message and
// returns a copy of it. If key already exists its history is kept as is,
// touched and returned, so the system message is never duplicated.
func (s *Store) Create(key, systemMessage string) []llm.Message {
	msgs, _ := s.GetOrCreate(key, systemMessage)
	return msgs
}

// GetOrCreate returns the history for key, creating it with systemMessage
// when absent. created reports whether a new history was made.
func (s *Store) GetOrCreate(key, systemMessage string) (msgs []llm.Message, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		s.order.MoveToFront(el)
		return cloneMessages(el.Value.(*entry).messages), false
	}

	e := &entry{
		key:      key,
		messages: []llm.Message{{Role: llm.RoleSystem, Content: systemMessage}},
	}
	s.items[key] = s.order.PushFront(e)
	s.evictLocked()
	return cloneMessages(e.messages), true
}

// Append adds messages to the end of an existing history. It returns
// ErrNotFound if key is absent; callers must Create first.
func (s *Store) Append(key string, msgs ...llm.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		return ErrNotFound
	}
	e := el.Value.(*entry)
	e.messages = append(e.messages, msgs...)
	s.order.MoveToFront(el)
	return nil
}

// Len returns the number of stored conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Keys returns all keys, most recently touched first. It does not touch.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.items))
	for el := s.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry).key)
	}
	return keys
}

// evictLocked drops least recently touched keys until the store is within
// capacity. Inserts happen one at a time, so this removes at most one.
func (s *Store) evictLocked() {
	for len(s.items) > s.max {
		oldest := s.order.Back()
		if oldest == nil {
			return
		}
		e := s.order.Remove(oldest).(*entry)
		delete(s.items, e.key)
		s.log.Debug().
			Str("key", e.key).
			Int("messages", len(e.messages)).
			Msg("evicted conversation")
	}
}

func cloneMessages(msgs []llm.Message) []llm.Message {
	return append([]llm.Message(nil), msgs...)
}
