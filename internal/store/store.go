// Package store holds the ordered message log of a chat session.
package store

import (
	"errors"
	"sync"

	"github.com/diogo/agui/internal/models"
)

var (
	ErrEmptyStore         = errors.New("store is empty")
	ErrPendingOutstanding = errors.New("last message is pending and can only be replaced")
	ErrMultiplePending    = errors.New("a pending message already exists")
	ErrUnknownSender      = errors.New("message sender is not user or assistant")
)

// Mutation identifies which operation changed the store
type Mutation int

const (
	MutationAppend Mutation = iota
	MutationReplaceLast
)

func (m Mutation) String() string {
	switch m {
	case MutationAppend:
		return "append"
	case MutationReplaceLast:
		return "replace_last"
	default:
		return "unknown"
	}
}

// Observer is notified synchronously after every successful mutation
// with a snapshot of the store contents.
type Observer func(kind Mutation, messages []models.Message)

// Store is an append-only message sequence. The only in-place mutation
// is ReplaceLast, used to resolve a pending placeholder.
type Store struct {
	mu        sync.RWMutex
	messages  []models.Message
	observers map[int]Observer
	nextID    int
}

// New creates a store seeded with the given messages
func New(initial ...models.Message) *Store {
	s := &Store{
		messages:  make([]models.Message, 0, len(initial)+8),
		observers: make(map[int]Observer),
	}
	s.messages = append(s.messages, initial...)
	return s
}

// Append adds msg to the end of the log
func (s *Store) Append(msg models.Message) error {
	if !msg.Sender.Valid() {
		return ErrUnknownSender
	}
	s.mu.Lock()
	if n := len(s.messages); n > 0 && s.messages[n-1].Pending {
		s.mu.Unlock()
		return ErrPendingOutstanding
	}
	if msg.Pending && s.pendingLocked() >= 0 {
		s.mu.Unlock()
		return ErrMultiplePending
	}
	s.messages = append(s.messages, msg)
	snapshot, observers := s.snapshotLocked()
	s.mu.Unlock()

	notify(observers, MutationAppend, snapshot)
	return nil
}

// ReplaceLast overwrites the most recently appended message in place
func (s *Store) ReplaceLast(msg models.Message) error {
	if !msg.Sender.Valid() {
		return ErrUnknownSender
	}
	s.mu.Lock()
	n := len(s.messages)
	if n == 0 {
		s.mu.Unlock()
		return ErrEmptyStore
	}
	if msg.Pending {
		if idx := s.pendingLocked(); idx >= 0 && idx != n-1 {
			s.mu.Unlock()
			return ErrMultiplePending
		}
	}
	s.messages[n-1] = msg
	snapshot, observers := s.snapshotLocked()
	s.mu.Unlock()

	notify(observers, MutationReplaceLast, snapshot)
	return nil
}

// Messages returns a copy of the log in insertion order
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message
func (s *Store) Last() (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return models.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// Pending returns the pending placeholder, if any
func (s *Store) Pending() (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.pendingLocked(); idx >= 0 {
		return s.messages[idx], true
	}
	return models.Message{}, false
}

// LastFrom returns the most recent resolved message authored by sender
func (s *Store) LastFrom(sender models.Sender) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if m := s.messages[i]; m.Sender == sender && !m.Pending {
			return m, true
		}
	}
	return models.Message{}, false
}

// Subscribe registers fn and returns a function that removes it
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) pendingLocked() int {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Pending {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() ([]models.Message, []Observer) {
	snapshot := make([]models.Message, len(s.messages))
	copy(snapshot, s.messages)

	// Observers run in registration order
	observers := make([]Observer, 0, len(s.observers))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.observers[id]; ok {
			observers = append(observers, fn)
		}
	}
	return snapshot, observers
}

func notify(observers []Observer, kind Mutation, snapshot []models.Message) {
	for _, fn := range observers {
		fn(kind, snapshot)
	}
}
