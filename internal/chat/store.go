package chat

import "sync"

// EventKind tags store notifications pushed to subscribers.
type EventKind string

const (
	EventMessages EventKind = "messages"
	EventTyping   EventKind = "typing"
)

// Event describes one store mutation. Carries no business logic; the UI
// shell uses it to re-render.
type Event struct {
	Kind       EventKind `json:"kind"`
	CoworkerID string    `json:"coworkerId"`
	Messages   []Message `json:"messages,omitempty"`
	Typing     bool      `json:"typing"`
}

// Store holds, per coworker, an append-only message log and a typing flag.
// It is mutated from multiple independent flows (text orchestrator, greeting
// sequencer, voice transcript logging); all mutations are appends or
// single-field overwrites.
type Store struct {
	mu       sync.RWMutex
	messages map[string][]Message
	typing   map[string]bool
	subs     []func(Event)
}

func NewStore() *Store {
	return &Store{
		messages: make(map[string][]Message),
		typing:   make(map[string]bool),
	}
}

// Subscribe registers a notification callback. Callbacks run outside the
// store lock and must not block.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// AppendMessages appends to the end of the coworker's sequence, preserving
// call order. Existing messages are never reordered, edited or deleted.
func (s *Store) AppendMessages(coworkerID string, msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	s.mu.Lock()
	s.messages[coworkerID] = append(s.messages[coworkerID], msgs...)
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	ev := Event{Kind: EventMessages, CoworkerID: coworkerID, Messages: msgs}
	for _, fn := range subs {
		fn(ev)
	}
}

// SetTyping overwrites the typing flag. No debouncing here; callers own the
// timing.
func (s *Store) SetTyping(coworkerID string, on bool) {
	s.mu.Lock()
	s.typing[coworkerID] = on
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	ev := Event{Kind: EventTyping, CoworkerID: coworkerID, Typing: on}
	for _, fn := range subs {
		fn(ev)
	}
}

// History returns a copy of the coworker's full ordered sequence.
func (s *Store) History(coworkerID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[coworkerID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Typing reports the coworker's current typing flag.
func (s *Store) Typing(coworkerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typing[coworkerID]
}

// AllHistories returns a copy of every coworker's message log. Used for
// cross-coworker context and the evaluation transcript merge.
func (s *Store) AllHistories() map[string][]Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]Message, len(s.messages))
	for id, msgs := range s.messages {
		cp := make([]Message, len(msgs))
		copy(cp, msgs)
		out[id] = cp
	}
	return out
}
