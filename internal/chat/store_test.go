package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func msg(author Author, text string) Message {
	return Message{ID: text, Author: author, Text: text, Timestamp: time.Now(), SenderName: "x"}
}

func TestStore_AppendPreservesOrder(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		s.AppendMessages("cw_senior", msg(AuthorCandidate, fmt.Sprintf("m%d", i)))
	}
	h := s.History("cw_senior")
	if len(h) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(h))
	}
	for i, m := range h {
		if m.Text != fmt.Sprintf("m%d", i) {
			t.Fatalf("order broken at %d: %q", i, m.Text)
		}
	}
}

func TestStore_UnknownKeysDefaultEmpty(t *testing.T) {
	s := NewStore()
	if h := s.History("nobody"); len(h) != 0 {
		t.Fatalf("expected empty history, got %d", len(h))
	}
	if s.Typing("nobody") {
		t.Fatalf("expected typing false for unknown key")
	}
}

func TestStore_TypingOverwrite(t *testing.T) {
	s := NewStore()
	s.SetTyping("cw_manager", true)
	if !s.Typing("cw_manager") {
		t.Fatalf("expected typing true")
	}
	s.SetTyping("cw_manager", false)
	if s.Typing("cw_manager") {
		t.Fatalf("expected typing false")
	}
}

func TestStore_NotifiesSubscribers(t *testing.T) {
	s := NewStore()
	var mu sync.Mutex
	var events []Event
	s.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	s.AppendMessages("cw_peer", msg(AuthorCandidate, "hi"))
	s.SetTyping("cw_peer", true)

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != EventMessages || len(events[0].Messages) != 1 {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Kind != EventTyping || !events[1].Typing {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
}

func TestStore_HistoryReturnsCopy(t *testing.T) {
	s := NewStore()
	s.AppendMessages("cw_peer", msg(AuthorCandidate, "hi"))
	h := s.History("cw_peer")
	h[0].Text = "mutated"
	if s.History("cw_peer")[0].Text != "hi" {
		t.Fatalf("store history was mutated through the returned slice")
	}
}

func TestStore_ConcurrentAppendsPerCoworkerStayOrdered(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.AppendMessages(id, msg(AuthorCoworker, fmt.Sprintf("%s-%d", id, i)))
			}
		}(id)
	}
	wg.Wait()
	for _, id := range []string{"a", "b", "c"} {
		h := s.History(id)
		if len(h) != 50 {
			t.Fatalf("%s: expected 50, got %d", id, len(h))
		}
		for i, m := range h {
			if m.Text != fmt.Sprintf("%s-%d", id, i) {
				t.Fatalf("%s: order broken at %d: %q", id, i, m.Text)
			}
		}
	}
}
