package assessment

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/skillvee/Skillvee-ai-studio/internal/chat"
	"github.com/skillvee/Skillvee-ai-studio/internal/prompts"
	"github.com/skillvee/Skillvee-ai-studio/internal/roster"
)

// Timing controls the greeting sequence pacing. Tests shrink these to keep
// runs fast; production uses DefaultTiming.
type Timing struct {
	// MinFirstDelay is the floor on the first typing phase, raced against
	// generation so the indicator is perceptible even on an instant reply.
	MinFirstDelay time.Duration
	// ReadPauseBase/Jitter bound the pause between messages while the
	// candidate "reads" the previous one.
	ReadPauseBase   time.Duration
	ReadPauseJitter time.Duration
	// Typing duration is PerChar * len(text), clamped to [TypingMin, TypingMax].
	TypingPerChar time.Duration
	TypingMin     time.Duration
	TypingMax     time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		MinFirstDelay:   1500 * time.Millisecond,
		ReadPauseBase:   600 * time.Millisecond,
		ReadPauseJitter: 400 * time.Millisecond,
		TypingPerChar:   30 * time.Millisecond,
		TypingMin:       1200 * time.Millisecond,
		TypingMax:       3500 * time.Millisecond,
	}
}

func (t Timing) typingFor(text string) time.Duration {
	d := time.Duration(len(text)) * t.TypingPerChar
	if d < t.TypingMin {
		d = t.TypingMin
	}
	if d > t.TypingMax {
		d = t.TypingMax
	}
	return d
}

func (t Timing) readPause() time.Duration {
	if t.ReadPauseJitter <= 0 {
		return t.ReadPauseBase
	}
	return t.ReadPauseBase + time.Duration(rand.Int63n(int64(t.ReadPauseJitter)))
}

// sleep waits for d or until ctx is canceled, reporting whether the wait ran
// to completion. Every step of the sequence checks this before touching the
// store, so teardown never lets a stale timer append a message.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// fallbackGreetings is the deterministic non-AI greeting sequence.
func fallbackGreetings(candidateName string, sc roster.Scenario) []string {
	task := sc.TaskDescription
	if len(task) > 100 {
		task = task[:100]
	}
	return []string{
		fmt.Sprintf("Hey %s! Welcome to the team 👋", candidateName),
		fmt.Sprintf("So your first task - we need %s... Check out the repo: %s", task, sc.RepoURL),
		"Ping me or anyone on the team if you get stuck. We're here to help!",
	}
}

// runGreeting simulates the manager typing several short messages in
// sequence. Typing goes on immediately; the first message waits for both the
// generation result and the minimum delay, whichever is longer.
func (m *Machine) runGreeting(ctx context.Context, manager roster.Coworker) {
	m.store.SetTyping(manager.ID, true)

	type genResult struct{ msgs []string }
	genCh := make(chan genResult, 1)
	go func() {
		genCh <- genResult{m.fetchGreetings(ctx, manager)}
	}()

	if !sleep(ctx, m.timing.MinFirstDelay) {
		m.store.SetTyping(manager.ID, false)
		return
	}
	var greetings []string
	select {
	case <-ctx.Done():
		m.store.SetTyping(manager.ID, false)
		return
	case r := <-genCh:
		greetings = r.msgs
	}

	// Zero messages ends the sequence with nothing sent; not an error.
	if len(greetings) == 0 {
		m.store.SetTyping(manager.ID, false)
		return
	}

	m.emit(ctx, manager, greetings[0])

	for _, text := range greetings[1:] {
		if !sleep(ctx, m.timing.readPause()) {
			return
		}
		m.store.SetTyping(manager.ID, true)
		if !sleep(ctx, m.timing.typingFor(text)) {
			m.store.SetTyping(manager.ID, false)
			return
		}
		m.emit(ctx, manager, text)
	}
}

// emit clears typing right before appending one manager message.
func (m *Machine) emit(ctx context.Context, manager roster.Coworker, text string) {
	if ctx.Err() != nil {
		return
	}
	m.store.SetTyping(manager.ID, false)
	m.store.AppendMessages(manager.ID, chat.Message{
		ID:         uuid.NewString(),
		Author:     chat.AuthorCoworker,
		Text:       text,
		Timestamp:  m.now(),
		SenderName: manager.Name,
	})
}

func (m *Machine) fetchGreetings(ctx context.Context, manager roster.Coworker) []string {
	fallback := fallbackGreetings(m.state.CandidateName, m.team.Scenario)
	if m.greetGen == nil {
		return fallback
	}
	msgs, err := m.greetGen.GenerateGreetings(ctx, prompts.GreetingPrompt(manager.Name, m.team.Scenario))
	if err != nil {
		log.Printf("[%s] greeting generation failed: %v", m.state.ID, err)
		return fallback
	}
	return msgs
}
