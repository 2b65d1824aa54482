package chat

import (
	"context"
	"time"
)

// Author distinguishes who wrote a message. Wire values match the generation
// API's role vocabulary so history can be replayed into prompts directly.
type Author string

const (
	AuthorCandidate Author = "user"
	AuthorCoworker  Author = "model"
)

// Message is one chat turn. Immutable once appended to the store.
type Message struct {
	ID         string    `json:"id"`
	Author     Author    `json:"role"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	SenderName string    `json:"senderName"`
}

// Turn is a role-tagged text turn handed to the generation capability.
type Turn struct {
	Author Author
	Text   string
}

// TextGenerator is the minimal interface to the text-generation capability.
// Implementations may fail (network/quota/format); callers substitute
// fallbacks rather than surfacing errors to the chat surface.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemInstruction string, turns []Turn) (string, error)
}
