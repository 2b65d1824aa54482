package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skillvee/Skillvee-ai-studio/internal/prompts"
	"github.com/skillvee/Skillvee-ai-studio/internal/roster"
)

const (
	// FallbackReply is substituted when response generation fails; chat must
	// never dead-end on a failed call.
	FallbackReply = "Sorry, I'm having trouble connecting to the company server right now."

	// DuplicatePRNotice is the fixed reply when the manager receives a second
	// PR-link-bearing message. No generation call is made.
	DuplicatePRNotice = "Already have your PR link! Ready to hop on a call whenever you are."

	prAckFallback      = "Got it! Calling you now to walk through it together."
	prAckErrorFallback = "Thanks! Calling you now to go over the PR."
)

// Orchestrator turns a candidate's outgoing text into exactly one coworker
// reply, classifying PR submissions along the way.
type Orchestrator struct {
	store         *Store
	team          roster.Roster
	llm           TextGenerator
	candidateName string
	onPRDetected  func(url string)

	now   func() time.Time
	newID func() string
}

// NewOrchestrator wires the text conversation flow. llm may be nil when no
// capability is configured; every reply then uses the canned fallback.
// onPRDetected fires once per session, on the first PR link the manager
// receives.
func NewOrchestrator(store *Store, team roster.Roster, llm TextGenerator, candidateName string, onPRDetected func(url string)) *Orchestrator {
	return &Orchestrator{
		store:         store,
		team:          team,
		llm:           llm,
		candidateName: candidateName,
		onPRDetected:  onPRDetected,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// SendUserMessage appends the candidate's message, then produces the
// coworker's reply. prURL is the session's currently recorded PR link, empty
// when none has been submitted yet. Empty text and unknown coworkers are
// silent no-ops.
func (o *Orchestrator) SendUserMessage(ctx context.Context, coworkerID, text, prURL string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	cw, ok := o.team.Coworker(coworkerID)
	if !ok {
		return
	}

	history := o.store.History(coworkerID)

	// Optimistic local echo: the candidate's message lands before any
	// generation call is made.
	o.store.AppendMessages(coworkerID, Message{
		ID:         o.newID(),
		Author:     AuthorCandidate,
		Text:       text,
		Timestamp:  o.now(),
		SenderName: "You",
	})

	o.store.SetTyping(coworkerID, true)
	defer o.store.SetTyping(coworkerID, false)

	var reply string
	if cw.IsManager() {
		if url, found := ExtractPRLink(text); found {
			if prURL == "" {
				// First PR submission: record it upward, then acknowledge.
				if o.onPRDetected != nil {
					o.onPRDetected(url)
				}
				reply = o.generatePRAck(ctx, url)
			} else {
				reply = DuplicatePRNotice
			}
			o.appendReply(coworkerID, cw, reply)
			return
		}
	}

	reply = o.generateReply(ctx, cw, history, text, prURL)
	o.appendReply(coworkerID, cw, reply)
}

func (o *Orchestrator) appendReply(coworkerID string, cw roster.Coworker, text string) {
	o.store.AppendMessages(coworkerID, Message{
		ID:         o.newID(),
		Author:     AuthorCoworker,
		Text:       text,
		Timestamp:  o.now(),
		SenderName: cw.Name,
	})
}

// generateReply performs ordinary conversation generation. The manager flips
// to the PR-defense persona once a PR link is on record; everyone else gets
// the base persona plus the cross-coworker digest.
func (o *Orchestrator) generateReply(ctx context.Context, cw roster.Coworker, history []Message, latest, prURL string) string {
	var system string
	if cw.IsManager() && prURL != "" {
		system = prompts.BuildDefensePrompt(prompts.DefenseContext{
			ManagerName:     cw.Name,
			ManagerRole:     cw.Role,
			CompanyName:     o.team.Scenario.CompanyName,
			CandidateName:   o.candidateName,
			TaskDescription: o.team.Scenario.TaskDescription,
			TechStack:       o.team.Scenario.TechStack,
			RepoURL:         o.team.Scenario.RepoURL,
			PRURL:           prURL,
		})
	} else {
		cross := BuildCrossCoworkerContext(cw.ID, o.store.AllHistories(), o.team.Coworkers)
		system = prompts.BuildCoworkerBasePrompt(cw, prompts.Context{
			CompanyName:     o.team.Scenario.CompanyName,
			CandidateName:   o.candidateName,
			TaskDescription: o.team.Scenario.TaskDescription,
			TechStack:       o.team.Scenario.TechStack,
		}, cross)
	}

	if o.llm == nil {
		return FallbackReply
	}

	turns := make([]Turn, 0, len(history)+1)
	for _, m := range history {
		turns = append(turns, Turn{Author: m.Author, Text: m.Text})
	}
	turns = append(turns, Turn{Author: AuthorCandidate, Text: latest})

	reply, err := o.llm.GenerateText(ctx, system, turns)
	if err != nil {
		log.Printf("chat: generation failed for %s: %v", cw.ID, err)
		return FallbackReply
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "..."
	}
	return reply
}

func (o *Orchestrator) generatePRAck(ctx context.Context, prURL string) string {
	if o.llm == nil {
		return prAckFallback
	}
	ack, err := o.llm.GenerateText(ctx, "", []Turn{{Author: AuthorCandidate, Text: prompts.PRAcknowledgmentPrompt(prURL)}})
	if err != nil {
		log.Printf("chat: PR acknowledgment generation failed: %v", err)
		return prAckErrorFallback
	}
	ack = strings.TrimSpace(ack)
	if ack == "" {
		return prAckFallback
	}
	return ack
}
