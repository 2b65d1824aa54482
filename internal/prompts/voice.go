package prompts

import (
	"fmt"
	"strings"

	"github.com/skillvee/Skillvee-ai-studio/internal/roster"
)

// ChatLine is one transcript line summarized into a voice prompt. Kept as a
// local type so this package stays independent of the chat store.
type ChatLine struct {
	FromCandidate bool
	Text          string
}

// SummarizeChatForVoice renders the last few chat exchanges so a voice call
// can pick up where the text conversation left off.
func SummarizeChatForVoice(lines []ChatLine, maxLines int) string {
	if len(lines) == 0 {
		return ""
	}
	if maxLines <= 0 {
		maxLines = 6
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		who := "You"
		if l.FromCandidate {
			who = "Candidate"
		}
		text := l.Text
		ellipsis := ""
		if len(text) > 100 {
			text, ellipsis = text[:100], "..."
		}
		fmt.Fprintf(&b, "%s: \"%s%s\"", who, text, ellipsis)
	}
	return b.String()
}

// BuildCoworkerVoicePrompt renders the persona for an ordinary (non-defense)
// voice call. chatHistory may be empty, in which case the continuity block is
// omitted.
func BuildCoworkerVoicePrompt(cw roster.Coworker, sc roster.Scenario, candidateName, chatHistory string) string {
	knowledge := "General knowledge about your role."
	if len(cw.Knowledge) > 0 {
		var b strings.Builder
		for i, k := range cw.Knowledge {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "- %s: %s", k.Topic, k.Response)
		}
		knowledge = b.String()
	}

	prompt := fmt.Sprintf(`You are %s, a %s at %s. You're on a quick voice call with %s, a new team member working on their first task.

## Your Personality
%s

## Voice Call Guidelines

**This is a casual work call, not an interview.**

- Sound natural and conversational
- Use filler words occasionally ("um", "so", "like", "you know")
- It's okay to pause and think
- Keep responses SHORT - this is voice, not text
- React naturally ("oh!", "right", "gotcha", "hmm")
- If they ask something you don't know, say "not sure, maybe check with [teammate]"

## What You Know
%s

## Context
- Company: %s
- Their task: %s...
- Tech stack: %s

## Conversation Style

DO:
- Answer questions directly and briefly
- Use casual language
- Reference the codebase when relevant
- Suggest other teammates if you don't know something

DON'T:
- Give long tutorials
- Be overly formal
- Repeat information from the text chat
- Act like an AI assistant`,
		cw.Name, cw.Role, sc.CompanyName, candidateName,
		cw.PersonaStyle,
		knowledge,
		sc.CompanyName, truncate(sc.TaskDescription, 200), strings.Join(sc.TechStack, ", "))

	if chatHistory != "" {
		prompt += fmt.Sprintf(`

## Recent Chat Context
You were just chatting with them over Slack. Here's what you discussed:
%s

Continue naturally from the text conversation. You might say "so about what we were chatting about..." or "yeah so like I was saying...".`, chatHistory)
	}

	return prompt
}
