package chat

import (
	"fmt"
	"strings"

	"github.com/skillvee/Skillvee-ai-studio/internal/roster"
)

// Common technical topics matched against candidate text, in a fixed order so
// the digest is deterministic.
var techTopics = []struct {
	keyword string
	topic   string
}{
	{"auth", "authentication"},
	{"jwt", "authentication"},
	{"token", "authentication"},
	{"redis", "Redis/caching"},
	{"cache", "caching"},
	{"database", "database"},
	{"db", "database"},
	{"api", "API"},
	{"endpoint", "API endpoints"},
	{"test", "testing"},
	{"deploy", "deployment"},
	{"docker", "Docker/containers"},
	{"git", "git workflow"},
	{"pr", "pull requests"},
	{"review", "code review"},
	{"bug", "debugging"},
	{"error", "troubleshooting"},
}

// BuildCrossCoworkerContext renders a short digest of what the candidate has
// discussed with every other coworker, so the active coworker can reference
// those conversations naturally. Coworkers with empty history are omitted;
// when nobody else has history the result is the empty string and the prompt
// carries no team-context block at all.
func BuildCrossCoworkerContext(currentID string, histories map[string][]Message, team []roster.Coworker) string {
	type summary struct {
		name, role, topics string
		count              int
	}
	var summaries []summary

	// Iterate the roster, not the map, for stable ordering.
	for _, cw := range team {
		if cw.ID == currentID {
			continue
		}
		msgs := histories[cw.ID]
		if len(msgs) == 0 {
			continue
		}
		var userText strings.Builder
		for _, m := range msgs {
			if m.Author == AuthorCandidate {
				userText.WriteString(m.Text)
				userText.WriteString(" ")
			}
		}
		topics := extractTopics(userText.String(), cw)
		if topics == "" {
			topics = "general questions"
		}
		summaries = append(summaries, summary{name: cw.Name, role: cw.Role, topics: topics, count: len(msgs)})
	}

	if len(summaries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n## Team Context\n\n")
	b.WriteString("The candidate has been chatting with other team members:\n\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "- **%s** (%s): Discussed %s (%d messages)\n", s.name, s.role, s.topics, s.count)
	}
	b.WriteString("\nYou can reference these conversations naturally, like \"Oh you talked to Sarah? She knows that stuff well\" or \"Mike probably told you about the Redis wrapper already\".\n")
	return b.String()
}

// extractTopics intersects the candidate's text against the coworker's
// knowledge triggers plus the fixed tech vocabulary, capped at 3 topics.
func extractTopics(text string, cw roster.Coworker) string {
	lower := strings.ToLower(text)
	var topics []string

	for _, k := range cw.Knowledge {
		for _, kw := range k.TriggerKeywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				topics = append(topics, k.Topic)
				break
			}
		}
	}

	for _, t := range techTopics {
		if strings.Contains(lower, t.keyword) && !containsTopic(topics, t.topic) {
			topics = append(topics, t.topic)
		}
	}

	if len(topics) > 3 {
		topics = topics[:3]
	}
	return strings.Join(topics, ", ")
}

func containsTopic(topics []string, t string) bool {
	for _, x := range topics {
		if x == t {
			return true
		}
	}
	return false
}
