package prompts

import (
	"strings"

	"github.com/skillvee/Skillvee-ai-studio/internal/roster"
)

const greetingTemplate = `You are a friendly engineering manager sending the first messages to a new team member on Slack. They just joined and you're giving them their first task.

Generate 2-3 short, natural Slack messages (NOT one big message). Each message should be 1-2 sentences max.

Message 1: Quick friendly greeting
Message 2: Brief intro to the task
Message 3 (optional): Offer to help / mention the team

Context:
- Your name: {managerName}
- Company: {companyName}
- Task: {taskDescription}
- Tech stack: {techStack}
- Repo: {repoUrl}

Rules:
- Sound like a real person on Slack, not formal
- Use casual language ("hey", "btw", "lmk")
- Keep each message SHORT
- Don't over-explain the task - they'll figure it out
- End with something like "ping me or the team if you need anything"

Return ONLY a JSON array of message strings, nothing else:
["message 1", "message 2", "message 3"]`

// GreetingPrompt renders the instruction for the manager's opening message
// sequence. The capability is expected to return a JSON array of strings.
func GreetingPrompt(managerName string, sc roster.Scenario) string {
	r := strings.NewReplacer(
		"{managerName}", managerName,
		"{companyName}", sc.CompanyName,
		"{taskDescription}", sc.TaskDescription,
		"{techStack}", strings.Join(sc.TechStack, ", "),
		"{repoUrl}", sc.RepoURL,
	)
	return r.Replace(greetingTemplate)
}

const prAckTemplate = `You are an engineering manager. The candidate just submitted their PR link for review in Slack.

Generate a short, friendly response (1-2 sentences).
CRITICAL: You must explicitly say that you are calling them RIGHT NOW to discuss it.

Examples:
- "Nice! Received. Calling you now to go over it."
- "Fast work! Let me give you a quick call to walk through the changes."
- "Got it. I'll dial you in a sec to do a quick live review."

PR URL: {prUrl}

Respond with ONLY the message text.`

// PRAcknowledgmentPrompt renders the instruction for the manager's reaction
// to a first PR submission.
func PRAcknowledgmentPrompt(prURL string) string {
	return strings.ReplaceAll(prAckTemplate, "{prUrl}", prURL)
}
