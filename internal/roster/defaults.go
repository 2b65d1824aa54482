package roster

// Default returns the built-in demo scenario and team. Sessions created
// without an explicit roster run against this data.
func Default() Roster {
	return Roster{
		Scenario: Scenario{
			ID:                 "sc_123",
			CompanyName:        "FinTech Sol",
			CompanyDescription: "A fast-growing fintech startup modernizing payment processing.",
			TaskDescription: "Implement a rate-limiting middleware for our API to prevent abuse. " +
				"The current implementation allows unlimited requests. We need a sliding window " +
				"implementation using Redis (mocked). Also, add unit tests.",
			TechStack: []string{"TypeScript", "Node.js", "Express", "Redis"},
			RepoURL:   "github.com/fintech-sol/payment-api",
		},
		Coworkers: []Coworker{
			{
				ID:           "cw_manager",
				Name:         "Alex Rivera",
				Role:         "Engineering Manager",
				PersonaStyle: "Direct, supportive, focused on scalability and code quality. Busy but makes time.",
				AvatarURL:    "https://picsum.photos/200/200?random=1",
				VoiceName:    "Orus",
				IsOnline:     true,
			},
			{
				ID:           "cw_senior",
				Name:         "Sarah Chen",
				Role:         "Senior Backend Engineer",
				PersonaStyle: "Extremely knowledgeable, helpful but expects you to read docs first. Uses lot of dev slang.",
				AvatarURL:    "https://picsum.photos/200/200?random=2",
				VoiceName:    "Aoede",
				IsOnline:     true,
				Knowledge: []Knowledge{
					{
						Topic:           "Redis",
						TriggerKeywords: []string{"redis", "cache", "store"},
						Response:        "We use a standard Redis client wrapper in `src/lib/redis.ts`. Don't use the raw client directly.",
						IsCritical:      true,
					},
					{
						Topic:           "Auth",
						TriggerKeywords: []string{"auth", "jwt", "token"},
						Response:        "Auth is handled by the gateway, but for local dev you can use the 'dev-token' header.",
						IsCritical:      false,
					},
				},
			},
			{
				ID:           "cw_peer",
				Name:         "Mike Ross",
				Role:         "Frontend Developer",
				PersonaStyle: "Super chill, loves Tailwind, always down to chat but doesn't know much backend.",
				AvatarURL:    "https://picsum.photos/200/200?random=3",
				VoiceName:    "Puck",
				IsOnline:     false,
			},
		},
	}
}
