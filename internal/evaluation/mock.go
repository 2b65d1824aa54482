package evaluation

import "time"

// MockDelay is the simulated processing time before the canned result is
// returned.
const MockDelay = 3500 * time.Millisecond

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

// MockResult returns the fully-populated canned scorecard used when no
// scoring capability is configured. Every list field is non-nil so the
// results view never branches on missing data.
func MockResult() Result {
	return Result{
		OverallScore:   4.2,
		Confidence:     "high",
		Recommendation: "hire",
		RecommendationRationale: "The candidate demonstrated strong technical proficiency and excellent communication skills. " +
			"They clarified requirements early, used the Redis wrapper correctly after checking documentation, and handled " +
			"the manager's feedback during the code review with maturity. Minor deductions for initially missing the unit test requirement.",
		OverallGreenFlags: []string{
			"Proactively clarified ambiguity around the sliding window algorithm",
			"Correctly identified and used existing project abstractions (Redis wrapper)",
			"Strong ownership during the PR defense call",
		},
		OverallRedFlags: []string{
			"Initial implementation lacked comprehensive error handling",
			"Spent slightly too long debugging a simple syntax error",
		},
		OverallSummary: "A strong performance indicating a Senior-level capability. The candidate moved efficiently through " +
			"the task, demonstrated good instincts by checking the codebase for existing patterns before writing new code, " +
			"and communicated clearly with the AI manager.",
		KeyHighlights: []KeyHighlight{
			{
				Timestamp:   "02:15",
				Type:        "positive",
				Dimension:   "COMMUNICATION",
				Description: "Clearly clarified requirements with Sarah before starting",
				Quote:       strPtr("Just to double check, I should use the dev-token header for local testing?"),
			},
			{
				Timestamp:   "08:30",
				Type:        "negative",
				Dimension:   "PROBLEM_SOLVING",
				Description: "Got stuck on Redis connection syntax for 5 minutes",
			},
			{
				Timestamp:   "14:45",
				Type:        "positive",
				Dimension:   "TECHNICAL_KNOWLEDGE",
				Description: "Implemented efficient sliding window algorithm in Lua",
			},
			{
				Timestamp:   "28:10",
				Type:        "positive",
				Dimension:   "LEADERSHIP",
				Description: "Took strong ownership during the PR defense call",
				Quote:       strPtr("I chose this approach to minimize latency at scale."),
			},
		},
		DimensionScores: map[string]DimensionScore{
			"COMMUNICATION": {
				Score:               intPtr(5),
				Rationale:           "Excellent clarity in written messages. Asked precise clarifying questions.",
				GreenFlags:          []string{"Concise updates", "Professional tone"},
				RedFlags:            []string{},
				ObservableBehaviors: "Sent 3 messages to Sarah, all under 2 sentences but fully clear.",
				Timestamps:          []string{"02:15", "05:45"},
			},
			"PROBLEM_SOLVING": {
				Score:               intPtr(4),
				Rationale:           "Good systematic approach. Broke the rate limiter down into key components.",
				GreenFlags:          []string{"Logical breakdown", "Good hypothesis testing"},
				RedFlags:            []string{"Struggled briefly with Redis syntax"},
				ObservableBehaviors: "Drafted pseudocode before implementation.",
				Timestamps:          []string{"08:20"},
				TrainableGap:        true,
			},
			"TECHNICAL_KNOWLEDGE": {
				Score:               intPtr(4),
				Rationale:           "Strong understanding of Node.js async patterns and Redis basics.",
				GreenFlags:          []string{"Used async/await correctly", "Knew Redis expiry patterns"},
				RedFlags:            []string{},
				ObservableBehaviors: "Implemented sliding window correctly.",
				Timestamps:          []string{"12:10"},
			},
			"COLLABORATION": {
				Score:               intPtr(5),
				Rationale:           "Leveraged the team effectively. Didn't spin wheels when stuck.",
				GreenFlags:          []string{"Asked Sarah about Redis wrapper"},
				RedFlags:            []string{},
				ObservableBehaviors: "Reached out after 5 mins of searching docs.",
				Timestamps:          []string{"06:30"},
			},
			"ADAPTABILITY": {
				Score:               intPtr(4),
				Rationale:           "Adjusted well when the manager asked for unit tests.",
				GreenFlags:          []string{"Pivoted to testing quickly"},
				RedFlags:            []string{},
				ObservableBehaviors: "Immediately set up Jest after manager prompt.",
				Timestamps:          []string{"22:00"},
			},
			"LEADERSHIP": {
				Score:               intPtr(3),
				Rationale:           "Took ownership of the task but didn't propose architectural improvements.",
				GreenFlags:          []string{"Owned the delivery"},
				RedFlags:            []string{},
				ObservableBehaviors: "Focused on execution.",
				Timestamps:          []string{"00:00"},
				TrainableGap:        true,
			},
			"CREATIVITY": {
				Score:               intPtr(4),
				Rationale:           "Came up with a clever key naming scheme for the rate limiter.",
				GreenFlags:          []string{"Unique key namespacing"},
				RedFlags:            []string{},
				ObservableBehaviors: "Used IP + UserAgent hash for keys.",
				Timestamps:          []string{"10:15"},
			},
			"TIME_MANAGEMENT": {
				Score:               intPtr(5),
				Rationale:           "Finished within the allocated time with a complete PR.",
				GreenFlags:          []string{"Paced well", "Submitted on time"},
				RedFlags:            []string{},
				ObservableBehaviors: "Submitted PR at 28:00 mark.",
				Timestamps:          []string{"28:00"},
			},
		},
	}
}
