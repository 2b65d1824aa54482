package roster

import "strings"

// Knowledge is one thing a coworker knows. The trigger keywords decide when a
// topic is considered "discussed" when building cross-coworker context.
type Knowledge struct {
	Topic           string
	TriggerKeywords []string
	Response        string
	IsCritical      bool
}

// Coworker is a static descriptor for one AI-portrayed team member.
type Coworker struct {
	ID           string
	Name         string
	Role         string
	PersonaStyle string
	AvatarURL    string
	VoiceName    string
	IsOnline     bool
	Knowledge    []Knowledge
}

// IsManager reports whether this coworker acts as the candidate's manager.
// The role label is the source of truth; there is no dedicated flag.
func (c Coworker) IsManager() bool {
	return strings.Contains(strings.ToLower(c.Role), "manager")
}

// Scenario describes the company and task the candidate is dropped into.
type Scenario struct {
	ID                 string
	CompanyName        string
	CompanyDescription string
	TaskDescription    string
	TechStack          []string
	RepoURL            string
}

// Roster bundles the read-only reference data for one assessment.
type Roster struct {
	Scenario  Scenario
	Coworkers []Coworker
}

// Coworker returns the descriptor for id, or false if unknown.
func (r Roster) Coworker(id string) (Coworker, bool) {
	for _, c := range r.Coworkers {
		if c.ID == id {
			return c, true
		}
	}
	return Coworker{}, false
}

// Manager returns the first coworker whose role marks them as manager.
func (r Roster) Manager() (Coworker, bool) {
	for _, c := range r.Coworkers {
		if c.IsManager() {
			return c, true
		}
	}
	return Coworker{}, false
}
