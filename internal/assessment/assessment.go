package assessment

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillvee/Skillvee-ai-studio/internal/chat"
	"github.com/skillvee/Skillvee-ai-studio/internal/roster"
)

// Status is the assessment phase. Transitions are monotonic; there is no way
// back from COMPLETED.
type Status string

const (
	StatusWelcome   Status = "WELCOME"
	StatusWorking   Status = "WORKING"
	StatusCompleted Status = "COMPLETED"
)

// State is the session's mutable control record. Snapshots are returned by
// value; only the Machine mutates the live copy.
type State struct {
	ID                     string     `json:"id"`
	Status                 Status     `json:"status"`
	ScenarioID             string     `json:"scenarioId"`
	CandidateName          string     `json:"candidateName"`
	PRURL                  string     `json:"prUrl,omitempty"`
	ManagerMessagesStarted bool       `json:"managerMessagesStarted"`
	DefenseCallStarted     bool       `json:"defenseCallStarted"`
	StartedAt              time.Time  `json:"startedAt"`
	CompletedAt            *time.Time `json:"completedAt,omitempty"`
}

// GreetingGenerator produces the manager's opening message sequence from a
// prompt. A nil generator or any failure falls back to canned messages.
type GreetingGenerator interface {
	GenerateGreetings(ctx context.Context, prompt string) ([]string, error)
}

// Machine owns assessment phase transitions and drives the scripted manager
// greeting with human-like pacing.
type Machine struct {
	mu    sync.Mutex
	state State

	store    *chat.Store
	team     roster.Roster
	greetGen GreetingGenerator
	timing   Timing

	// greetingStarted is the synchronous double-start guard; it is checked
	// and set under mu before any asynchronous work begins.
	greetingStarted bool

	ctx    context.Context
	cancel context.CancelFunc

	now func() time.Time
}

// NewMachine creates the control record in WELCOME and wires the greeting
// sequencer. greetGen may be nil.
func NewMachine(store *chat.Store, team roster.Roster, greetGen GreetingGenerator, candidateName string) *Machine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{
		state: State{
			ID:            uuid.NewString(),
			Status:        StatusWelcome,
			ScenarioID:    team.Scenario.ID,
			CandidateName: candidateName,
			StartedAt:     time.Now(),
		},
		store:    store,
		team:     team,
		greetGen: greetGen,
		timing:   DefaultTiming(),
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
	}
}

// Snapshot returns a copy of the current control record.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// StartAssessment moves WELCOME -> WORKING and kicks off the greeting
// sequence. A second call, even concurrent with the first, is a silent
// no-op; the guard flag flips before any asynchronous work starts.
func (m *Machine) StartAssessment() {
	m.mu.Lock()
	if m.greetingStarted || m.state.ManagerMessagesStarted {
		m.mu.Unlock()
		return
	}
	manager, ok := m.team.Manager()
	if !ok {
		m.mu.Unlock()
		return
	}
	m.greetingStarted = true
	m.state.Status = StatusWorking
	m.state.ManagerMessagesStarted = true
	m.mu.Unlock()

	go m.runGreeting(m.ctx, manager)
}

// SubmitPR records the PR URL, first write wins. Later calls with a
// different URL are ignored.
func (m *Machine) SubmitPR(url string) {
	if url == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.PRURL != "" {
		return
	}
	m.state.PRURL = url
	log.Printf("[%s] PR recorded: %s", m.state.ID, url)
}

// MarkDefenseCallStarted flags the defense call. Idempotent.
func (m *Machine) MarkDefenseCallStarted() {
	m.mu.Lock()
	m.state.DefenseCallStarted = true
	m.mu.Unlock()
}

// CompleteAssessment moves WORKING -> COMPLETED and stamps completion time.
// Idempotent once completed; the first timestamp is never overwritten.
func (m *Machine) CompleteAssessment() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Status == StatusCompleted {
		return
	}
	now := m.now()
	m.state.Status = StatusCompleted
	m.state.CompletedAt = &now
	log.Printf("[%s] assessment completed", m.state.ID)
}

// Close cancels any in-flight greeting sequence. Safe to call repeatedly and
// before StartAssessment.
func (m *Machine) Close() {
	m.cancel()
}
