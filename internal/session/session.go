package session

import (
	"context"
	"log"
	"sync"

	"github.com/skillvee/Skillvee-ai-studio/internal/assessment"
	"github.com/skillvee/Skillvee-ai-studio/internal/chat"
	"github.com/skillvee/Skillvee-ai-studio/internal/evaluation"
	"github.com/skillvee/Skillvee-ai-studio/internal/prompts"
	"github.com/skillvee/Skillvee-ai-studio/internal/recording"
	"github.com/skillvee/Skillvee-ai-studio/internal/roster"
	"github.com/skillvee/Skillvee-ai-studio/internal/storage"
	"github.com/skillvee/Skillvee-ai-studio/internal/voice"
)

// Capabilities are the AI collaborators a session consumes. Any of them may
// be nil; every consumer degrades to its fallback behavior.
type Capabilities struct {
	Text      chat.TextGenerator
	Greetings assessment.GreetingGenerator
	Scorer    evaluation.Scorer
	Live      voice.Dialer
}

// Session is one candidate's assessment: conversation state, phase machine,
// recording, voice call and the final evaluation, composed per session.
type Session struct {
	ID   string
	Team roster.Roster

	Store    *chat.Store
	Machine  *assessment.Machine
	Orch     *chat.Orchestrator
	Recorder *recording.Recorder
	Intake   *recording.Intake
	Pipeline *evaluation.Pipeline

	caps     Capabilities
	uploader storage.Uploader

	mu           sync.Mutex
	call         *voice.Call
	incomingFrom string
	candidate    string
}

// New composes a session. device may be nil when the deployment has no
// server-side capture source; the recording endpoints then report errors.
func New(caps Capabilities, uploader storage.Uploader, device recording.CaptureDevice, candidateName string) *Session {
	team := roster.Default()
	store := chat.NewStore()
	machine := assessment.NewMachine(store, team, caps.Greetings, candidateName)

	s := &Session{
		ID:        machine.Snapshot().ID,
		Team:      team,
		Store:     store,
		Machine:   machine,
		Pipeline:  evaluation.NewPipeline(caps.Scorer),
		caps:      caps,
		uploader:  uploader,
		candidate: candidateName,
	}
	if device != nil {
		s.Recorder = recording.NewRecorder(device)
		// Push-based devices additionally take media over the HTTP surface.
		if in, ok := device.(*recording.Intake); ok {
			s.Intake = in
		}
	}
	s.Orch = chat.NewOrchestrator(store, team, caps.Text, candidateName, s.onPRDetected)
	return s
}

// onPRDetected records the PR and flags the manager's incoming defense call.
func (s *Session) onPRDetected(url string) {
	s.Machine.SubmitPR(url)
	manager, ok := s.Team.Manager()
	if !ok {
		return
	}
	s.mu.Lock()
	s.incomingFrom = manager.ID
	s.mu.Unlock()
	log.Printf("[%s] incoming call from %s", s.ID, manager.ID)
}

// SendMessage routes one candidate message through the orchestrator with the
// currently recorded PR URL.
func (s *Session) SendMessage(ctx context.Context, coworkerID, text string) {
	s.Orch.SendUserMessage(ctx, coworkerID, text, s.Machine.Snapshot().PRURL)
}

// IncomingCallFrom reports which coworker is ringing the candidate, empty
// when none.
func (s *Session) IncomingCallFrom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incomingFrom
}

// AnswerCall opens the voice call with the given coworker, using the playout
// sink from the transport leg. The persona is fixed here: the manager speaks
// as a PR reviewer once a PR URL is on record, everyone speaks with recent
// chat continuity otherwise.
func (s *Session) AnswerCall(ctx context.Context, coworkerID string, sink voice.AudioSink) (*voice.Call, error) {
	cw, ok := s.Team.Coworker(coworkerID)
	if !ok {
		return nil, errUnknownCoworker(coworkerID)
	}

	s.mu.Lock()
	if s.call != nil && (s.call.Status() == voice.StatusActive || s.call.Status() == voice.StatusConnecting) {
		call := s.call
		s.mu.Unlock()
		return call, nil
	}
	s.incomingFrom = ""
	call := voice.NewCall(cw, s.caps.Live, nil, nil)
	s.call = call
	s.mu.Unlock()

	state := s.Machine.Snapshot()
	var instruction string
	if cw.IsManager() && state.PRURL != "" {
		instruction = prompts.BuildDefensePrompt(prompts.DefenseContext{
			ManagerName:     cw.Name,
			ManagerRole:     cw.Role,
			CompanyName:     s.Team.Scenario.CompanyName,
			CandidateName:   s.candidate,
			TaskDescription: s.Team.Scenario.TaskDescription,
			TechStack:       s.Team.Scenario.TechStack,
			RepoURL:         s.Team.Scenario.RepoURL,
			PRURL:           state.PRURL,
		})
		s.Machine.MarkDefenseCallStarted()
	} else {
		instruction = prompts.BuildCoworkerVoicePrompt(cw, s.Team.Scenario, s.candidate, s.recentChatDigest(coworkerID))
	}

	if err := call.Start(ctx, instruction, sink); err != nil {
		return nil, err
	}
	return call, nil
}

// recentChatDigest summarizes the last text exchanges with this coworker for
// voice continuity.
func (s *Session) recentChatDigest(coworkerID string) string {
	history := s.Store.History(coworkerID)
	lines := make([]prompts.ChatLine, 0, len(history))
	for _, m := range history {
		lines = append(lines, prompts.ChatLine{FromCandidate: m.Author == chat.AuthorCandidate, Text: m.Text})
	}
	return prompts.SummarizeChatForVoice(lines, 6)
}

// Call returns the current voice call, nil when none was ever placed.
func (s *Session) Call() *voice.Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.call
}

// Complete finishes the assessment: the phase machine flips to COMPLETED,
// the recording is finalized and uploaded, and the evaluation pipeline runs
// on everything gathered. Safe to call twice; the pipeline guard makes the
// second call a no-op.
func (s *Session) Complete(ctx context.Context) {
	s.Machine.CompleteAssessment()
	if call := s.Call(); call != nil {
		call.End()
	}

	var art recording.Artifact
	if s.Recorder != nil {
		art = s.Recorder.Stop()
		storage.UploadEvidence(s.uploader, s.ID, art)
	}

	go s.Pipeline.Run(ctx, evaluation.Evidence{
		Video:         art.Video,
		VideoMIMEType: art.MimeType,
		Screenshots:   art.Screenshots,
		Histories:     s.Store.AllHistories(),
	})
}

// Close tears down everything the session owns. Greeting timers stop, the
// call ends, capture devices release.
func (s *Session) Close() {
	s.Machine.Close()
	if call := s.Call(); call != nil {
		call.End()
	}
	if s.Recorder != nil {
		s.Recorder.Close()
	}
}

type errUnknownCoworker string

func (e errUnknownCoworker) Error() string { return "unknown coworker: " + string(e) }
