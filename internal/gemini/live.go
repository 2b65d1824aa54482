package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// LiveEvent is one downstream message from a realtime audio session, reduced
// to the fields the call loop acts on.
type LiveEvent struct {
	// Audio is a chunk of 24kHz 16-bit mono PCM, nil when the message carried
	// no media.
	Audio []byte
	// Interrupted reports a barge-in: the model abandoned its current turn.
	Interrupted bool
	// TurnComplete reports the model finished speaking its turn.
	TurnComplete bool
}

// LiveSession is an open realtime audio dialog with one coworker persona.
type LiveSession struct {
	session *genai.Session
}

// ConnectLive opens a realtime session speaking with the given prebuilt voice.
// The system instruction fixes the persona for the whole call.
func (c *Client) ConnectLive(ctx context.Context, systemInstruction, voiceName string) (*LiveSession, error) {
	cfg := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction:  genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}
	if voiceName != "" {
		cfg.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceName},
			},
		}
	}
	s, err := c.client.Live.Connect(ctx, c.liveModel, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting live session: %w", err)
	}
	return &LiveSession{session: s}, nil
}

// SendAudio streams one chunk of candidate microphone audio upstream. The
// session expects 16kHz 16-bit mono PCM.
func (s *LiveSession) SendAudio(pcm []byte) error {
	return s.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: pcm, MIMEType: "audio/pcm;rate=16000"},
	})
}

// Receive blocks for the next downstream message. Returns an error when the
// session ends or the transport fails.
func (s *LiveSession) Receive() (LiveEvent, error) {
	msg, err := s.session.Receive()
	if err != nil {
		return LiveEvent{}, err
	}
	var ev LiveEvent
	sc := msg.ServerContent
	if sc == nil {
		return ev, nil
	}
	ev.Interrupted = sc.Interrupted
	ev.TurnComplete = sc.TurnComplete
	if sc.ModelTurn != nil {
		for _, p := range sc.ModelTurn.Parts {
			if p.InlineData != nil && len(p.InlineData.Data) > 0 {
				ev.Audio = append(ev.Audio, p.InlineData.Data...)
			}
		}
	}
	return ev, nil
}

func (s *LiveSession) Close() error {
	return s.session.Close()
}
