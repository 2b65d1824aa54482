package gemini

import (
	"context"

	"github.com/skillvee/Skillvee-ai-studio/internal/voice"
)

// LiveDialer adapts the client's realtime sessions to the voice package's
// Dialer contract.
type LiveDialer struct {
	Client *Client
}

func (d LiveDialer) Dial(ctx context.Context, systemInstruction, voiceName string) (voice.Stream, error) {
	s, err := d.Client.ConnectLive(ctx, systemInstruction, voiceName)
	if err != nil {
		return nil, err
	}
	return liveStream{s}, nil
}

type liveStream struct{ s *LiveSession }

func (l liveStream) SendAudio(pcm []byte) error { return l.s.SendAudio(pcm) }

func (l liveStream) Receive() (voice.StreamEvent, error) {
	ev, err := l.s.Receive()
	if err != nil {
		return voice.StreamEvent{}, err
	}
	return voice.StreamEvent{Audio: ev.Audio, Interrupted: ev.Interrupted, TurnComplete: ev.TurnComplete}, nil
}

func (l liveStream) Close() error { return l.s.Close() }
