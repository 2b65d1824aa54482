package voice

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/skillvee/Skillvee-ai-studio/internal/roster"
)

// Status is the call lifecycle phase. Ended and Error are terminal.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusIncoming   Status = "incoming"
	StatusConnecting Status = "connecting"
	StatusActive     Status = "active"
	StatusEnded      Status = "ended"
	StatusError      Status = "error"
)

// StreamEvent is one downstream realtime message, already reduced to what the
// call loop acts on.
type StreamEvent struct {
	Audio        []byte
	Interrupted  bool
	TurnComplete bool
}

// Stream is an open duplex audio channel to the voice capability.
type Stream interface {
	SendAudio(pcm []byte) error
	Receive() (StreamEvent, error)
	Close() error
}

// Dialer opens realtime channels. The gemini client satisfies this through a
// thin adapter in the session registry.
type Dialer interface {
	Dial(ctx context.Context, systemInstruction, voiceName string) (Stream, error)
}

// Call is one voice conversation with a coworker. The system instruction is
// fixed when the channel opens and never re-evaluated mid-call.
type Call struct {
	coworker   roster.Coworker
	dialer     Dialer
	onSpeaking func(bool)

	mu     sync.Mutex
	status Status
	err    error
	stream Stream
	sched  *Scheduler
	cancel context.CancelFunc

	onStatus func(Status)
}

// NewCall prepares an idle call with the given counterpart. The playout sink
// arrives at Start: a ringing call holds no audio resources. onSpeaking and
// onStatus may be nil; when set they fire outside the lock.
func NewCall(cw roster.Coworker, dialer Dialer, onSpeaking func(bool), onStatus func(Status)) *Call {
	return &Call{
		coworker:   cw,
		dialer:     dialer,
		onSpeaking: onSpeaking,
		status:     StatusIdle,
		onStatus:   onStatus,
	}
}

// RingIncoming flags the call as ringing. No channel resources are consumed
// until Start answers it.
func (c *Call) RingIncoming() {
	c.transition(StatusIdle, StatusIncoming)
}

// Start answers (or places) the call: it opens the realtime channel with the
// persona instruction chosen at this moment and begins the receive loop. sink
// receives the model's audio for playout.
func (c *Call) Start(ctx context.Context, systemInstruction string, sink AudioSink) error {
	c.mu.Lock()
	if c.status != StatusIdle && c.status != StatusIncoming {
		c.mu.Unlock()
		return nil
	}
	c.status = StatusConnecting
	c.sched = NewScheduler(sink, c.onSpeaking)
	callCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	c.notify(StatusConnecting)

	stream, err := c.dialer.Dial(callCtx, systemInstruction, c.coworker.VoiceName)
	if err != nil {
		c.fail(err)
		return err
	}

	c.mu.Lock()
	if c.status != StatusConnecting {
		// Ended while dialing.
		c.mu.Unlock()
		_ = stream.Close()
		return nil
	}
	c.stream = stream
	c.status = StatusActive
	c.mu.Unlock()
	c.notify(StatusActive)

	go c.receiveLoop(callCtx, stream)
	return nil
}

// SendAudio forwards candidate microphone audio upstream. Dropped silently
// unless the call is active, so ringing and teardown never touch the channel.
func (c *Call) SendAudio(pcm []byte) {
	c.mu.Lock()
	stream := c.stream
	active := c.status == StatusActive
	c.mu.Unlock()
	if !active || stream == nil {
		return
	}
	if err := stream.SendAudio(pcm); err != nil {
		log.Printf("[call %s] send audio: %v", c.coworker.ID, err)
	}
}

func (c *Call) receiveLoop(ctx context.Context, stream Stream) {
	for {
		ev, err := stream.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return // deliberate teardown
			}
			c.fail(err)
			return
		}
		if ev.Interrupted {
			// Discard everything queued so audio does not catch up after the
			// candidate talked over the model.
			c.sched.Reset()
			continue
		}
		if len(ev.Audio) > 0 {
			c.sched.Schedule(ev.Audio, pcmDuration(len(ev.Audio)))
		}
	}
}

// End tears the call down. Safe to call repeatedly and on a call that never
// started.
func (c *Call) End() {
	c.mu.Lock()
	if c.status == StatusEnded || c.status == StatusError {
		c.mu.Unlock()
		return
	}
	c.status = StatusEnded
	stream := c.stream
	cancel := c.cancel
	sched := c.sched
	c.stream = nil
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stream != nil {
		_ = stream.Close()
	}
	if sched != nil {
		sched.Reset()
	}
	c.notify(StatusEnded)
}

// fail records the error and forces the ended state so the call never hangs
// silently.
func (c *Call) fail(err error) {
	c.mu.Lock()
	if c.status == StatusEnded || c.status == StatusError {
		c.mu.Unlock()
		return
	}
	c.status = StatusError
	c.err = err
	stream := c.stream
	cancel := c.cancel
	sched := c.sched
	c.stream = nil
	c.cancel = nil
	c.mu.Unlock()

	log.Printf("[call %s] failed: %v", c.coworker.ID, err)
	if cancel != nil {
		cancel()
	}
	if stream != nil {
		_ = stream.Close()
	}
	if sched != nil {
		sched.Reset()
	}
	c.notify(StatusError)
}

func (c *Call) transition(from, to Status) {
	c.mu.Lock()
	if c.status != from {
		c.mu.Unlock()
		return
	}
	c.status = to
	c.mu.Unlock()
	c.notify(to)
}

func (c *Call) notify(s Status) {
	if c.onStatus != nil {
		c.onStatus(s)
	}
}

func (c *Call) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Err returns the failure that ended the call, if any.
func (c *Call) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Call) IsSpeaking() bool {
	c.mu.Lock()
	sched := c.sched
	c.mu.Unlock()
	return sched != nil && sched.IsSpeaking()
}

func (c *Call) Coworker() roster.Coworker { return c.coworker }

// pcmDuration converts a byte count of 24kHz 16-bit mono PCM to wall time.
func pcmDuration(n int) time.Duration {
	samples := n / 2
	return time.Duration(samples) * time.Second / 24000
}
