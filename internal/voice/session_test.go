package voice

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skillvee/Skillvee-ai-studio/internal/roster"
)

type fakeStream struct {
	events chan StreamEvent
	errs   chan error

	mu     sync.Mutex
	sent   [][]byte
	closed int
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan StreamEvent, 16), errs: make(chan error, 1)}
}

func (f *fakeStream) SendAudio(pcm []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, pcm)
	return nil
}

func (f *fakeStream) Receive() (StreamEvent, error) {
	select {
	case ev := <-f.events:
		return ev, nil
	case err := <-f.errs:
		return StreamEvent{}, err
	}
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	f.errs <- errors.New("closed")
	return nil
}

func (f *fakeStream) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeDialer struct {
	stream      *fakeStream
	err         error
	dials       int32
	instruction string
	voice       string
}

func (f *fakeDialer) Dial(_ context.Context, instruction, voiceName string) (Stream, error) {
	atomic.AddInt32(&f.dials, 1)
	f.instruction = instruction
	f.voice = voiceName
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

func testCoworker() roster.Coworker {
	team := roster.Default()
	cw, _ := team.Coworker("cw_manager")
	return cw
}

func waitStatus(t *testing.T, c *Call, want Status) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c.Status() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("status = %q, want %q", c.Status(), want)
}

func TestCall_RingingConsumesNoChannel(t *testing.T) {
	d := &fakeDialer{stream: newFakeStream()}
	c := NewCall(testCoworker(), d, nil, nil)

	c.RingIncoming()
	c.SendAudio([]byte{1, 2})

	if atomic.LoadInt32(&d.dials) != 0 {
		t.Fatalf("ringing must not dial")
	}
	if d.stream.sentCount() != 0 {
		t.Fatalf("audio sent before answer")
	}

	if err := c.Start(context.Background(), "persona", &memSink{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if atomic.LoadInt32(&d.dials) != 1 {
		t.Fatalf("answer must dial exactly once")
	}
	if d.instruction != "persona" || d.voice != "Orus" {
		t.Fatalf("dial args: %q %q", d.instruction, d.voice)
	}
	c.End()
}

func TestCall_SendAudioOnlyWhileActive(t *testing.T) {
	d := &fakeDialer{stream: newFakeStream()}
	c := NewCall(testCoworker(), d, nil, nil)
	if err := c.Start(context.Background(), "p", &memSink{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	c.SendAudio([]byte{1})
	if d.stream.sentCount() != 1 {
		t.Fatalf("expected audio forwarded while active")
	}
	c.End()
	c.SendAudio([]byte{2})
	if d.stream.sentCount() != 1 {
		t.Fatalf("audio must be dropped after end")
	}
}

func TestCall_InterruptDiscardsScheduledAudio(t *testing.T) {
	stream := newFakeStream()
	d := &fakeDialer{stream: stream}
	sink := &memSink{}
	c := NewCall(testCoworker(), d, nil, nil)
	if err := c.Start(context.Background(), "p", sink); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Big chunk: ~1s of 24k audio keeps the queue busy.
	stream.events <- StreamEvent{Audio: make([]byte, 48000)}
	deadline := time.Now().Add(time.Second)
	for !c.IsSpeaking() && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if !c.IsSpeaking() {
		t.Fatalf("expected speaking after audio event")
	}

	stream.events <- StreamEvent{Interrupted: true}
	deadline = time.Now().Add(time.Second)
	for c.IsSpeaking() && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if c.IsSpeaking() {
		t.Fatalf("interrupt did not clear the queue")
	}
	if _, resets := sink.counts(); resets == 0 {
		t.Fatalf("interrupt did not reset the sink")
	}
	c.End()
}

func TestCall_ReceiveErrorForcesErrorState(t *testing.T) {
	stream := newFakeStream()
	d := &fakeDialer{stream: stream}
	c := NewCall(testCoworker(), d, nil, nil)
	if err := c.Start(context.Background(), "p", &memSink{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	stream.errs <- errors.New("channel dropped")
	waitStatus(t, c, StatusError)
	if c.Err() == nil {
		t.Fatalf("expected observable error")
	}
	// End on a failed call is a no-op.
	c.End()
	if c.Status() != StatusError {
		t.Fatalf("end overwrote terminal error state")
	}
}

func TestCall_DialFailure(t *testing.T) {
	d := &fakeDialer{err: errors.New("no route")}
	var statuses []Status
	var mu sync.Mutex
	c := NewCall(testCoworker(), d, nil, func(s Status) {
		mu.Lock()
		statuses = append(statuses, s)
		mu.Unlock()
	})

	if err := c.Start(context.Background(), "p", &memSink{}); err == nil {
		t.Fatalf("expected dial error")
	}
	if c.Status() != StatusError {
		t.Fatalf("status = %q, want error", c.Status())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(statuses) == 0 || statuses[len(statuses)-1] != StatusError {
		t.Fatalf("observer missed the failure: %v", statuses)
	}
}

func TestCall_EndIdempotent(t *testing.T) {
	stream := newFakeStream()
	d := &fakeDialer{stream: stream}
	c := NewCall(testCoworker(), d, nil, nil)
	if err := c.Start(context.Background(), "p", &memSink{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	c.End()
	c.End()
	c.End()
	stream.mu.Lock()
	closed := stream.closed
	stream.mu.Unlock()
	if closed != 1 {
		t.Fatalf("stream closed %d times, want 1", closed)
	}
	if c.Status() != StatusEnded {
		t.Fatalf("status = %q", c.Status())
	}
	// Double start after end stays ended.
	if err := c.Start(context.Background(), "p", &memSink{}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if c.Status() != StatusEnded {
		t.Fatalf("ended call restarted")
	}
}

func TestPCMDuration(t *testing.T) {
	// 48000 bytes = 24000 samples = 1 second at 24kHz mono 16-bit.
	if d := pcmDuration(48000); d != time.Second {
		t.Fatalf("pcmDuration = %v, want 1s", d)
	}
}
