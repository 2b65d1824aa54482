package recording

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSession struct {
	chunks  chan []byte
	revoked chan struct{}
	frame   []byte

	mu     sync.Mutex
	closed int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		chunks:  make(chan []byte, 32),
		revoked: make(chan struct{}),
		frame:   []byte("jpeg"),
	}
}

func (f *fakeSession) Chunks() <-chan []byte       { return f.chunks }
func (f *fakeSession) Revoked() <-chan struct{}    { return f.revoked }
func (f *fakeSession) Screenshot() ([]byte, error) { return f.frame, nil }

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeSession) closedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeDevice struct {
	supported map[string]bool
	openErr   error

	mu       sync.Mutex
	sessions []*fakeSession
	lastOpts CaptureOptions
}

func (f *fakeDevice) Supports(t string) bool { return f.supported[t] }

func (f *fakeDevice) Open(_ context.Context, opts CaptureOptions) (CaptureSession, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	s := newFakeSession()
	f.mu.Lock()
	f.sessions = append(f.sessions, s)
	f.lastOpts = opts
	f.mu.Unlock()
	return s, nil
}

func (f *fakeDevice) last() *fakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[len(f.sessions)-1]
}

func settle(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition never settled")
}

func TestNegotiateMimeType_Preference(t *testing.T) {
	dev := &fakeDevice{supported: map[string]bool{
		"video/webm;codecs=vp8,opus": true,
		"video/webm":                 true,
	}}
	if got := NegotiateMimeType(dev); got != "video/webm;codecs=vp8,opus" {
		t.Fatalf("negotiated %q", got)
	}

	dev.supported["video/webm;codecs=vp9,opus"] = true
	if got := NegotiateMimeType(dev); got != "video/webm;codecs=vp9,opus" {
		t.Fatalf("vp9 must win, got %q", got)
	}

	if got := NegotiateMimeType(&fakeDevice{}); got != "" {
		t.Fatalf("expected platform default, got %q", got)
	}
}

func TestRecorder_StartStopAssemblesChunksInOrder(t *testing.T) {
	dev := &fakeDevice{supported: map[string]bool{"video/webm": true}}
	r := NewRecorder(dev)

	if !r.Start(context.Background()) {
		t.Fatalf("start failed")
	}
	if r.Status() != StatusRecording {
		t.Fatalf("status = %q", r.Status())
	}
	if dev.lastOpts.MimeType != "video/webm" {
		t.Fatalf("device opened with %q", dev.lastOpts.MimeType)
	}

	sess := dev.last()
	sess.chunks <- []byte("aa")
	sess.chunks <- []byte("bb")
	sess.chunks <- []byte("cc")
	settle(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return len(r.chunks) == 3
	})

	art := r.Stop()
	if !bytes.Equal(art.Video, []byte("aabbcc")) {
		t.Fatalf("video = %q", art.Video)
	}
	if art.MimeType != "video/webm" {
		t.Fatalf("mime = %q", art.MimeType)
	}
	if r.Status() != StatusIdle {
		t.Fatalf("status after stop = %q", r.Status())
	}
	if sess.closedCount() != 1 {
		t.Fatalf("session closed %d times", sess.closedCount())
	}
}

func TestRecorder_ScreenshotTicker(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRecorder(dev)
	r.interval = 5 * time.Millisecond

	if !r.Start(context.Background()) {
		t.Fatalf("start failed")
	}
	settle(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return len(r.screenshots) >= 3
	})
	art := r.Stop()
	if len(art.Screenshots) < 3 {
		t.Fatalf("expected periodic screenshots, got %d", len(art.Screenshots))
	}
	if art.Screenshots[0].TakenAt.IsZero() {
		t.Fatalf("screenshot missing timestamp")
	}
	// No explicit support: the artifact is still tagged with the fallback.
	if art.MimeType != "video/webm" {
		t.Fatalf("mime = %q", art.MimeType)
	}
}

func TestRecorder_DeniedVersusError(t *testing.T) {
	denied := &fakeDevice{openErr: fmt.Errorf("prompt dismissed: %w", ErrPermissionDenied)}
	r := NewRecorder(denied)
	if r.Start(context.Background()) {
		t.Fatalf("start should fail")
	}
	if r.Status() != StatusDenied || r.ErrMsg() == "" {
		t.Fatalf("status = %q, err = %q", r.Status(), r.ErrMsg())
	}

	broken := &fakeDevice{openErr: errors.New("encoder crashed")}
	r2 := NewRecorder(broken)
	if r2.Start(context.Background()) {
		t.Fatalf("start should fail")
	}
	if r2.Status() != StatusError {
		t.Fatalf("status = %q, want error", r2.Status())
	}
}

func TestRecorder_ExternalRevocationInterruptsGracefully(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRecorder(dev)
	if !r.Start(context.Background()) {
		t.Fatalf("start failed")
	}
	sess := dev.last()
	sess.chunks <- []byte("partial")
	settle(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return len(r.chunks) == 1
	})

	close(sess.revoked)
	settle(t, func() bool { return r.Status() == StatusInterrupted })
	if sess.closedCount() != 1 {
		t.Fatalf("device not released on interruption")
	}
	// The partial capture is finalized, not corrupted.
	if got := r.Artifact().Video; !bytes.Equal(got, []byte("partial")) {
		t.Fatalf("artifact = %q", got)
	}
}

func TestRecorder_ResumeStartsFreshArtifact(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRecorder(dev)
	if !r.Start(context.Background()) {
		t.Fatalf("start failed")
	}
	first := dev.last()
	first.chunks <- []byte("old")
	settle(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return len(r.chunks) == 1
	})
	close(first.revoked)
	settle(t, func() bool { return r.Status() == StatusInterrupted })

	if !r.Resume(context.Background()) {
		t.Fatalf("resume failed")
	}
	if r.Status() != StatusRecording {
		t.Fatalf("status = %q", r.Status())
	}
	second := dev.last()
	if second == first {
		t.Fatalf("resume must open a new capture session")
	}
	second.chunks <- []byte("new")
	settle(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return len(r.chunks) == 1 && bytes.Equal(r.chunks[0], []byte("new"))
	})
	art := r.Stop()
	if !bytes.Equal(art.Video, []byte("new")) {
		t.Fatalf("old chunks leaked into the fresh artifact: %q", art.Video)
	}
}

// promptDevice blocks Open until the gate closes, like a permission prompt
// waiting for the user.
type promptDevice struct {
	fakeDevice
	gate  chan struct{}
	opens int32
}

func (p *promptDevice) Open(ctx context.Context, opts CaptureOptions) (CaptureSession, error) {
	atomic.AddInt32(&p.opens, 1)
	<-p.gate
	return p.fakeDevice.Open(ctx, opts)
}

func TestRecorder_ConcurrentStartOpensOneSession(t *testing.T) {
	dev := &promptDevice{gate: make(chan struct{})}
	r := NewRecorder(dev)

	results := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		go func() { results <- r.Start(context.Background()) }()
	}

	// One caller is stuck on the prompt; the other must bounce off the guard
	// rather than open a second exclusive capture.
	settle(t, func() bool { return atomic.LoadInt32(&dev.opens) >= 1 })
	time.Sleep(10 * time.Millisecond)
	close(dev.gate)

	started := 0
	for i := 0; i < 2; i++ {
		if <-results {
			started++
		}
	}
	if started != 1 {
		t.Fatalf("%d Start calls succeeded, want exactly 1", started)
	}
	if n := atomic.LoadInt32(&dev.opens); n != 1 {
		t.Fatalf("device opened %d times, want 1", n)
	}
	if r.Status() != StatusRecording {
		t.Fatalf("status = %q", r.Status())
	}
	r.Close()
}

func TestRecorder_StartWhileRecordingRejected(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRecorder(dev)
	if !r.Start(context.Background()) {
		t.Fatalf("start failed")
	}
	if r.Start(context.Background()) {
		t.Fatalf("second start must be rejected")
	}
	r.Close()
	if r.Status() != StatusIdle {
		t.Fatalf("close did not return to idle")
	}
}
