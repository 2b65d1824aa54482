package recording

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotCapturing is returned when media is pushed while no capture session
// is open.
var ErrNotCapturing = errors.New("no active capture session")

// Intake is the push-based CaptureDevice: the browser runs the actual media
// capture (MediaRecorder + canvas snapshots) and streams chunks, still frames
// and revocation notices to the server over REST. The Go side owns the state
// machine; the intake just moves bytes into the open session.
type Intake struct {
	mu   sync.Mutex
	sess *intakeSession
}

func NewIntake() *Intake {
	return &Intake{}
}

// Supports accepts the webm family. The browser does the encoding; the
// negotiated type only tags the artifact.
func (in *Intake) Supports(mimeType string) bool {
	return strings.HasPrefix(mimeType, "video/webm")
}

// Open claims the intake for one capture session. The device is exclusive;
// a second Open while a session is live fails.
func (in *Intake) Open(_ context.Context, _ CaptureOptions) (CaptureSession, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.sess != nil {
		return nil, errors.New("capture session already open")
	}
	s := &intakeSession{
		owner:   in,
		chunks:  make(chan []byte, 64),
		revoked: make(chan struct{}),
	}
	in.sess = s
	return s, nil
}

// PushChunk feeds one recorded media chunk from the client.
func (in *Intake) PushChunk(data []byte) error {
	s := in.active()
	if s == nil {
		return ErrNotCapturing
	}
	return s.push(data)
}

// PushFrame stores the latest still frame. The recorder samples it on its
// screenshot tick, so frames pushed faster than the tick overwrite each
// other.
func (in *Intake) PushFrame(data []byte) error {
	s := in.active()
	if s == nil {
		return ErrNotCapturing
	}
	s.setFrame(data)
	return nil
}

// Revoke reports that the user stopped sharing in the browser. Idempotent;
// revoking with no open session is a no-op.
func (in *Intake) Revoke() {
	if s := in.active(); s != nil {
		s.revoke()
	}
}

func (in *Intake) active() *intakeSession {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.sess
}

func (in *Intake) release(s *intakeSession) {
	in.mu.Lock()
	if in.sess == s {
		in.sess = nil
	}
	in.mu.Unlock()
}

type intakeSession struct {
	owner   *Intake
	chunks  chan []byte
	revoked chan struct{}

	mu          sync.Mutex
	frame       []byte
	closed      bool
	revokedOnce bool
}

func (s *intakeSession) Chunks() <-chan []byte    { return s.chunks }
func (s *intakeSession) Revoked() <-chan struct{} { return s.revoked }

func (s *intakeSession) Screenshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frame) == 0 {
		return nil, errors.New("no frame pushed yet")
	}
	frame := make([]byte, len(s.frame))
	copy(frame, s.frame)
	return frame, nil
}

func (s *intakeSession) push(data []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrNotCapturing
	}
	s.mu.Unlock()

	chunk := make([]byte, len(data))
	copy(chunk, data)
	select {
	case s.chunks <- chunk:
		return nil
	default:
		// The recorder stopped draining (or the client floods faster than the
		// buffer); the chunk is lost, tell the client.
		return errors.New("capture backlogged, chunk dropped")
	}
}

func (s *intakeSession) setFrame(data []byte) {
	frame := make([]byte, len(data))
	copy(frame, data)
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
}

func (s *intakeSession) revoke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revokedOnce || s.closed {
		return
	}
	s.revokedOnce = true
	close(s.revoked)
}

// Close detaches the session from the intake so a later Open can claim it
// again. The chunks channel stays open; the recorder exits via its own
// cancellation and pushes after Close just error out.
func (s *intakeSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	s.owner.release(s)
	return nil
}
