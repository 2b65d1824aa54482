package recording

import (
	"context"
	"errors"
	"time"
)

// Status is the capture state. interrupted can resume into a fresh recording;
// denied and error require the caller to retry from scratch.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusRecording   Status = "recording"
	StatusInterrupted Status = "interrupted"
	StatusError       Status = "error"
	StatusDenied      Status = "denied"
)

// ErrPermissionDenied classifies an explicit user refusal. Devices return it
// (wrapped or bare) so the recorder can surface denied instead of error.
var ErrPermissionDenied = errors.New("capture permission denied")

// CaptureOptions carries the negotiated encoding. Empty MimeType means the
// platform default.
type CaptureOptions struct {
	MimeType string
}

// CaptureDevice is the platform capture surface: screen video plus system and
// microphone audio. Microphone failure is tolerated inside the device; Open
// fails only when screen capture itself cannot start.
type CaptureDevice interface {
	// Supports reports whether the platform can encode the given MIME type.
	Supports(mimeType string) bool
	Open(ctx context.Context, opts CaptureOptions) (CaptureSession, error)
}

// CaptureSession is one live capture. The recorder drains Chunks, polls
// Screenshot on a timer, and watches Revoked for external permission loss.
type CaptureSession interface {
	Chunks() <-chan []byte
	Screenshot() ([]byte, error)
	// Revoked closes when the user revokes screen sharing outside the app.
	Revoked() <-chan struct{}
	Close() error
}

// Screenshot is one still frame taken during capture.
type Screenshot struct {
	Data    []byte
	TakenAt time.Time
}

// Artifact is the consolidated output of one recording.
type Artifact struct {
	Video       []byte
	MimeType    string
	Screenshots []Screenshot
}

// mimePreference is the descending-preference encoding list. The first type
// the device supports wins; an empty result lets the platform choose.
var mimePreference = []string{
	"video/webm;codecs=vp9,opus",
	"video/webm;codecs=vp8,opus",
	"video/webm;codecs=h264,opus",
	"video/webm",
	"video/mp4",
}

// fallbackMimeType tags the artifact when negotiation fell through to the
// platform default.
const fallbackMimeType = "video/webm"

// NegotiateMimeType picks the best supported encoding, or "" for the platform
// default.
func NegotiateMimeType(dev CaptureDevice) string {
	for _, t := range mimePreference {
		if dev.Supports(t) {
			return t
		}
	}
	return ""
}
