package recording

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ScreenshotInterval is how often a still frame is captured while recording.
const ScreenshotInterval = 5 * time.Second

// Recorder owns the recording state machine over one capture device. A resume
// after interruption starts a fresh artifact; the platform requires the
// permission to be re-granted, so the prior in-progress capture cannot be
// extended.
type Recorder struct {
	device CaptureDevice

	mu          sync.Mutex
	status      Status
	starting    bool
	errMsg      string
	mimeType    string
	chunks      [][]byte
	screenshots []Screenshot
	sess        CaptureSession
	cancel      context.CancelFunc
	done        chan struct{}

	interval time.Duration
	now      func() time.Time
}

func NewRecorder(device CaptureDevice) *Recorder {
	return &Recorder{
		device:   device,
		status:   StatusIdle,
		interval: ScreenshotInterval,
		now:      time.Now,
	}
}

// Start begins a combined screen+audio capture. Allowed from idle and from
// interrupted (resume). Returns false with the status set to denied or error
// when the capture cannot start.
func (r *Recorder) Start(ctx context.Context) bool {
	r.mu.Lock()
	// starting covers the window while Open waits on the permission prompt;
	// without it two concurrent Start calls would both pass the status check
	// and open two capture sessions against an exclusive device.
	if r.starting || r.status == StatusRecording {
		r.mu.Unlock()
		return false
	}
	r.starting = true
	// Fresh artifact on every start; nothing is salvaged from a prior run.
	r.chunks = nil
	r.screenshots = nil
	r.errMsg = ""
	mimeType := NegotiateMimeType(r.device)
	r.mimeType = mimeType
	r.mu.Unlock()

	log.Printf("recording: starting with MIME type %q", orDefault(mimeType))

	sess, err := r.device.Open(ctx, CaptureOptions{MimeType: mimeType})
	if err != nil {
		r.mu.Lock()
		r.starting = false
		if errors.Is(err, ErrPermissionDenied) {
			r.status = StatusDenied
			r.errMsg = "Permission to record was denied."
		} else {
			r.status = StatusError
			r.errMsg = "Failed to start recording."
		}
		r.mu.Unlock()
		log.Printf("recording: start failed: %v", err)
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.mu.Lock()
	r.starting = false
	r.sess = sess
	r.cancel = cancel
	r.done = done
	r.status = StatusRecording
	r.mu.Unlock()

	go r.run(runCtx, sess, done)
	return true
}

// Resume restarts capture after an interruption. Identical to Start; a new
// artifact begins.
func (r *Recorder) Resume(ctx context.Context) bool {
	return r.Start(ctx)
}

// run drains chunks, ticks screenshots and watches for external revocation.
// It is the only goroutine touching the live session.
func (r *Recorder) run(ctx context.Context, sess CaptureSession, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Chunks already buffered by the session belong to the artifact.
			r.drain(sess)
			return
		case chunk, ok := <-sess.Chunks():
			if !ok {
				return
			}
			if len(chunk) == 0 {
				continue
			}
			r.mu.Lock()
			r.chunks = append(r.chunks, chunk)
			r.mu.Unlock()
		case <-ticker.C:
			frame, err := sess.Screenshot()
			if err != nil || len(frame) == 0 {
				continue
			}
			r.mu.Lock()
			r.screenshots = append(r.screenshots, Screenshot{Data: frame, TakenAt: r.now()})
			r.mu.Unlock()
		case <-sess.Revoked():
			// User hit "stop sharing" outside the app. Finalize what we have
			// instead of tearing it down mid-chunk.
			r.drain(sess)
			r.interrupt()
			return
		}
	}
}

// drain collects whatever chunks the session already buffered, without
// blocking for new ones.
func (r *Recorder) drain(sess CaptureSession) {
	for {
		select {
		case chunk, ok := <-sess.Chunks():
			if !ok {
				return
			}
			if len(chunk) == 0 {
				continue
			}
			r.mu.Lock()
			r.chunks = append(r.chunks, chunk)
			r.mu.Unlock()
		default:
			return
		}
	}
}

// interrupt transitions recording -> interrupted and releases the device. The
// buffered chunks stay available through Stop or Artifact.
func (r *Recorder) interrupt() {
	r.mu.Lock()
	if r.status != StatusRecording {
		r.mu.Unlock()
		return
	}
	r.status = StatusInterrupted
	sess := r.sess
	cancel := r.cancel
	r.sess = nil
	r.cancel = nil
	r.mu.Unlock()

	log.Printf("recording: interrupted by external permission revocation")
	if cancel != nil {
		cancel()
	}
	if sess != nil {
		_ = sess.Close()
	}
}

// Stop finalizes the capture, assembles the consolidated artifact and returns
// to idle. Safe from any state; from idle it returns an empty artifact.
func (r *Recorder) Stop() Artifact {
	r.mu.Lock()
	sess := r.sess
	cancel := r.cancel
	done := r.done
	r.sess = nil
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sess != nil {
		_ = sess.Close()
	}
	if done != nil {
		<-done
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	art := r.assembleLocked()
	r.status = StatusIdle
	log.Printf("recording: stopped, %d bytes video, %d screenshots, type %s",
		len(art.Video), len(art.Screenshots), art.MimeType)
	return art
}

// Artifact assembles the current buffers without changing state. Used after
// an interruption, where the capture is already finalized but the session is
// not back to idle.
func (r *Recorder) Artifact() Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.assembleLocked()
}

func (r *Recorder) assembleLocked() Artifact {
	var n int
	for _, c := range r.chunks {
		n += len(c)
	}
	video := make([]byte, 0, n)
	for _, c := range r.chunks {
		video = append(video, c...)
	}
	shots := make([]Screenshot, len(r.screenshots))
	copy(shots, r.screenshots)
	mime := r.mimeType
	if mime == "" {
		mime = fallbackMimeType
	}
	return Artifact{Video: video, MimeType: mime, Screenshots: shots}
}

// Close releases everything without producing an artifact. For teardown
// paths; idempotent.
func (r *Recorder) Close() {
	r.mu.Lock()
	sess := r.sess
	cancel := r.cancel
	r.sess = nil
	r.cancel = nil
	if r.status == StatusRecording {
		r.status = StatusIdle
	}
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sess != nil {
		_ = sess.Close()
	}
}

func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// ErrMsg returns the user-facing failure message, empty when healthy.
func (r *Recorder) ErrMsg() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errMsg
}

func orDefault(mime string) string {
	if mime == "" {
		return "default"
	}
	return mime
}
