package voice

import (
	"sync"
	"time"
)

// AudioSink receives model audio for playout. The rtc bridge implements this
// on top of the paced Opus writer; tests use an in-memory sink.
type AudioSink interface {
	// Write enqueues a chunk of 24kHz 16-bit mono PCM for gapless playout.
	Write(pcm []byte)
	// Reset drops everything queued but not yet played.
	Reset()
}

// Scheduler queues inbound audio back-to-back and tracks whether anything is
// still scheduled or playing. Chunks arriving in a burst do not overlap: each
// chunk starts at the later of the previous chunk's end and the playback
// clock, so the queue extends seamlessly.
type Scheduler struct {
	mu   sync.Mutex
	sink AudioSink

	// clock is the playback clock, elapsed time since the scheduler started.
	clock func() time.Duration

	nextStart time.Duration
	pending   int
	// gen invalidates in-flight completion timers after a reset so a stale
	// timer cannot decrement the fresh queue.
	gen int

	onSpeaking func(bool)
}

func NewScheduler(sink AudioSink, onSpeaking func(bool)) *Scheduler {
	epoch := time.Now()
	return &Scheduler{
		sink:       sink,
		clock:      func() time.Duration { return time.Since(epoch) },
		onSpeaking: onSpeaking,
	}
}

// Schedule enqueues one chunk lasting d. The speaking indicator flips on with
// the first pending chunk and off when the last one finishes.
func (s *Scheduler) Schedule(pcm []byte, d time.Duration) {
	s.mu.Lock()
	now := s.clock()
	start := s.nextStart
	if start < now {
		start = now
	}
	s.nextStart = start + d
	s.pending++
	wasIdle := s.pending == 1
	gen := s.gen
	s.mu.Unlock()

	s.sink.Write(pcm)
	if wasIdle && s.onSpeaking != nil {
		s.onSpeaking(true)
	}

	time.AfterFunc(start+d-now, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.pending--
		idle := s.pending == 0
		s.mu.Unlock()
		if idle && s.onSpeaking != nil {
			s.onSpeaking(false)
		}
	})
}

// Reset discards all scheduled audio and rewinds the queue cursor so the next
// chunk plays immediately. Used on barge-in and teardown.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.gen++
	hadPending := s.pending > 0
	s.pending = 0
	s.nextStart = 0
	s.mu.Unlock()

	s.sink.Reset()
	if hadPending && s.onSpeaking != nil {
		s.onSpeaking(false)
	}
}

// IsSpeaking reports whether any chunk is scheduled or playing.
func (s *Scheduler) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}
