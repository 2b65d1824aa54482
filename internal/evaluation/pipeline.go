package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/skillvee/Skillvee-ai-studio/internal/chat"
	"github.com/skillvee/Skillvee-ai-studio/internal/prompts"
	"github.com/skillvee/Skillvee-ai-studio/internal/recording"
)

// maxScreenshots bounds the subsample submitted when no video exists.
const maxScreenshots = 15

const screenshotMIMEType = "image/jpeg"

// Evidence is everything the pipeline can submit for scoring.
type Evidence struct {
	Video         []byte
	VideoMIMEType string
	Screenshots   []recording.Screenshot
	// Histories is every counterpart's conversation, keyed by coworker id.
	Histories map[string][]chat.Message
}

func (e Evidence) empty() bool {
	if len(e.Video) > 0 || len(e.Screenshots) > 0 {
		return false
	}
	for _, h := range e.Histories {
		if len(h) > 0 {
			return false
		}
	}
	return true
}

// Pipeline scores one session exactly once. Construct a new pipeline to
// retry; terminal states never transition.
type Pipeline struct {
	scorer Scorer

	mu     sync.Mutex
	status Status
	result *Result
	err    error

	mockDelay time.Duration
}

// NewPipeline wires the scoring capability. scorer may be nil, in which case
// the canned mock result is produced after a simulated delay.
func NewPipeline(scorer Scorer) *Pipeline {
	return &Pipeline{scorer: scorer, status: StatusPending, mockDelay: MockDelay}
}

func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Result returns the scorecard once COMPLETED, nil otherwise.
func (p *Pipeline) Result() *Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Err returns the failure once FAILED, nil otherwise.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Run executes the evaluation. Only the first call on a PENDING pipeline does
// anything; re-invocation from PROCESSING or a terminal state is a no-op.
func (p *Pipeline) Run(ctx context.Context, ev Evidence) {
	p.mu.Lock()
	if p.status != StatusPending {
		p.mu.Unlock()
		return
	}
	p.status = StatusProcessing
	p.mu.Unlock()

	if p.scorer == nil || ev.empty() {
		log.Printf("evaluation: no scorer or no evidence, using mock result")
		select {
		case <-ctx.Done():
			p.fail(ctx.Err())
			return
		case <-time.After(p.mockDelay):
		}
		mock := MockResult()
		p.complete(&mock)
		return
	}

	raw, err := p.scorer.GenerateEvaluation(ctx, prompts.EvaluationSystemInstruction, BuildParts(ev))
	if err != nil {
		p.fail(fmt.Errorf("evaluation call: %w", err))
		return
	}

	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		p.fail(fmt.Errorf("decoding evaluation: %w", err))
		return
	}
	normalize(&result)
	p.complete(&result)
}

func (p *Pipeline) complete(r *Result) {
	p.mu.Lock()
	p.status = StatusCompleted
	p.result = r
	p.mu.Unlock()
}

func (p *Pipeline) fail(err error) {
	p.mu.Lock()
	p.status = StatusFailed
	p.err = err
	p.mu.Unlock()
	log.Printf("evaluation: failed: %v", err)
}

// BuildParts assembles the capability request: visual evidence first, then
// the merged transcript. A non-empty video is the sole visual evidence;
// screenshots are only submitted in its absence, subsampled evenly to at most
// maxScreenshots.
func BuildParts(ev Evidence) []Part {
	var parts []Part
	if len(ev.Video) > 0 {
		mime := ev.VideoMIMEType
		if mime == "" {
			mime = "video/webm"
		}
		parts = append(parts, Part{MIMEType: mime, Data: ev.Video})
	} else if len(ev.Screenshots) > 0 {
		step := (len(ev.Screenshots) + maxScreenshots - 1) / maxScreenshots
		for i, s := range ev.Screenshots {
			if i%step == 0 {
				parts = append(parts, Part{MIMEType: screenshotMIMEType, Data: s.Data})
			}
		}
	}

	transcript := FormatTranscript(MergeTranscript(ev.Histories))
	parts = append(parts, Part{Text: fmt.Sprintf(
		"Here is the chat transcript of the session:\n\n%s\n\nPlease evaluate the candidate based on the visual/audio evidence and this conversation.",
		transcript)})
	return parts
}

// MergeTranscript flattens every counterpart's history into one sequence
// ordered by timestamp. The per-conversation order is already correct; the
// sort only interleaves across counterparts. Stable so equal timestamps keep
// their append order.
func MergeTranscript(histories map[string][]chat.Message) []chat.Message {
	var all []chat.Message
	for _, h := range histories {
		all = append(all, h...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all
}

// FormatTranscript renders one line per message, labeled with clock time and
// sender display name.
func FormatTranscript(msgs []chat.Message) string {
	var b []byte
	for i, m := range msgs {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, fmt.Sprintf("[%s] %s: %s", m.Timestamp.Format("15:04:05"), m.SenderName, m.Text)...)
	}
	return string(b)
}

// normalize defaults every list-valued field the capability omitted to an
// empty value, so consumers never see null where a list belongs.
func normalize(r *Result) {
	if r.DimensionScores == nil {
		r.DimensionScores = map[string]DimensionScore{}
	}
	for k, d := range r.DimensionScores {
		if d.GreenFlags == nil {
			d.GreenFlags = []string{}
		}
		if d.RedFlags == nil {
			d.RedFlags = []string{}
		}
		if d.Timestamps == nil {
			d.Timestamps = []string{}
		}
		r.DimensionScores[k] = d
	}
	if r.OverallGreenFlags == nil {
		r.OverallGreenFlags = []string{}
	}
	if r.OverallRedFlags == nil {
		r.OverallRedFlags = []string{}
	}
	if r.KeyHighlights == nil {
		r.KeyHighlights = []KeyHighlight{}
	}
}
