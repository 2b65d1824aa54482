package evaluation

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skillvee/Skillvee-ai-studio/internal/chat"
	"github.com/skillvee/Skillvee-ai-studio/internal/recording"
	"github.com/skillvee/Skillvee-ai-studio/internal/roster"
)

type fakeScorer struct {
	json  string
	err   error
	calls int32
	parts []Part
}

func (f *fakeScorer) GenerateEvaluation(_ context.Context, _ string, parts []Part) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.parts = parts
	if f.err != nil {
		return "", f.err
	}
	return f.json, nil
}

func at(t *testing.T, clock string) time.Time {
	t.Helper()
	ts, err := time.Parse("15:04:05", clock)
	if err != nil {
		t.Fatalf("bad clock %q: %v", clock, err)
	}
	return ts
}

func chatMsg(author chat.Author, sender, text string, ts time.Time) chat.Message {
	return chat.Message{Author: author, SenderName: sender, Text: text, Timestamp: ts}
}

func TestPipeline_MockResultWithoutScorerOrEvidence(t *testing.T) {
	p := NewPipeline(nil)
	p.mockDelay = 10 * time.Millisecond

	start := time.Now()
	p.Run(context.Background(), Evidence{})
	if elapsed := time.Since(start); elapsed < p.mockDelay {
		t.Fatalf("mock result returned before the simulated delay (%v)", elapsed)
	}
	if p.Status() != StatusCompleted {
		t.Fatalf("status = %q", p.Status())
	}
	r := p.Result()
	if r == nil || r.OverallScore != 4.2 || r.Recommendation != "hire" {
		t.Fatalf("unexpected mock result: %+v", r)
	}
	if len(r.DimensionScores) != 8 {
		t.Fatalf("mock must cover all 8 dimensions, got %d", len(r.DimensionScores))
	}
	for _, dim := range Dimensions {
		if _, ok := r.DimensionScores[dim]; !ok {
			t.Fatalf("mock missing dimension %s", dim)
		}
	}
}

func TestPipeline_VideoExcludesScreenshots(t *testing.T) {
	scorer := &fakeScorer{json: `{"overallScore": 3.0}`}
	p := NewPipeline(scorer)

	ev := Evidence{
		Video:         []byte("videobytes"),
		VideoMIMEType: "video/webm;codecs=vp9,opus",
		Screenshots: []recording.Screenshot{
			{Data: []byte("shot1")}, {Data: []byte("shot2")},
		},
	}
	p.Run(context.Background(), ev)

	if p.Status() != StatusCompleted {
		t.Fatalf("status = %q, err = %v", p.Status(), p.Err())
	}
	var media []Part
	for _, part := range scorer.parts {
		if part.Text == "" {
			media = append(media, part)
		}
	}
	if len(media) != 1 {
		t.Fatalf("expected video as sole visual evidence, got %d media parts", len(media))
	}
	if media[0].MIMEType != "video/webm;codecs=vp9,opus" || string(media[0].Data) != "videobytes" {
		t.Fatalf("unexpected media part: %+v", media[0])
	}
}

func TestPipeline_ScreenshotSubsampleStride(t *testing.T) {
	scorer := &fakeScorer{json: `{}`}
	p := NewPipeline(scorer)

	shots := make([]recording.Screenshot, 47)
	for i := range shots {
		shots[i] = recording.Screenshot{Data: []byte{byte(i)}}
	}
	p.Run(context.Background(), Evidence{Screenshots: shots})

	var media []Part
	for _, part := range scorer.parts {
		if part.Text == "" {
			media = append(media, part)
		}
	}
	// 47 shots, stride ceil(47/15)=4 -> indices 0,4,8,...,44 = 12 shots.
	if len(media) != 12 {
		t.Fatalf("expected 12 subsampled screenshots, got %d", len(media))
	}
	if media[1].Data[0] != 4 {
		t.Fatalf("stride not even: second shot index %d", media[1].Data[0])
	}
}

func TestPipeline_FailureIsTerminalAndNotRetried(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("503")}
	p := NewPipeline(scorer)
	ev := Evidence{Screenshots: []recording.Screenshot{{Data: []byte("x")}}}

	p.Run(context.Background(), ev)
	if p.Status() != StatusFailed || p.Err() == nil {
		t.Fatalf("status = %q, err = %v", p.Status(), p.Err())
	}

	// Re-invocation from a terminal state is a no-op.
	p.Run(context.Background(), ev)
	if atomic.LoadInt32(&scorer.calls) != 1 {
		t.Fatalf("pipeline retried itself: %d calls", scorer.calls)
	}
}

func TestPipeline_MalformedResponseFails(t *testing.T) {
	scorer := &fakeScorer{json: "not json at all"}
	p := NewPipeline(scorer)
	p.Run(context.Background(), Evidence{Screenshots: []recording.Screenshot{{Data: []byte("x")}}})
	if p.Status() != StatusFailed {
		t.Fatalf("status = %q", p.Status())
	}
}

func TestPipeline_MissingListsDefaultEmpty(t *testing.T) {
	scorer := &fakeScorer{json: `{
		"overallScore": 4.0,
		"recommendation": "maybe",
		"dimensionScores": {"COMMUNICATION": {"score": 3, "rationale": "ok"}}
	}`}
	p := NewPipeline(scorer)
	p.Run(context.Background(), Evidence{Screenshots: []recording.Screenshot{{Data: []byte("x")}}})

	r := p.Result()
	if r == nil {
		t.Fatalf("no result, err = %v", p.Err())
	}
	if r.OverallGreenFlags == nil || r.OverallRedFlags == nil || r.KeyHighlights == nil {
		t.Fatalf("top-level lists not defaulted: %+v", r)
	}
	d := r.DimensionScores["COMMUNICATION"]
	if d.GreenFlags == nil || d.RedFlags == nil || d.Timestamps == nil {
		t.Fatalf("dimension lists not defaulted: %+v", d)
	}
}

func TestMergeTranscript_ChronologicalAcrossCounterparts(t *testing.T) {
	histories := map[string][]chat.Message{
		"cw_peer": {
			chatMsg(chat.AuthorCandidate, "You", "first to mike", at(t, "10:00:00")),
			chatMsg(chat.AuthorCoworker, "Mike Ross", "hey", at(t, "10:00:05")),
		},
		"cw_manager": {
			chatMsg(chat.AuthorCoworker, "Alex Rivera", "welcome", at(t, "09:59:00")),
			chatMsg(chat.AuthorCandidate, "You", "pr is up", at(t, "10:00:02")),
		},
	}
	merged := MergeTranscript(histories)
	want := []string{"welcome", "first to mike", "pr is up", "hey"}
	if len(merged) != len(want) {
		t.Fatalf("merged %d messages", len(merged))
	}
	for i, text := range want {
		if merged[i].Text != text {
			t.Fatalf("position %d = %q, want %q", i, merged[i].Text, text)
		}
	}

	out := FormatTranscript(merged)
	if !strings.Contains(out, "[09:59:00] Alex Rivera: welcome") {
		t.Fatalf("line format wrong: %q", out)
	}
}

// Full-session property: ordinary messages to a peer, then the PR link to the
// manager; the evaluation transcript carries every candidate message and
// every generated reply, interleaved by timestamp.
func TestEndToEnd_TranscriptCarriesWholeSession(t *testing.T) {
	store := chat.NewStore()
	team := roster.Default()

	llm := &scriptedLLM{replies: []string{"r1", "r2", "r3", "Got it! Calling you now."}}
	o := chat.NewOrchestrator(store, team, llm, "Jo", func(string) {})

	for _, text := range []string{"how do I run tests?", "where is the redis config?", "thanks!"} {
		o.SendUserMessage(context.Background(), "cw_peer", text, "")
	}
	o.SendUserMessage(context.Background(), "cw_manager", "done: https://github.com/acme/repo/pull/7", "")

	scorer := &fakeScorer{json: `{}`}
	p := NewPipeline(scorer)
	p.Run(context.Background(), Evidence{Histories: store.AllHistories()})

	var transcript string
	for _, part := range scorer.parts {
		if part.Text != "" {
			transcript = part.Text
		}
	}
	for _, needle := range []string{
		"how do I run tests?", "where is the redis config?", "thanks!",
		"done: https://github.com/acme/repo/pull/7",
		"r1", "r2", "r3", "Got it! Calling you now.",
	} {
		if !strings.Contains(transcript, needle) {
			t.Fatalf("transcript missing %q:\n%s", needle, transcript)
		}
	}
	// Interleaving: the manager exchange comes after the peer exchange.
	if strings.Index(transcript, "thanks!") > strings.Index(transcript, "done: https") {
		t.Fatalf("transcript not in chronological order:\n%s", transcript)
	}
}

type scriptedLLM struct {
	replies []string
	i       int
}

func (s *scriptedLLM) GenerateText(context.Context, string, []chat.Turn) (string, error) {
	if s.i >= len(s.replies) {
		return "...", nil
	}
	r := s.replies[s.i]
	s.i++
	return r, nil
}
