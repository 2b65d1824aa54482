package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/skillvee/Skillvee-ai-studio/internal/chat"
	"github.com/skillvee/Skillvee-ai-studio/internal/evaluation"
)

const (
	// DefaultTextModel handles chat replies, greetings and PR acknowledgments.
	DefaultTextModel = "gemini-3-flash-preview"
	// DefaultEvalModel handles the long-context evaluation call.
	DefaultEvalModel = "gemini-3-pro-preview"
	// DefaultLiveModel is the realtime audio dialog model.
	DefaultLiveModel = "gemini-2.5-flash-native-audio-preview-12-2025"
)

// Client wraps the Gemini SDK behind the narrow capabilities the rest of the
// service consumes: turn-based text generation, greeting sequences, the
// evaluation scorecard, and live audio sessions.
type Client struct {
	client    *genai.Client
	textModel string
	evalModel string
	liveModel string
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key missing")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{
		client:    c,
		textModel: DefaultTextModel,
		evalModel: DefaultEvalModel,
		liveModel: DefaultLiveModel,
	}, nil
}

// GenerateText produces one coworker reply from a system instruction and the
// prior conversation. Implements chat.TextGenerator.
func (c *Client) GenerateText(ctx context.Context, systemInstruction string, turns []chat.Turn) (string, error) {
	var contents []*genai.Content
	for _, t := range turns {
		var role genai.Role = genai.RoleUser
		if t.Author == chat.AuthorCoworker {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}
	res, err := c.client.Models.GenerateContent(ctx, c.textModel, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return res.Text(), nil
}

// GenerateGreetings asks for the manager's opening sequence as a JSON array of
// short messages. Implements assessment.GreetingGenerator.
func (c *Client) GenerateGreetings(ctx context.Context, prompt string) ([]string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	res, err := c.client.Models.GenerateContent(ctx, c.textModel, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini greeting generation: %w", err)
	}

	var msgs []string
	if err := json.Unmarshal([]byte(stripFences(res.Text())), &msgs); err != nil {
		return nil, fmt.Errorf("parsing greeting array: %w", err)
	}
	return msgs, nil
}

// GenerateEvaluation submits mixed media/text evidence for the session
// scorecard. Implements evaluation.Scorer.
func (c *Client) GenerateEvaluation(ctx context.Context, systemInstruction string, parts []evaluation.Part) (string, error) {
	gparts := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Text != "" {
			gparts = append(gparts, &genai.Part{Text: p.Text})
			continue
		}
		gparts = append(gparts, &genai.Part{InlineData: &genai.Blob{MIMEType: p.MIMEType, Data: p.Data}})
	}
	contents := []*genai.Content{genai.NewContentFromParts(gparts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}
	res, err := c.client.Models.GenerateContent(ctx, c.evalModel, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini evaluation: %w", err)
	}
	return stripFences(res.Text()), nil
}

// stripFences removes a markdown code fence the model sometimes wraps JSON in
// despite the response MIME type.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
