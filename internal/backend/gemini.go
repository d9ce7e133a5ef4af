package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"google.golang.org/genai"
)

type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newGenaiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// GeminiClient talks to Gemini directly, bypassing the platform endpoint.
// The problem context is sent as the system instruction.
type GeminiClient struct {
	models geminiModels
	model  string
	logger *slog.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := newGenaiClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{models: client.Models, model: model, logger: logger}, nil
}

func (c *GeminiClient) SendChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	ctx, span := otel.Tracer("algochat/backend").Start(ctx, "gemini_api_call")
	defer span.End()

	if len(req.Messages) == 0 {
		return ChatResponse{}, fmt.Errorf("messages are required")
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, geminiContents(req.Messages), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt(req.Snapshot()), genai.RoleUser),
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("gemini generate content failed: %w", err)
	}
	recordDuration(ctx, "gemini", time.Since(start))

	text := candidateText(resp)
	c.logger.Debug("gemini replied", "model", c.model, "chars", len(text))
	return ChatResponse{Message: text}, nil
}

func geminiContents(msgs []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		parts := make([]*genai.Part, 0, len(m.Parts))
		for _, p := range m.Parts {
			parts = append(parts, &genai.Part{Text: p.Text})
		}
		if m.Role == RoleModel {
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
		} else {
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: parts})
		}
	}
	return contents
}

// candidateText joins the visible text parts of the first candidate
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
