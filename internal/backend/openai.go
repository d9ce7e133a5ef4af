package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient calls OpenAI-compatible chat completion APIs
type OpenAIClient struct {
	client chatCompleter
	model  string
	logger *slog.Logger
}

func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration, logger *slog.Logger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if logger == nil {
		logger = slog.Default()
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if timeout > 0 {
		config.HTTPClient = newTimeoutClient(timeout)
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger,
	}, nil
}

func (c *OpenAIClient) SendChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	ctx, span := otel.Tracer("algochat/backend").Start(ctx, "openai_api_call")
	defer span.End()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: openAIMessages(req),
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	recordDuration(ctx, "openai", time.Since(start))

	if len(resp.Choices) == 0 {
		return ChatResponse{}, nil
	}
	c.logger.Debug("openai replied", "model", c.model, "total_tokens", resp.Usage.TotalTokens)
	return ChatResponse{Message: resp.Choices[0].Message.Content}, nil
}

func openAIMessages(req ChatRequest) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	out = append(out, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: SystemPrompt(req.Snapshot()),
	})
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Text()})
	}
	return out
}
