// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider answers with an OpenAI-compatible chat completion.
type OpenAIProvider struct {
	config *Config
	client *openai.Client
	logger Logger
}

func NewOpenAIProvider(config *Config, logger Logger) *OpenAIProvider {
	llmConfig := openai.DefaultConfig(config.LLMKey)
	if config.LLMBaseURL != "" {
		llmConfig.BaseURL = config.LLMBaseURL
	}
	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(llmConfig),
		logger: logger,
	}
}

func (p *OpenAIProvider) SendMessage(ctx context.Context, text, userID string) (*Reply, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if p.config.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: p.config.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	var reply *Reply
	err := retry(ctx, p.config, p.logger, "completion", func(ctx context.Context) error {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       p.config.Model,
			Messages:    messages,
			Temperature: p.config.Temperature,
			TopP:        p.config.TopP,
			User:        userID,
		})
		if err != nil {
			var apiErr *openai.APIError
			if errors.As(err, &apiErr) {
				p.logger.Warn("completion API error", "status", apiErr.HTTPStatusCode, "type", apiErr.Type, "message", apiErr.Message)
				errType := ErrTypeProvider
				if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
					errType = ErrTypeRateLimit
				}
				return &AIError{Type: errType, Code: apiErr.HTTPStatusCode, Operation: "completion", Message: apiErr.Message, Cause: err}
			}
			return err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return NewResponseError("completion", "empty completion response")
		}
		reply = &Reply{Response: resp.Choices[0].Message.Content, ConversationID: resp.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}
