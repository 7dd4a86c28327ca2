// File: internal/services/ai/agent_provider.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// agentRequest is the body posted to the agent API.
type agentRequest struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// AgentResponse is the agent API reply. Deployments disagree on field names,
// so every known spelling is optional and Text/Conversation pick one by a
// fixed precedence.
type AgentResponse struct {
	Response          *string `json:"response,omitempty"`
	Reply             *string `json:"reply,omitempty"`
	Answer            *string `json:"answer,omitempty"`
	Message           *string `json:"message,omitempty"`
	ConversationID    *string `json:"conversationId,omitempty"`
	ConversationIDAlt *string `json:"conversation_id,omitempty"`
	Error             *string `json:"error,omitempty"`
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return *v
		}
	}
	return ""
}

// Text applies the precedence response > reply > answer > message.
func (r *AgentResponse) Text() string {
	return firstNonEmpty(r.Response, r.Reply, r.Answer, r.Message)
}

// Conversation applies the precedence conversationId > conversation_id.
func (r *AgentResponse) Conversation() string {
	return firstNonEmpty(r.ConversationID, r.ConversationIDAlt)
}

// AgentProvider posts messages to an HTTP agent endpoint.
type AgentProvider struct {
	config *Config
	client *http.Client
	logger Logger
}

func NewAgentProvider(config *Config, client *http.Client, logger Logger) *AgentProvider {
	if client == nil {
		client = &http.Client{}
	}
	return &AgentProvider{config: config, client: client, logger: logger}
}

func (p *AgentProvider) SendMessage(ctx context.Context, text, userID string) (*Reply, error) {
	body, err := json.Marshal(agentRequest{Message: text, UserID: userID})
	if err != nil {
		return nil, NewProviderError("agent", "could not encode request", err)
	}

	var reply *Reply
	err = retry(ctx, p.config, p.logger, "agent", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.AgentURL, bytes.NewReader(body))
		if err != nil {
			return NewProviderError("agent", "could not build request", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if p.config.AgentKey != "" {
			req.Header.Set("Authorization", "Bearer "+p.config.AgentKey)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return err
		}

		var parsed AgentResponse
		decodeErr := json.Unmarshal(raw, &parsed)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg := fmt.Sprintf("agent returned status %d", resp.StatusCode)
			if decodeErr == nil && parsed.Error != nil && *parsed.Error != "" {
				msg = fmt.Sprintf("%s: %s", msg, *parsed.Error)
			}
			errType := ErrTypeProvider
			if resp.StatusCode == http.StatusTooManyRequests {
				errType = ErrTypeRateLimit
			}
			return &AIError{Type: errType, Code: resp.StatusCode, Operation: "agent", Message: msg}
		}
		if decodeErr != nil {
			return &AIError{Type: ErrTypeResponse, Code: resp.StatusCode, Operation: "agent", Message: "malformed agent response", Cause: decodeErr}
		}
		answer := parsed.Text()
		if answer == "" {
			if parsed.Error != nil && *parsed.Error != "" {
				return NewResponseError("agent", *parsed.Error)
			}
			return NewResponseError("agent", "agent response carried no text")
		}
		reply = &Reply{Response: answer, ConversationID: parsed.Conversation()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}
