// File: internal/services/chat/session.go
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iyunix/go-agentdesk/internal/domain"
	"github.com/iyunix/go-agentdesk/internal/metrics"
	"github.com/iyunix/go-agentdesk/internal/repository/conversation"
	"github.com/iyunix/go-agentdesk/internal/services/ai"
)

// Session drives the send cycle for one user. At most one send is in
// flight; a second one is rejected, never queued.
type Session struct {
	username  string
	config    *Config
	store     ConversationStore
	responder ai.Responder
	logger    Logger
	now       func() time.Time

	sending atomic.Bool

	mu             sync.Mutex
	state          State
	conversationID string
	lastError      string
	externalID     string
}

func NewSession(username string, config *Config, store ConversationStore, responder ai.Responder, logger Logger) *Session {
	if config == nil {
		config = DefaultConfig()
	}
	return &Session{
		username:  username,
		config:    config,
		store:     store,
		responder: responder,
		logger:    logger,
		now:       time.Now,
		state:     StateIdle,
	}
}

func (s *Session) Username() string { return s.username }

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Username:               s.username,
		State:                  s.state,
		ConversationID:         s.conversationID,
		LastError:              s.lastError,
		ExternalConversationID: s.externalID,
	}
}

func (s *Session) setState(state State, reason string) {
	s.mu.Lock()
	s.state = state
	s.lastError = reason
	s.mu.Unlock()
}

// Send appends the user's message, waits for the responder and appends its
// reply. A responder failure becomes an "Error: ..." assistant message and
// the session ends idle either way.
func (s *Session) Send(ctx context.Context, text string) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.Sends.WithLabelValues("invalid").Inc()
		return nil, NewValidationError("send", "message text is required", ErrEmptyMessage)
	}
	if !s.sending.CompareAndSwap(false, true) {
		metrics.Sends.WithLabelValues("rejected").Inc()
		s.logger.Warn("send rejected while another is in flight", "username", s.username)
		return nil, NewBusyError(s.username)
	}
	defer s.sending.Store(false)

	s.setState(StateSending, "")
	final := StateIdle
	var finalReason string
	defer func() { s.setState(final, finalReason) }()

	conv, created, err := s.target(ctx)
	if err != nil {
		final, finalReason = StateIdleWithError, err.Error()
		return nil, err
	}

	userMsg := domain.NewMessage(domain.RoleUser, text, s.now())
	withUser, err := s.store.Append(ctx, s.username, conv.ID, userMsg)
	if err != nil {
		final, finalReason = StateIdleWithError, err.Error()
		return nil, s.storeError("append", conv.ID, err)
	}

	reply, failure := s.ask(ctx, text)

	var replyMsg domain.Message
	if failure != nil {
		finalReason = failureReason(failure)
		final = StateIdleWithError
		replyMsg = domain.NewMessage(domain.RoleAssistant, "Error: "+finalReason, s.now())
		replyMsg.IsError = true
		metrics.Sends.WithLabelValues("responder_error").Inc()
		s.logger.Warn("responder failed", "username", s.username, "conversation_id", conv.ID, "error", failure)
	} else {
		replyMsg = domain.NewMessage(domain.RoleAssistant, reply.Response, s.now())
		metrics.Sends.WithLabelValues("ok").Inc()
		if reply.ConversationID != "" {
			s.mu.Lock()
			s.externalID = reply.ConversationID
			s.mu.Unlock()
		}
	}

	// The reply is appended even if the caller went away; the user message
	// must not be left without its answer.
	updated, err := s.store.Append(context.WithoutCancel(ctx), s.username, conv.ID, replyMsg)
	if errors.Is(err, conversation.ErrConversationNotFound) {
		// Deleted while waiting: the cycle still completes, the reply has nowhere to go.
		metrics.Sends.WithLabelValues("discarded").Inc()
		s.logger.Warn("conversation deleted before reply arrived", "username", s.username, "conversation_id", conv.ID)
		return &SendResult{
			Conversation: withUser,
			User:         userMsg,
			Reply:        replyMsg,
			Created:      created,
			Failed:       failure != nil,
			Discarded:    true,
		}, nil
	}
	if err != nil {
		final, finalReason = StateIdleWithError, err.Error()
		return nil, s.storeError("append", conv.ID, err)
	}

	s.logger.Info("send completed", "username", s.username, "conversation_id", conv.ID, "failed", failure != nil)
	return &SendResult{
		Conversation: updated,
		User:         userMsg,
		Reply:        replyMsg,
		Created:      created,
		Failed:       failure != nil,
	}, nil
}

// target resolves the active conversation, creating and selecting a fresh
// one when nothing live is selected.
func (s *Session) target(ctx context.Context) (domain.Conversation, bool, error) {
	if id := s.store.Active(ctx, s.username); id != domain.DefaultConversationID {
		conv, err := s.store.Get(ctx, s.username, id)
		if err == nil {
			s.remember(conv.ID)
			return conv, false, nil
		}
		if !errors.Is(err, conversation.ErrConversationNotFound) {
			return domain.Conversation{}, false, s.storeError("resolve", id, err)
		}
	}

	conv, err := s.store.Create(ctx, s.username, "")
	if err != nil {
		return domain.Conversation{}, false, s.storeError("create", "", err)
	}
	if err := s.store.SetActive(ctx, s.username, conv.ID); err != nil {
		return domain.Conversation{}, false, s.storeError("select", conv.ID, err)
	}
	s.remember(conv.ID)
	s.logger.Info("conversation created for send", "username", s.username, "conversation_id", conv.ID)
	return conv, true, nil
}

func (s *Session) remember(id string) {
	s.mu.Lock()
	s.conversationID = id
	s.mu.Unlock()
}

func (s *Session) ask(ctx context.Context, text string) (*ai.Reply, error) {
	callCtx := ctx
	if s.config.ResponderTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.config.ResponderTimeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.responder.SendMessage(callCtx, text, s.username)
	metrics.ResponderLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if reply == nil || strings.TrimSpace(reply.Response) == "" {
		return nil, errors.New("responder returned an empty reply")
	}
	return reply, nil
}

func (s *Session) storeError(operation, conversationID string, err error) *ChatError {
	errType := ErrTypeStorage
	switch {
	case errors.Is(err, conversation.ErrCapacityExceeded):
		errType = ErrTypeCapacity
	case errors.Is(err, conversation.ErrConversationNotFound):
		errType = ErrTypeNotFound
	case errors.Is(err, conversation.ErrEmptyMessage), errors.Is(err, conversation.ErrInvalidMessage):
		errType = ErrTypeValidation
	}
	return &ChatError{
		Type:           errType,
		Operation:      operation,
		Message:        err.Error(),
		Username:       s.username,
		ConversationID: conversationID,
		Cause:          err,
	}
}

// failureReason is the text shown inline for a failed reply.
func failureReason(err error) string {
	var aiErr *ai.AIError
	if errors.As(err, &aiErr) && aiErr.Message != "" {
		return aiErr.Message
	}
	return err.Error()
}
