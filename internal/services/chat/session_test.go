package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-agentdesk/internal/domain"
	"github.com/iyunix/go-agentdesk/internal/repository/conversation"
	"github.com/iyunix/go-agentdesk/internal/repository/kv"
	"github.com/iyunix/go-agentdesk/internal/services/ai"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

// fakeResponder answers with reply or err. When gate is set, each call
// signals started and blocks until gate is closed or ctx ends.
type fakeResponder struct {
	reply   string
	err     error
	gate    chan struct{}
	started chan struct{}

	mu    sync.Mutex
	calls []string
}

func (f *fakeResponder) SendMessage(ctx context.Context, text, userID string) (*ai.Reply, error) {
	f.mu.Lock()
	f.calls = append(f.calls, userID+":"+text)
	f.mu.Unlock()

	if f.gate != nil {
		f.started <- struct{}{}
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Reply{Response: f.reply, ConversationID: "ext-1"}, nil
}

func newConversationStore(t *testing.T, max int) *conversation.Store {
	t.Helper()
	kvStore := kv.NewStore(kv.NewMemoryBackend(), nopLogger{})
	return conversation.NewStore(kvStore, nopLogger{}, conversation.Config{MaxConversations: max})
}

func TestSend_FirstMessageCreatesConversation(t *testing.T) {
	ctx := context.Background()
	store := newConversationStore(t, 0)
	responder := &fakeResponder{reply: "Hi! How can I help?"}
	session := NewSession("alice", nil, store, responder, nopLogger{})

	result, err := session.Send(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.False(t, result.Failed)

	list := store.List(ctx, "alice")
	require.Len(t, list, 1)
	conv := list[0]
	assert.Equal(t, "hello", conv.Title)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, domain.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "hello", conv.Messages[0].Text)
	assert.Equal(t, domain.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, "Hi! How can I help?", conv.Messages[1].Text)

	assert.Equal(t, conv.ID, store.Active(ctx, "alice"))
	assert.Equal(t, []string{"alice:hello"}, responder.calls)

	snap := session.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, conv.ID, snap.ConversationID)
	assert.Equal(t, "ext-1", snap.ExternalConversationID)
}

func TestSend_ReusesActiveConversation(t *testing.T) {
	ctx := context.Background()
	store := newConversationStore(t, 0)
	session := NewSession("alice", nil, store, &fakeResponder{reply: "ok"}, nopLogger{})

	first, err := session.Send(ctx, "one")
	require.NoError(t, err)
	second, err := session.Send(ctx, "two")
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Conversation.ID, second.Conversation.ID)
	assert.Len(t, second.Conversation.Messages, 4)
	assert.Equal(t, 1, store.Count(ctx, "alice"))
}

func TestSend_EmptyMessageRejected(t *testing.T) {
	store := newConversationStore(t, 0)
	responder := &fakeResponder{reply: "ok"}
	session := NewSession("alice", nil, store, responder, nopLogger{})

	_, err := session.Send(context.Background(), "   \n")
	require.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, responder.calls)
	assert.Zero(t, store.Count(context.Background(), "alice"))
}

func TestSend_BackToBackSecondRejected(t *testing.T) {
	ctx := context.Background()
	store := newConversationStore(t, 0)
	responder := &fakeResponder{reply: "first answer", gate: make(chan struct{}), started: make(chan struct{}, 1)}
	session := NewSession("alice", nil, store, responder, nopLogger{})

	done := make(chan error, 1)
	go func() {
		_, err := session.Send(ctx, "first")
		done <- err
	}()
	<-responder.started
	assert.Equal(t, StateSending, session.Snapshot().State)

	_, err := session.Send(ctx, "second")
	require.ErrorIs(t, err, ErrSendInProgress)
	var chatErr *ChatError
	require.ErrorAs(t, err, &chatErr)
	assert.Equal(t, ErrTypeBusy, chatErr.Type)

	close(responder.gate)
	require.NoError(t, <-done)

	list := store.List(ctx, "alice")
	require.Len(t, list, 1)
	require.Len(t, list[0].Messages, 2)
	assert.Equal(t, "first", list[0].Messages[0].Text)
	assert.Equal(t, "first answer", list[0].Messages[1].Text)
	assert.Equal(t, StateIdle, session.Snapshot().State)
}

func TestSend_ConversationDeletedWhileSending(t *testing.T) {
	ctx := context.Background()
	store := newConversationStore(t, 0)
	responder := &fakeResponder{reply: "too late", gate: make(chan struct{}), started: make(chan struct{}, 1)}
	session := NewSession("alice", nil, store, responder, nopLogger{})

	type outcome struct {
		result *SendResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := session.Send(ctx, "hello")
		done <- outcome{result, err}
	}()
	<-responder.started

	id := store.Active(ctx, "alice")
	require.NoError(t, store.Delete(ctx, "alice", id))
	close(responder.gate)

	got := <-done
	require.NoError(t, got.err)
	assert.True(t, got.result.Discarded)
	assert.Equal(t, "too late", got.result.Reply.Text)
	require.Len(t, got.result.Conversation.Messages, 1)
	assert.Equal(t, "hello", got.result.Conversation.Messages[0].Text)
	assert.Equal(t, StateIdle, session.Snapshot().State)

	assert.Empty(t, store.List(ctx, "alice"))
	trash := store.Trash(ctx, "alice")
	require.Len(t, trash, 1)
	assert.Len(t, trash[0].Messages, 1)

	_, err := session.Send(ctx, "again")
	require.NoError(t, err, "the session is usable afterwards")
}

func TestSend_ResponderFailureAppendsErrorAfterUserMessage(t *testing.T) {
	ctx := context.Background()
	store := newConversationStore(t, 0)
	responder := &fakeResponder{err: &ai.AIError{Type: ai.ErrTypeNetwork, Operation: "agent", Message: "connection refused"}}
	session := NewSession("alice", nil, store, responder, nopLogger{})

	result, err := session.Send(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, result.Failed)

	msgs := result.Conversation.Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.True(t, msgs[1].IsError)
	assert.Equal(t, "Error: connection refused", msgs[1].Text)

	snap := session.Snapshot()
	assert.Equal(t, StateIdleWithError, snap.State)
	assert.Equal(t, "connection refused", snap.LastError)

	// The session is usable again.
	responder.err = nil
	responder.reply = "back"
	_, err = session.Send(ctx, "retry")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, session.Snapshot().State)
}

func TestSend_ResponderTimeoutBecomesErrorMessage(t *testing.T) {
	ctx := context.Background()
	store := newConversationStore(t, 0)
	responder := &fakeResponder{reply: "never", gate: make(chan struct{}), started: make(chan struct{}, 1)}
	session := NewSession("alice", &Config{ResponderTimeout: 20 * time.Millisecond}, store, responder, nopLogger{})

	result, err := session.Send(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, result.Failed)
	assert.True(t, result.Reply.IsError)
	assert.Contains(t, result.Reply.Text, "Error: ")
	assert.Equal(t, StateIdleWithError, session.Snapshot().State)
}

func TestSend_CapacityBlocksLazyCreate(t *testing.T) {
	ctx := context.Background()
	store := newConversationStore(t, 1)
	_, err := store.Create(ctx, "alice", "only")
	require.NoError(t, err)

	responder := &fakeResponder{reply: "ok"}
	session := NewSession("alice", nil, store, responder, nopLogger{})

	_, err = session.Send(ctx, "hello")
	require.ErrorIs(t, err, conversation.ErrCapacityExceeded)
	var chatErr *ChatError
	require.ErrorAs(t, err, &chatErr)
	assert.Equal(t, ErrTypeCapacity, chatErr.Type)

	assert.Empty(t, responder.calls)
	assert.Equal(t, 1, store.Count(ctx, "alice"))
	assert.Equal(t, StateIdleWithError, session.Snapshot().State)
}

func TestSend_StaleActiveSelectionStartsFresh(t *testing.T) {
	ctx := context.Background()
	store := newConversationStore(t, 0)
	conv, err := store.Create(ctx, "alice", "")
	require.NoError(t, err)
	require.NoError(t, store.SetActive(ctx, "alice", conv.ID))
	require.NoError(t, store.Delete(ctx, "alice", conv.ID))

	session := NewSession("alice", nil, store, &fakeResponder{reply: "ok"}, nopLogger{})
	result, err := session.Send(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.NotEqual(t, conv.ID, result.Conversation.ID)
}

func TestManager_OneSessionPerUser(t *testing.T) {
	m := NewManager(nil, newConversationStore(t, 0), &fakeResponder{reply: "ok"}, nopLogger{})
	a := m.Session("alice")
	assert.Same(t, a, m.Session("alice"))
	assert.NotSame(t, a, m.Session("bob"))
	assert.Equal(t, "bob", m.Session("bob").Username())
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "boom", failureReason(errors.New("boom")))
	assert.Equal(t, "rate limited", failureReason(&ai.AIError{Type: ai.ErrTypeRateLimit, Message: "rate limited"}))
}
