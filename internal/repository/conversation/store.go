// File: internal/repository/conversation/store.go
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iyunix/go-agentdesk/internal/domain"
	"github.com/iyunix/go-agentdesk/internal/metrics"
	"github.com/iyunix/go-agentdesk/internal/repository/kv"
)

// Config tunes a Store.
type Config struct {
	MaxConversations int
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// userState is the in-memory copy of one user's three keys. Once loaded it
// is authoritative for the process; the backend only mirrors it.
type userState struct {
	conversations []domain.Conversation // head is the most recently inserted
	trash         []domain.TrashEntry
	active        string

	pending map[string]bool            // logical keys awaiting a successful write
	touched map[string]map[string]bool // record id -> logical keys holding its unsynced state
}

// Store is a write-through cache of conversations and trash over kv.Store.
type Store struct {
	kv     *kv.Store
	logger Logger
	max    int
	now    func() time.Time

	mu    sync.Mutex
	users map[string]*userState
}

var _ ConversationRepository = (*Store)(nil)

func NewStore(kvStore *kv.Store, logger Logger, cfg Config) *Store {
	if cfg.MaxConversations <= 0 {
		cfg.MaxConversations = DefaultMaxConversations
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store{
		kv:     kvStore,
		logger: logger,
		max:    cfg.MaxConversations,
		now:    cfg.Now,
		users:  make(map[string]*userState),
	}
}

// MaxConversations returns the live cap.
func (s *Store) MaxConversations() int { return s.max }

// state returns the cached state for username, loading it on first use.
// A failed read is not cached: the next call tries again, and nothing is
// flushed for the user until a load succeeds. Callers hold s.mu.
func (s *Store) state(ctx context.Context, username string) (*userState, error) {
	if st, ok := s.users[username]; ok {
		return st, nil
	}
	convs, err := kv.ReadList[domain.Conversation](ctx, s.kv, kv.KeyConversations, username)
	if err != nil {
		return nil, s.loadFailed(username, err)
	}
	trash, err := kv.ReadList[domain.TrashEntry](ctx, s.kv, kv.KeyTrash, username)
	if err != nil {
		return nil, s.loadFailed(username, err)
	}
	active, err := s.kv.ReadString(ctx, kv.KeyCurrentChat, username, domain.DefaultConversationID)
	if err != nil {
		return nil, s.loadFailed(username, err)
	}

	st := &userState{
		conversations: convs,
		trash:         trash,
		active:        active,
		pending:       make(map[string]bool),
		touched:       make(map[string]map[string]bool),
	}
	for i := range st.conversations {
		if st.conversations[i].Messages == nil {
			st.conversations[i].Messages = []domain.Message{}
		}
	}
	s.users[username] = st
	s.logger.Debug("conversation state loaded", "username", username,
		"conversations", len(st.conversations), "trash", len(st.trash))
	return st, nil
}

func (s *Store) loadFailed(username string, err error) error {
	metrics.PersistFailures.WithLabelValues("load").Inc()
	s.logger.Error("conversation state load failed", "username", username, "error", err)
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

func (st *userState) markDirty(logical string, ids ...string) {
	st.pending[logical] = true
	for _, id := range ids {
		if st.touched[id] == nil {
			st.touched[id] = make(map[string]bool)
		}
		st.touched[id][logical] = true
	}
}

// flush writes every pending key. Failures leave the key pending and the
// in-memory state untouched.
func (s *Store) flush(ctx context.Context, username string, st *userState) bool {
	ok := true
	for _, logical := range []string{kv.KeyConversations, kv.KeyTrash, kv.KeyCurrentChat} {
		if !st.pending[logical] {
			continue
		}
		var value interface{}
		switch logical {
		case kv.KeyConversations:
			value = st.conversations
		case kv.KeyTrash:
			value = st.trash
		case kv.KeyCurrentChat:
			value = st.active
		}
		if !s.kv.Save(ctx, logical, username, value) {
			metrics.PersistFailures.WithLabelValues(logical).Inc()
			ok = false
			continue
		}
		delete(st.pending, logical)
		for id, keys := range st.touched {
			delete(keys, logical)
			if len(keys) == 0 {
				delete(st.touched, id)
			}
		}
	}
	return ok
}

func (st *userState) indexOf(id string) int {
	for i := range st.conversations {
		if st.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

func (st *userState) trashIndexOf(id string) int {
	for i := range st.trash {
		if st.trash[i].ID == id {
			return i
		}
	}
	return -1
}

// List returns the user's conversations, most recent first. Equal
// timestamps keep their stored relative order.
func (s *Store) List(ctx context.Context, username string) []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return []domain.Conversation{}
	}

	out := make([]domain.Conversation, len(st.conversations))
	for i := range st.conversations {
		out[i] = st.conversations[i].Clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessageTime.After(out[j].LastMessageTime)
	})
	return out
}

func (s *Store) Get(ctx context.Context, username, id string) (domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return domain.Conversation{}, err
	}

	i := st.indexOf(id)
	if i < 0 {
		return domain.Conversation{}, ErrConversationNotFound
	}
	return st.conversations[i].Clone(), nil
}

func (s *Store) Count(ctx context.Context, username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return 0
	}
	return len(st.conversations)
}

// Create inserts a new conversation at the head of the live list.
func (s *Store) Create(ctx context.Context, username, title string) (domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return domain.Conversation{}, err
	}

	if len(st.conversations) >= s.max {
		metrics.CapacityRejections.WithLabelValues("create").Inc()
		s.logger.Warn("create rejected at capacity", "username", username, "limit", s.max)
		return domain.Conversation{}, &CapacityError{Operation: "create", Limit: s.max}
	}

	conv := domain.NewConversation(title, s.now())
	st.conversations = append([]domain.Conversation{conv}, st.conversations...)
	st.markDirty(kv.KeyConversations, conv.ID)
	s.flush(ctx, username, st)

	s.logger.Info("conversation created", "username", username, "conversation_id", conv.ID)
	return conv.Clone(), nil
}

// Append validates msg and adds it to the conversation.
func (s *Store) Append(ctx context.Context, username, id string, msg domain.Message) (domain.Conversation, error) {
	if err := msg.Validate(); err != nil {
		if errors.Is(err, domain.ErrEmptyText) {
			return domain.Conversation{}, ErrEmptyMessage
		}
		return domain.Conversation{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return domain.Conversation{}, err
	}

	i := st.indexOf(id)
	if i < 0 {
		return domain.Conversation{}, ErrConversationNotFound
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now().UTC()
	}
	st.conversations[i].AppendMessage(msg)
	st.markDirty(kv.KeyConversations, id)
	s.flush(ctx, username, st)

	return st.conversations[i].Clone(), nil
}

// Rename stores the trimmed title, cut to the display bound.
func (s *Store) Rename(ctx context.Context, username, id, title string) (domain.Conversation, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Conversation{}, ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return domain.Conversation{}, err
	}

	i := st.indexOf(id)
	if i < 0 {
		return domain.Conversation{}, ErrConversationNotFound
	}
	st.conversations[i].Title = domain.TruncateTitle(title)
	st.markDirty(kv.KeyConversations, id)
	s.flush(ctx, username, st)

	return st.conversations[i].Clone(), nil
}

// Delete moves the conversation to the trash. Deleting the active
// conversation resets the selection to the default sentinel.
func (s *Store) Delete(ctx context.Context, username, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return err
	}

	i := st.indexOf(id)
	if i < 0 {
		return ErrConversationNotFound
	}

	entry := domain.TrashEntry{Conversation: st.conversations[i].Clone(), DeletedAt: s.now().UTC()}
	if j := st.trashIndexOf(id); j >= 0 {
		st.trash = append(st.trash[:j], st.trash[j+1:]...)
	}
	st.trash = append([]domain.TrashEntry{entry}, st.trash...)
	st.conversations = append(st.conversations[:i], st.conversations[i+1:]...)

	st.markDirty(kv.KeyTrash, id)
	st.markDirty(kv.KeyConversations, id)
	if st.active == id {
		st.active = domain.DefaultConversationID
		st.markDirty(kv.KeyCurrentChat)
	}
	s.flush(ctx, username, st)

	s.logger.Info("conversation moved to trash", "username", username, "conversation_id", id)
	return nil
}

// Trash returns trash entries, most recently deleted first.
func (s *Store) Trash(ctx context.Context, username string) []domain.TrashEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return []domain.TrashEntry{}
	}

	out := make([]domain.TrashEntry, len(st.trash))
	for i := range st.trash {
		out[i] = domain.TrashEntry{Conversation: st.trash[i].Conversation.Clone(), DeletedAt: st.trash[i].DeletedAt}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DeletedAt.After(out[j].DeletedAt)
	})
	return out
}

// Restore moves a trash entry back to the head of the live list. At
// capacity it fails and neither collection changes.
func (s *Store) Restore(ctx context.Context, username, trashID string) (domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return domain.Conversation{}, err
	}

	j := st.trashIndexOf(trashID)
	if j < 0 {
		return domain.Conversation{}, ErrTrashEntryNotFound
	}
	if len(st.conversations) >= s.max {
		metrics.CapacityRejections.WithLabelValues("restore").Inc()
		s.logger.Warn("restore rejected at capacity", "username", username, "limit", s.max)
		return domain.Conversation{}, &CapacityError{Operation: "restore", Limit: s.max}
	}

	conv := st.trash[j].Conversation.Clone()
	st.trash = append(st.trash[:j], st.trash[j+1:]...)
	st.conversations = append([]domain.Conversation{conv}, st.conversations...)

	st.markDirty(kv.KeyConversations, conv.ID)
	st.markDirty(kv.KeyTrash, conv.ID)
	s.flush(ctx, username, st)

	s.logger.Info("conversation restored", "username", username, "conversation_id", conv.ID)
	return conv.Clone(), nil
}

func (s *Store) PermanentlyDelete(ctx context.Context, username, trashID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return err
	}

	j := st.trashIndexOf(trashID)
	if j < 0 {
		return ErrTrashEntryNotFound
	}
	st.trash = append(st.trash[:j], st.trash[j+1:]...)
	st.markDirty(kv.KeyTrash, trashID)
	s.flush(ctx, username, st)

	s.logger.Info("trash entry deleted", "username", username, "conversation_id", trashID)
	return nil
}

// ClearTrash drops every trash entry and returns how many were removed.
func (s *Store) ClearTrash(ctx context.Context, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return 0, err
	}

	n := len(st.trash)
	ids := make([]string, 0, n)
	for _, e := range st.trash {
		ids = append(ids, e.ID)
	}
	st.trash = []domain.TrashEntry{}
	st.markDirty(kv.KeyTrash, ids...)
	s.flush(ctx, username, st)

	s.logger.Info("trash cleared", "username", username, "removed", n)
	return n, nil
}

// PurgeTrash removes entries deleted before olderThan.
func (s *Store) PurgeTrash(ctx context.Context, username string, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return 0, err
	}

	kept := st.trash[:0]
	var removed []string
	for _, e := range st.trash {
		if e.DeletedAt.Before(olderThan) {
			removed = append(removed, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	if len(removed) == 0 {
		return 0, nil
	}
	st.trash = kept
	st.markDirty(kv.KeyTrash, removed...)
	s.flush(ctx, username, st)
	return len(removed), nil
}

// Active returns the selected conversation id, or the default sentinel when
// nothing live is selected.
func (s *Store) Active(ctx context.Context, username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return domain.DefaultConversationID
	}

	if st.active == domain.DefaultConversationID || st.indexOf(st.active) < 0 {
		return domain.DefaultConversationID
	}
	return st.active
}

// SetActive selects a live conversation, or clears the selection with the
// default sentinel.
func (s *Store) SetActive(ctx context.Context, username, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx, username)
	if err != nil {
		return err
	}

	if id == "" {
		id = domain.DefaultConversationID
	}
	if id != domain.DefaultConversationID && st.indexOf(id) < 0 {
		return ErrConversationNotFound
	}
	if st.active == id {
		return nil
	}
	st.active = id
	st.markDirty(kv.KeyCurrentChat)
	s.flush(ctx, username, st)
	return nil
}

// SyncStatus reports whether the record's latest state has been written.
func (s *Store) SyncStatus(username, id string) SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.users[username]
	if !ok || len(st.touched[id]) == 0 {
		return Synced
	}
	return Dirty
}

// Dirty lists record ids whose latest state has not been written yet.
func (s *Store) Dirty(username string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.users[username]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(st.touched))
	for id := range st.touched {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Flush retries pending writes and reports whether everything is synced.
func (s *Store) Flush(ctx context.Context, username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.users[username]
	if !ok {
		return true
	}
	return s.flush(ctx, username, st)
}
