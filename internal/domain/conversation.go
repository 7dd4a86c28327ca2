// File: internal/domain/conversation.go
package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultConversationID is the sentinel stored as the active conversation
	// when nothing is selected.
	DefaultConversationID = "default"

	// PlaceholderTitle is given to conversations created before any message exists.
	PlaceholderTitle = "New Chat"

	// TitleMaxRunes bounds stored titles.
	TitleMaxRunes = 20

	// PreviewMaxRunes bounds the preview before the ellipsis is added.
	PreviewMaxRunes = 24
)

// Conversation is a titled, ordered sequence of messages owned by one user.
type Conversation struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Preview         string    `json:"preview"`
	Messages        []Message `json:"messages"`
	LastMessageTime time.Time `json:"lastMessageTime"`
}

// TrashEntry is a deleted conversation snapshot waiting for restore or purge.
type TrashEntry struct {
	Conversation
	DeletedAt time.Time `json:"deletedAt"`
}

// NewConversationID returns a time-ordered unique id.
func NewConversationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		return uuid.NewString()
	}
	return id.String()
}

// NewConversation builds an empty conversation stamped at now.
func NewConversation(title string, now time.Time) Conversation {
	title = strings.TrimSpace(title)
	if title == "" {
		title = PlaceholderTitle
	}
	return Conversation{
		ID:              NewConversationID(),
		Title:           TruncateTitle(title),
		Messages:        []Message{},
		LastMessageTime: now.UTC(),
	}
}

// placeholderPattern matches "New Chat" and numbered variants like "New Chat 3".
var placeholderPattern = regexp.MustCompile(`(?i)^new chat(\s+\d+)?$`)

// HasPlaceholderTitle reports whether the title was never derived from content.
func (c *Conversation) HasPlaceholderTitle() bool {
	t := strings.TrimSpace(c.Title)
	return t == "" || placeholderPattern.MatchString(t)
}

// AppendMessage adds msg and refreshes the derived fields.
func (c *Conversation) AppendMessage(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.LastMessageTime = msg.Timestamp.UTC()
	if msg.Role == RoleAssistant {
		c.Preview = DerivePreview(msg.Text)
	}
	if msg.Role == RoleUser && c.HasPlaceholderTitle() {
		c.Title = TruncateTitle(msg.Text)
	}
}

// Clone returns a deep copy so callers never share the message slice.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
