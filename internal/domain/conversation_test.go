package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationDefaults(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewConversation("  ", now)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, PlaceholderTitle, c.Title)
	assert.Empty(t, c.Messages)
	assert.NotNil(t, c.Messages)
	assert.True(t, c.LastMessageTime.Equal(now))
}

func TestConversationIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewConversationID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestAppendMessageDerivesTitleAndPreview(t *testing.T) {
	now := time.Now()
	c := NewConversation("", now)

	c.AppendMessage(NewMessage(RoleUser, "how do I reset my password on the portal?", now.Add(time.Second)))
	assert.Equal(t, "how do I reset my pa", c.Title)
	assert.Empty(t, c.Preview)

	c.AppendMessage(NewMessage(RoleAssistant, "**Open** the settings page and choose reset.", now.Add(2*time.Second)))
	assert.Equal(t, "Open the settings page a...", c.Preview)
	assert.True(t, c.LastMessageTime.Equal(now.Add(2*time.Second).UTC()))

	c.AppendMessage(NewMessage(RoleUser, "another question", now.Add(3*time.Second)))
	assert.Equal(t, "how do I reset my pa", c.Title, "title is only derived once")
}

func TestAppendKeepsCustomTitle(t *testing.T) {
	c := NewConversation("Budget", time.Now())
	c.AppendMessage(NewMessage(RoleUser, "hello", time.Now()))
	assert.Equal(t, "Budget", c.Title)
}

func TestHasPlaceholderTitle(t *testing.T) {
	cases := map[string]bool{
		"New Chat":        true,
		"new chat 12":     true,
		"":                true,
		"New Chat ideas":  false,
		"Quarterly notes": false,
	}
	for title, want := range cases {
		c := Conversation{Title: title}
		assert.Equal(t, want, c.HasPlaceholderTitle(), title)
	}
}

func TestCloneDoesNotShareMessages(t *testing.T) {
	c := NewConversation("x", time.Now())
	c.AppendMessage(NewMessage(RoleUser, "hi", time.Now()))
	cp := c.Clone()
	cp.Messages[0].Text = "changed"
	assert.Equal(t, "hi", c.Messages[0].Text)
}

func TestMessageValidate(t *testing.T) {
	assert.NoError(t, NewMessage(RoleUser, "ok", time.Now()).Validate())
	assert.ErrorIs(t, NewMessage(RoleUser, " \n\t", time.Now()).Validate(), ErrEmptyText)
	assert.ErrorIs(t, NewMessage(Role("system"), "x", time.Now()).Validate(), ErrInvalidRole)
}

func TestTruncateTitleCountsRunes(t *testing.T) {
	title := TruncateTitle(strings.Repeat("é", 30))
	assert.Equal(t, 20, len([]rune(title)))
	assert.Equal(t, "hello world", TruncateTitle("  hello \n world "))
}

func TestPlainTextStripsMarkdown(t *testing.T) {
	got := PlainText("# Title\n\nSome *emphasis* and `code`.\n\n- item one\n- item two")
	assert.Contains(t, got, "Title")
	assert.Contains(t, got, "Some emphasis and code.")
	assert.Contains(t, got, "item one")
	assert.NotContains(t, got, "*")
	assert.NotContains(t, got, "#")
}

func TestDerivePreviewShortReply(t *testing.T) {
	assert.Equal(t, "Sure!", DerivePreview("Sure!"))
}

func TestUserValidation(t *testing.T) {
	u := &User{Username: "alice"}
	require.NoError(t, u.IsValid())
	require.NoError(t, u.HashPassword("correct horse"))
	assert.NoError(t, u.ValidatePassword("correct horse"))
	assert.Error(t, u.ValidatePassword("wrong password"))

	assert.Error(t, (&User{Username: "a b"}).IsValid())
	assert.Error(t, (&User{Username: "al"}).IsValid())
	assert.Error(t, u.HashPassword("short"))
}
