package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-agentdesk/internal/domain"
)

func conv(id, title, preview string, texts ...string) domain.Conversation {
	c := domain.Conversation{ID: id, Title: title, Preview: preview, LastMessageTime: time.Now()}
	for i, t := range texts {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		c.Messages = append(c.Messages, domain.Message{Role: role, Text: t})
	}
	return c
}

func fixtures() []domain.Conversation {
	return []domain.Conversation{
		conv("1", "Foo planning", "", "unrelated"),
		conv("2", "Groceries", "", "buy milk", "and some FOOd too"),
		conv("3", "Travel", "Booking the foo...", "trip"),
		conv("4", "Nothing", "", "nope"),
	}
}

func TestFilterEmptyQueryReturnsEverythingUntagged(t *testing.T) {
	in := fixtures()
	for _, q := range []string{"", "   "} {
		out := Filter(in, q)
		require.Len(t, out, len(in))
		for i, r := range out {
			assert.Equal(t, in[i].ID, r.Conversation.ID)
			assert.Equal(t, MatchNone, r.Match)
		}
	}
}

func TestFilterTagsProvenance(t *testing.T) {
	out := Filter(fixtures(), "foo")
	require.Len(t, out, 3)

	got := map[string]MatchKind{}
	for _, r := range out {
		got[r.Conversation.ID] = r.Match
	}
	assert.Equal(t, MatchTitleOrPreview, got["1"])
	assert.Equal(t, MatchContent, got["2"])
	assert.Equal(t, MatchTitleOrPreview, got["3"])
	_, found := got["4"]
	assert.False(t, found)
}

func TestFilterKeepsInputOrder(t *testing.T) {
	out := Filter(fixtures(), "o")
	var ids []string
	for _, r := range out {
		ids = append(ids, r.Conversation.ID)
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
}

func TestFindMessageMatches(t *testing.T) {
	msgs := conv("x", "", "", "Alpha", "beta", "ALPHABET", "gamma").Messages
	assert.Equal(t, []int{0, 2}, FindMessageMatches(msgs, "alpha"))
	assert.Empty(t, FindMessageMatches(msgs, "delta"))
	assert.Empty(t, FindMessageMatches(msgs, ""))
}

func TestHighlightEscapesMetacharacters(t *testing.T) {
	text := "call a.b(c then axb(c and A.B(C"
	var spans []Span
	require.NotPanics(t, func() { spans = Highlight(text, "a.b(c") })
	require.Len(t, spans, 2)
	assert.Equal(t, "a.b(c", spans[0].Text)
	assert.Equal(t, "A.B(C", spans[1].Text)
	assert.Equal(t, text[spans[0].Start:spans[0].End], spans[0].Text)

	for _, q := range []string{"(", "*", "[", "\\", "+?"} {
		assert.NotPanics(t, func() { Highlight("a*b(c[d]\\e+?", q) }, q)
	}
}

func TestMatchesAndSpansAgree(t *testing.T) {
	cases := []struct {
		text, query string
	}{
		{"İstanbul", "i"},
		{"sun", "ſ"},
		{"Straße", "SS"},
		{"KELVIN", "\u212a"},
		{"plain ascii", "ASCII"},
	}
	for _, tc := range cases {
		msgs := []domain.Message{{Role: domain.RoleUser, Text: tc.text}}
		matched := len(FindMessageMatches(msgs, tc.query)) == 1
		hasSpans := len(Highlight(tc.text, tc.query)) > 0
		filtered := len(Filter([]domain.Conversation{{ID: "c", Messages: msgs}}, tc.query)) == 1
		assert.Equal(t, hasSpans, matched, "%q in %q", tc.query, tc.text)
		assert.Equal(t, hasSpans, filtered, "%q in %q", tc.query, tc.text)
	}
}

func TestHighlightEmptyQuery(t *testing.T) {
	assert.Empty(t, Highlight("anything", ""))
}

func TestSegments(t *testing.T) {
	segs := Segments("Foo and foo!", "foo")
	assert.Equal(t, []Segment{
		{Text: "Foo", Match: true},
		{Text: " and "},
		{Text: "foo", Match: true},
		{Text: "!"},
	}, segs)

	assert.Equal(t, []Segment{{Text: "plain"}}, Segments("plain", "zzz"))
}

func TestNavigatorWraps(t *testing.T) {
	n := NewNavigator([]int{1, 4, 7})

	cur, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, 1, cur)

	next, _ := n.Next()
	assert.Equal(t, 4, next)
	next, _ = n.Next()
	assert.Equal(t, 7, next)
	next, _ = n.Next()
	assert.Equal(t, 1, next, "next wraps to first")

	prev, _ := n.Prev()
	assert.Equal(t, 7, prev, "prev wraps to last")
	prev, _ = n.Prev()
	assert.Equal(t, 4, prev)
	assert.Equal(t, 1, n.Position())
}

func TestNavigatorEmpty(t *testing.T) {
	n := NavigatorFor(nil, "anything")
	assert.Equal(t, 0, n.Len())
	_, ok := n.Current()
	assert.False(t, ok)
	_, ok = n.Next()
	assert.False(t, ok)
	_, ok = n.Prev()
	assert.False(t, ok)
}

func TestNavigatorSeek(t *testing.T) {
	n := NewNavigator([]int{2, 5})
	n.Seek(1)
	cur, _ := n.Current()
	assert.Equal(t, 5, cur)

	n.Seek(4)
	assert.Equal(t, 0, n.Position())

	n.Seek(-1)
	assert.Equal(t, 0, n.Position())
	assert.Equal(t, []int{2, 5}, n.Indices())
}
