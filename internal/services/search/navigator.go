package search

import "github.com/iyunix/go-agentdesk/internal/domain"

// Navigator walks a precomputed list of matching message indices. Next and
// Prev wrap around at both ends.
type Navigator struct {
	matches []int
	current int
}

func NewNavigator(matches []int) *Navigator {
	cp := make([]int, len(matches))
	copy(cp, matches)
	return &Navigator{matches: cp}
}

// NavigatorFor searches messages and positions on the first match.
func NavigatorFor(messages []domain.Message, query string) *Navigator {
	return NewNavigator(FindMessageMatches(messages, query))
}

func (n *Navigator) Len() int { return len(n.matches) }

// Position is the zero-based cursor into the match list.
func (n *Navigator) Position() int { return n.current }

// Current returns the message index under the cursor; ok is false when
// nothing matched.
func (n *Navigator) Current() (messageIndex int, ok bool) {
	if len(n.matches) == 0 {
		return -1, false
	}
	return n.matches[n.current], true
}

func (n *Navigator) Next() (int, bool) {
	if len(n.matches) == 0 {
		return -1, false
	}
	n.current = (n.current + 1) % len(n.matches)
	return n.matches[n.current], true
}

func (n *Navigator) Prev() (int, bool) {
	if len(n.matches) == 0 {
		return -1, false
	}
	n.current = (n.current - 1 + len(n.matches)) % len(n.matches)
	return n.matches[n.current], true
}

// Seek moves the cursor to position, wrapping past the end.
func (n *Navigator) Seek(position int) {
	if len(n.matches) == 0 || position < 0 {
		return
	}
	n.current = position % len(n.matches)
}

// Indices returns a copy of the matching message indices.
func (n *Navigator) Indices() []int {
	out := make([]int, len(n.matches))
	copy(out, n.matches)
	return out
}
