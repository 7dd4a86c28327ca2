// Package search filters conversations by a free-text query and locates
// query occurrences inside messages for navigation and highlighting.
//
// Matching is a case-insensitive literal substring match everywhere, with
// one folding rule shared by filtering, navigation and highlighting; the
// query is never interpreted as a pattern.
package search

import (
	"regexp"
	"strings"

	"github.com/iyunix/go-agentdesk/internal/domain"
)

// MatchKind tells the UI why a conversation survived the filter.
type MatchKind string

const (
	MatchNone           MatchKind = ""
	MatchTitleOrPreview MatchKind = "title"
	MatchContent        MatchKind = "content"
)

// Result pairs a conversation with its match provenance.
type Result struct {
	Conversation domain.Conversation `json:"conversation"`
	Match        MatchKind           `json:"match,omitempty"`
}

// Span is one occurrence of the query inside a text. Offsets are byte
// offsets into the original text.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Segment is a run of text that either matches the query or not.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// Filter keeps conversations whose title, preview or any message contains
// query. An empty query returns every conversation untagged.
func Filter(convs []domain.Conversation, query string) []Result {
	re := pattern(query)
	out := make([]Result, 0, len(convs))
	if re == nil {
		for _, c := range convs {
			out = append(out, Result{Conversation: c})
		}
		return out
	}

	for _, c := range convs {
		if re.MatchString(c.Title) || re.MatchString(c.Preview) {
			out = append(out, Result{Conversation: c, Match: MatchTitleOrPreview})
			continue
		}
		for _, m := range c.Messages {
			if re.MatchString(m.Text) {
				out = append(out, Result{Conversation: c, Match: MatchContent})
				break
			}
		}
	}
	return out
}

// FindMessageMatches returns, in order, the indices of messages containing query.
func FindMessageMatches(messages []domain.Message, query string) []int {
	re := pattern(query)
	matches := []int{}
	if re == nil {
		return matches
	}
	for i, m := range messages {
		if re.MatchString(m.Text) {
			matches = append(matches, i)
		}
	}
	return matches
}

// pattern compiles query as a case-insensitive literal; nil for a blank query.
func pattern(query string) *regexp.Regexp {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(q))
}

// Highlight locates every non-overlapping occurrence of query in text.
func Highlight(text, query string) []Span {
	re := pattern(query)
	spans := []Span{}
	if re == nil {
		return spans
	}
	for _, loc := range re.FindAllStringIndex(text, -1) {
		spans = append(spans, Span{Start: loc[0], End: loc[1], Text: text[loc[0]:loc[1]]})
	}
	return spans
}

// Segments splits text into alternating plain and matching runs. With no
// matches the whole text comes back as a single plain segment.
func Segments(text, query string) []Segment {
	spans := Highlight(text, query)
	if len(spans) == 0 {
		return []Segment{{Text: text}}
	}
	var segs []Segment
	pos := 0
	for _, sp := range spans {
		if sp.Start > pos {
			segs = append(segs, Segment{Text: text[pos:sp.Start]})
		}
		segs = append(segs, Segment{Text: sp.Text, Match: true})
		pos = sp.End
	}
	if pos < len(text) {
		segs = append(segs, Segment{Text: text[pos:]})
	}
	return segs
}
