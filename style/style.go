// Package style tags the words of a paragraph with the type style they are drawn in.
package style

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

type Style int

const (
	Body Style = iota
	Bold
	Italic
)

func (s Style) String() string {
	switch s {
	case Body:
		return "body"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// StyledWord is a single whitespace-delimited token and the style it is drawn in.
type StyledWord struct {
	Text  string
	Style Style
}

// MatchFunc reports the first match in text starting at or after byte offset from.
// start and end are absolute byte offsets into text.
type MatchFunc func(text string, from int) (start int, end int, ok bool)

// EmphasisRule pairs a matcher with the style its matches are drawn in.
type EmphasisRule struct {
	Match MatchFunc
	Style Style
}

// Literal matches phrase case-insensitively. Whitespace inside the phrase matches
// any run of whitespace. An empty phrase never matches.
func Literal(phrase string, s Style) EmphasisRule {
	return EmphasisRule{Match: literalMatcher(phrase), Style: s}
}

// Pattern compiles expr as a case-insensitive regular expression.
func Pattern(expr string, s Style) (EmphasisRule, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return EmphasisRule{}, fmt.Errorf("invalid emphasis pattern %q: %w", expr, err)
	}
	return EmphasisRule{Match: regexpMatcher(re), Style: s}, nil
}

// MustPattern is Pattern for expressions known at compile time. Panics on a bad expression.
func MustPattern(expr string, s Style) EmphasisRule {
	r, err := Pattern(expr, s)
	if err != nil {
		panic(err)
	}
	return r
}

func literalMatcher(phrase string) MatchFunc {
	fields := strings.Fields(phrase)
	if len(fields) == 0 {
		return func(string, int) (int, int, bool) { return 0, 0, false }
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	re := regexp.MustCompile("(?i)" + strings.Join(quoted, `\s+`))
	return regexpMatcher(re)
}

func regexpMatcher(re *regexp.Regexp) MatchFunc {
	return func(text string, from int) (int, int, bool) {
		for from <= len(text) {
			loc := re.FindStringIndex(text[from:])
			if loc == nil {
				return 0, 0, false
			}
			start, end := from+loc[0], from+loc[1]
			if end > start {
				return start, end, true
			}
			// zero-width match; look past it
			from = start + 1
		}
		return 0, 0, false
	}
}

type span struct {
	start, end int
	style      Style
}

// Classify splits text into words and tags each one with a style.
//
// The scan repeatedly picks the earliest match among the italic phrase and every
// rule. At an equal start offset the rule listed first wins, and any rule wins
// over the italic phrase. The words and their order are exactly those of
// strings.Fields(text); a word touched by a match takes the style of the first
// match that touches it, every other word is Body.
func Classify(text string, rules []EmphasisRule, italicPhrase string) []StyledWord {
	spans := scan(text, rules, literalMatcher(italicPhrase))
	var words []StyledWord
	si := 0
	for _, w := range fieldOffsets(text) {
		for si < len(spans) && spans[si].end <= w.start {
			si++
		}
		s := Body
		if si < len(spans) && spans[si].start < w.end {
			s = spans[si].style
		}
		words = append(words, StyledWord{Text: text[w.start:w.end], Style: s})
	}
	return words
}

// scan returns the emphasised spans of text in order; spans never overlap.
func scan(text string, rules []EmphasisRule, italic MatchFunc) []span {
	var spans []span
	pos := 0
	for pos < len(text) {
		best, found := earliest(text, pos, rules, italic)
		if !found {
			break
		}
		spans = append(spans, best)
		pos = best.end
	}
	return spans
}

func earliest(text string, pos int, rules []EmphasisRule, italic MatchFunc) (span, bool) {
	var best span
	found := false
	for _, r := range rules {
		if r.Match == nil {
			continue
		}
		s, e, ok := r.Match(text, pos)
		if !ok {
			continue
		}
		if !found || s < best.start {
			best = span{start: s, end: e, style: r.Style}
			found = true
		}
	}
	if s, e, ok := italic(text, pos); ok && (!found || s < best.start) {
		best = span{start: s, end: e, style: Italic}
		found = true
	}
	return best, found
}

type field struct{ start, end int }

func fieldOffsets(text string) []field {
	var out []field
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, field{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, field{start, len(text)})
	}
	return out
}
