// Package layout word-wraps and justifies styled paragraphs against a fixed line width.
//
// The engine does no I/O. It measures through Metrics and draws through Drawer, both
// supplied by the caller, and moves a Cursor down the page as lines are emitted.
// Y coordinates are measured upward from the bottom edge of the page.
package layout

import (
	"strings"

	"github.com/zeptools/docoverlay/style"
)

// Cursor is the mutable layout state of one render. Never share it between renders.
type Cursor struct {
	Y            float64 // baseline of the next line
	PageWidth    float64
	PageHeight   float64
	LeftMargin   float64
	RightMargin  float64
	MaxLineWidth float64
}

// NewCursor places the first baseline top points below the top edge.
func NewCursor(pageWidth, pageHeight, left, right, top float64) *Cursor {
	return &Cursor{
		Y:            pageHeight - top,
		PageWidth:    pageWidth,
		PageHeight:   pageHeight,
		LeftMargin:   left,
		RightMargin:  right,
		MaxLineWidth: pageWidth - left - right,
	}
}

type Metrics interface {
	// Width is the rendered width of text in style s at the engine's font size.
	Width(text string, s style.Style) float64
}

type Drawer interface {
	DrawWord(x, y float64, text string, s style.Style)
}

// Line is one emitted line of a paragraph.
type Line struct {
	Words []style.StyledWord
	X     []float64 // left edge of each word
	Y     float64   // baseline
	Final bool      // last line of the paragraph: never justified
}

// Justified reports whether the line was stretched to the full line width.
func (l Line) Justified() bool {
	return !l.Final && len(l.Words) > 1
}

type Engine struct {
	Metrics      Metrics
	Drawer       Drawer
	LineHeight   float64
	ParagraphGap float64
}

const hardBreak = "\n"

// Flow lays out one paragraph starting at c.Y and leaves c.Y below it.
//
// Words are packed greedily while the plain Body width of the line stays within
// c.MaxLineWidth. Every line except the last one of the paragraph is justified
// when it has more than one word. A newline in text forces a line break; an empty
// line between two breaks only advances the cursor.
func (e *Engine) Flow(c *Cursor, text string, rules []style.EmphasisRule, italicPhrase string) []Line {
	tokens := tokenize(text)
	var (
		lines   []Line
		pending []string
	)
	for i, tok := range tokens {
		if tok == hardBreak {
			if len(pending) > 0 {
				lines = append(lines, e.emit(c, pending, false, rules, italicPhrase))
				pending = nil
			} else {
				c.Y -= e.LineHeight
			}
			continue
		}
		if len(pending) > 0 && !e.fits(c, append(pending, tok)) {
			lines = append(lines, e.emit(c, pending, false, rules, italicPhrase))
			pending = nil
		}
		pending = append(pending, tok)
		if i == len(tokens)-1 {
			lines = append(lines, e.emit(c, pending, true, rules, italicPhrase))
			pending = nil
		}
	}
	c.Y -= e.ParagraphGap
	return lines
}

// tokenize splits text into words and hard-break markers. Breaks after the last
// word are dropped.
func tokenize(text string) []string {
	text = strings.ReplaceAll(text, "\r", "")
	var tokens []string
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			tokens = append(tokens, hardBreak)
		}
		tokens = append(tokens, strings.Fields(line)...)
	}
	for len(tokens) > 0 && tokens[len(tokens)-1] == hardBreak {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

func (e *Engine) fits(c *Cursor, words []string) bool {
	return e.Metrics.Width(strings.Join(words, " "), style.Body) <= c.MaxLineWidth
}

func (e *Engine) emit(c *Cursor, words []string, final bool, rules []style.EmphasisRule, italicPhrase string) Line {
	styled := style.Classify(strings.Join(words, " "), rules, italicPhrase)
	line := Line{Words: styled, Y: c.Y, Final: final, X: make([]float64, len(styled))}

	gap := e.Metrics.Width(" ", style.Body)
	if line.Justified() {
		total := 0.0
		for _, w := range styled {
			total += e.Metrics.Width(w.Text, w.Style)
		}
		gap = (c.MaxLineWidth - total) / float64(len(styled)-1)
	}

	x := c.LeftMargin
	for i, w := range styled {
		line.X[i] = x
		e.Drawer.DrawWord(x, c.Y, w.Text, w.Style)
		x += e.Metrics.Width(w.Text, w.Style) + gap
	}
	c.Y -= e.LineHeight
	return line
}
