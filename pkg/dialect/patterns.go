/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: patterns.go
Description: Pattern library for the quote detector. Four ordered regular expressions
recognise a quoted value together with the delimiter or line boundary around it. Shapes
are matched leftmost-first without overlap, and the quoted text is matched lazily across
newlines.
*/

package dialect

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// spanShape identifies one entry of the pattern library
type spanShape int

const (
	shapeEnclosed spanShape = iota // ,'text',
	shapeLeading                   // ^'text',
	shapeTrailing                  // ,'text'$
	shapeBare                      // ^'text'$
)

// shapeOrder is consulted in order; the first shape with any match wins
var shapeOrder = [...]spanShape{shapeEnclosed, shapeLeading, shapeTrailing, shapeBare}

// patternOptions gives ^ and $ line semantics and lets . cross newlines
const patternOptions = regexp2.Multiline | regexp2.Singleline

// String returns the shape name used in logs and analyses
func (s spanShape) String() string {
	switch s {
	case shapeEnclosed:
		return "enclosed"
	case shapeLeading:
		return "leading"
	case shapeTrailing:
		return "trailing"
	case shapeBare:
		return "bare"
	default:
		return "unknown"
	}
}

// anchored reports whether the shape captures a delimiter to the left of the quote
func (s spanShape) anchored() bool {
	return s == shapeEnclosed || s == shapeTrailing
}

// source renders the shape's expression for a delimiter character class.
// \G pins every match to the offset it is tried at.
func (s spanShape) source(class string) string {
	const quote = `(?<quote>["'])`
	switch s {
	case shapeEnclosed:
		return `\G(?<delim>` + class + `)(?<space> ?)` + quote + `.*?\k<quote>\k<delim>`
	case shapeLeading:
		return `\G(?:^|\n)` + quote + `.*?\k<quote>(?<delim>` + class + `)(?<space> ?)`
	case shapeTrailing:
		return `\G(?<delim>` + class + `)(?<space> ?)` + quote + `.*?\k<quote>(?=\r?$)`
	default:
		return `\G(?:^|\n)` + quote + `.*?\k<quote>(?=\r?$)`
	}
}

// spanPattern is one compiled entry of the pattern library
type spanPattern struct {
	shape spanShape
	re    *regexp2.Regexp
}

// patternLibrary holds the compiled shapes in priority order
type patternLibrary [len(shapeOrder)]spanPattern

// compilePatterns builds the library for an allowed delimiter list
func compilePatterns(delims []rune) (patternLibrary, error) {
	var b strings.Builder
	b.WriteByte('[')
	for _, d := range delims {
		b.WriteString(literal(d))
	}
	b.WriteByte(']')
	class := b.String()

	var lib patternLibrary
	for i, shape := range shapeOrder {
		re, err := regexp2.Compile(shape.source(class), patternOptions)
		if err != nil {
			return lib, fmt.Errorf("failed to compile %s pattern: %w", shape, err)
		}
		lib[i] = spanPattern{shape: shape, re: re}
	}
	return lib, nil
}

// literal escapes a non-word rune for use inside or outside a character class
func literal(r rune) string {
	return `\` + string(r)
}

// spanMatch is one recognised quoted span
type spanMatch struct {
	shape      spanShape
	start, end int  // [start, end) in the rune slice
	quoteAt    int  // Offset of the opening quote
	quote      rune // Quote character used
	delim      rune // Zero for shapeBare
	space      bool // Single space between delimiter and quote
}

// findAll returns every non-overlapping match of the shape in text. The
// expression only runs where a closing quote is known to exist, so an
// unterminated opening costs constant time instead of a scan to the end.
func (s spanShape) findAll(text []rune, allowed delimiterSet) []spanMatch {
	re := allowed.patterns[s].re
	closes := newClosingIndex(text, allowed)

	var matches []spanMatch
	for i := 0; i < len(text); {
		q, ok := s.opening(text, i, allowed)
		if !ok || !closes.closes(s, q, text[q], text[i]) {
			i++
			continue
		}
		m, ok := s.match(re, text, i)
		if !ok {
			i++
			continue
		}
		matches = append(matches, m)
		i = m.end
	}
	return matches
}

// opening returns the offset of the quote a match at i would open with
func (s spanShape) opening(text []rune, i int, allowed delimiterSet) (int, bool) {
	if s.anchored() {
		if !allowed.accepts(text[i]) {
			return 0, false
		}
		q := i + 1
		if q+1 < len(text) && text[q] == ' ' && isQuote(text[q+1]) {
			q++
		}
		return q, q < len(text) && isQuote(text[q])
	}

	switch {
	case isQuote(text[i]) && atLineStart(text, i):
		return i, true
	case text[i] == '\n' && i+1 < len(text) && isQuote(text[i+1]):
		return i + 1, true
	default:
		return 0, false
	}
}

// match runs the shape's expression at offset i and reads back its groups
func (s spanShape) match(re *regexp2.Regexp, text []rune, i int) (spanMatch, bool) {
	found, err := re.FindRunesMatchStartingAt(text, i)
	if err != nil || found == nil || found.Index != i {
		return spanMatch{}, false
	}

	quote := found.GroupByName("quote")
	m := spanMatch{
		shape:   s,
		start:   found.Index,
		end:     found.Index + found.Length,
		quoteAt: quote.Index,
		quote:   text[quote.Index],
	}
	if g := found.GroupByName("delim"); g != nil && g.Length > 0 {
		m.delim = text[g.Index]
	}
	if g := found.GroupByName("space"); g != nil && g.Length > 0 {
		m.space = true
	}
	return m, true
}

// closingIndex records the last offset of each kind of closing quote
type closingIndex struct {
	beforeDelim map[[2]rune]int // Quote followed by one given delimiter
	beforeAny   map[rune]int    // Quote followed by any allowed delimiter
	beforeEOL   map[rune]int    // Quote ending a line
}

func newClosingIndex(text []rune, allowed delimiterSet) closingIndex {
	idx := closingIndex{
		beforeDelim: make(map[[2]rune]int),
		beforeAny:   make(map[rune]int),
		beforeEOL:   make(map[rune]int),
	}
	for k, r := range text {
		if !isQuote(r) {
			continue
		}
		if atLineEnd(text, k+1) {
			idx.beforeEOL[r] = k
		}
		if k+1 < len(text) && allowed.accepts(text[k+1]) {
			idx.beforeDelim[[2]rune{r, text[k+1]}] = k
			idx.beforeAny[r] = k
		}
	}
	return idx
}

// closes reports whether a span opened by the quote at q can be closed by the shape
func (idx closingIndex) closes(s spanShape, q int, quote, delim rune) bool {
	var last int
	var ok bool
	switch s {
	case shapeEnclosed:
		last, ok = idx.beforeDelim[[2]rune{quote, delim}]
	case shapeLeading:
		last, ok = idx.beforeAny[quote]
	default:
		last, ok = idx.beforeEOL[quote]
	}
	return ok && last > q
}

func atLineStart(text []rune, i int) bool {
	return i == 0 || text[i-1] == '\n'
}

// atLineEnd treats a lone trailing \r as part of the line terminator
func atLineEnd(text []rune, p int) bool {
	if p >= len(text) || text[p] == '\n' {
		return true
	}
	return text[p] == '\r' && (p+1 == len(text) || text[p+1] == '\n')
}
