/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: quoting.go
Description: Quoting-necessity checker. Locates quoted spans anchored at field
boundaries and runs four ordered checks that decide whether values must be quoted.
*/

package dialect

import (
	"slices"
	"sync"

	"github.com/dlclark/regexp2"
)

// quotedSpan is a quote-opened field value located between field boundaries
type quotedSpan struct {
	content []rune
	padded  bool // Spaces between a quote and its field boundary
}

// quotingCheck is one named rule of the checker
type quotingCheck struct {
	name string
	fire func(spans []quotedSpan, delim, quote rune) bool
}

// quotingChecks run in order and stop at the first that fires
var quotingChecks = [...]quotingCheck{
	{name: "doubled-quote", fire: hasDoubledQuote},
	{name: "quoted-delimiter", fire: hasQuotedDelimiter},
	{name: "quoted-newline", fire: hasQuotedNewline},
	{name: "fully-quoted-value", fire: hasFullyQuotedValue},
}

// checkQuoting returns the dialect with QuotingRequired resolved and the name
// of the check that fired, if any.
func (s *Sniffer) checkQuoting(d Dialect, text []rune) (Dialect, string) {
	if d.Delimiter == 0 || d.QuoteChar == 0 {
		return d, ""
	}
	spans := quotedSpans(text, d.Delimiter, d.QuoteChar)
	for _, check := range quotingChecks {
		if check.fire(spans, d.Delimiter, d.QuoteChar) {
			d.QuotingRequired = true
			s.logger.WithField("check", check.name).Debug("Quoting required")
			return d, check.name
		}
	}
	return d, ""
}

func hasDoubledQuote(spans []quotedSpan, _, quote rune) bool {
	pair := []rune{quote, quote}
	for _, sp := range spans {
		for i := 0; i+1 < len(sp.content); i++ {
			if slices.Equal(sp.content[i:i+2], pair) {
				return true
			}
		}
	}
	return false
}

func hasQuotedDelimiter(spans []quotedSpan, delim, _ rune) bool {
	for _, sp := range spans {
		if slices.Contains(sp.content, delim) {
			return true
		}
	}
	return false
}

func hasQuotedNewline(spans []quotedSpan, _, _ rune) bool {
	for _, sp := range spans {
		if slices.Contains(sp.content, '\n') {
			return true
		}
	}
	return false
}

func hasFullyQuotedValue(spans []quotedSpan, _, _ rune) bool {
	for _, sp := range spans {
		if !sp.padded {
			return true
		}
	}
	return false
}

// fieldPatterns caches the compiled span expression per delimiter and quote
var fieldPatterns sync.Map

// fieldPattern returns the expression for a quote-opened field value. A span
// opens at a quote at a field start, optionally after spaces, and closes at the
// first later quote followed by a field end. The content group is atomic and
// swallows a doubled quote whole, so a doubled quote never closes the span.
func fieldPattern(delim, quote rune) *regexp2.Regexp {
	key := [2]rune{delim, quote}
	if re, ok := fieldPatterns.Load(key); ok {
		return re.(*regexp2.Regexp)
	}

	d, q := literal(delim), literal(quote)
	end := `(?:\r?$|` + d + `)`
	source := `\G(?:^|(?<=` + d + `))(?<lead> *)` + q +
		`(?<content>(?>(?:[^` + q + `]|` + q + `(?!(?> *)` + end + `)` + q + `?)*))` +
		q + `(?=(?<trail>(?> *))` + end + `)`
	re := regexp2.MustCompile(source, regexp2.Multiline)

	actual, _ := fieldPatterns.LoadOrStore(key, re)
	return actual.(*regexp2.Regexp)
}

// quotedSpans collects the quote-opened values of the sample. Openings without
// a reachable closing quote are skipped before the expression runs.
func quotedSpans(text []rune, delim, quote rune) []quotedSpan {
	re := fieldPattern(delim, quote)
	closes := closingWalk(text, delim, quote)

	var spans []quotedSpan
	open := 0
	for i := 0; i < len(text); i++ {
		if !atFieldStart(text, i, delim) {
			continue
		}
		if open < i {
			open = i
		}
		for open < len(text) && text[open] == ' ' {
			open++
		}
		if open >= len(text) || text[open] != quote || closes[open+1] < 0 {
			continue
		}

		m, err := re.FindRunesMatchStartingAt(text, i)
		if err != nil || m == nil || m.Index != i {
			continue
		}
		content := m.GroupByName("content")
		spans = append(spans, quotedSpan{
			content: text[content.Index : content.Index+content.Length],
			padded:  m.GroupByName("lead").Length > 0 || m.GroupByName("trail").Length > 0,
		})
		i = m.Index + m.Length - 1
	}
	return spans
}

// closingWalk maps every offset to the quote closing a span whose content
// starts there, or -1. It follows the same rule as the content group.
func closingWalk(text []rune, delim, quote rune) []int {
	n := len(text)
	next := make([]int, n+1)
	next[n] = -1
	for k := n - 1; k >= 0; k-- {
		switch {
		case text[k] != quote:
			next[k] = next[k+1]
		case fieldEnd(text, k+1, delim):
			next[k] = k
		case k+1 < n && text[k+1] == quote:
			next[k] = next[k+2]
		default:
			next[k] = next[k+1]
		}
	}
	return next
}

func atFieldStart(text []rune, i int, delim rune) bool {
	return i == 0 || text[i-1] == '\n' || text[i-1] == delim
}

// fieldEnd reports whether a field boundary follows p after optional spaces
func fieldEnd(text []rune, p int, delim rune) bool {
	q := p
	for q < len(text) && text[q] == ' ' {
		q++
	}
	return atLineEnd(text, q) || text[q] == delim
}
