/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: quote_detector.go
Description: Quote-and-delimiter detector. Runs the pattern library over the sample,
drops matches that disagree with the first line, and tallies the surviving quote and
delimiter characters into a provisional dialect.
*/

package dialect

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// tally counts runes and remembers first-seen order for tie-breaks
type tally struct {
	order  []rune
	counts map[rune]int
}

func newTally() *tally {
	return &tally{counts: make(map[rune]int)}
}

func (t *tally) add(r rune) {
	if _, seen := t.counts[r]; !seen {
		t.order = append(t.order, r)
	}
	t.counts[r]++
}

// winner returns the most frequent rune; ties go to the earliest seen
func (t *tally) winner() (rune, int) {
	var best rune
	bestCount := 0
	for _, r := range t.order {
		if t.counts[r] > bestCount {
			best, bestCount = r, t.counts[r]
		}
	}
	return best, bestCount
}

// quoteDetection is the outcome of the pattern pass
type quoteDetection struct {
	dialect  Dialect
	shape    spanShape
	matched  bool // Some shape produced a raw match
	accepted int  // Matches surviving the header filter
}

// detectQuoteAndDelimiter runs the pattern library against the sample
func (s *Sniffer) detectQuoteAndDelimiter(d Dialect, text []rune) quoteDetection {
	result := quoteDetection{dialect: d}

	var matches []spanMatch
	for _, p := range s.delimiters.patterns {
		matches = p.shape.findAll(text, s.delimiters)
		if len(matches) > 0 {
			result.shape = p.shape
			result.matched = true
			break
		}
	}
	if !result.matched {
		s.logger.Debug("No quoted span matched any pattern")
		return result
	}

	firstLineBest, firstLineScanned := rune(0), false
	quotes := newTally()
	delims := newTally()
	spaces := make(map[rune]int)

	for _, m := range matches {
		if needsHeaderCheck(m) {
			if !firstLineScanned {
				firstLineBest = s.bestSplitter(firstLine(text))
				firstLineScanned = true
			}
			if firstLineBest != m.delim {
				s.logger.WithFields(logrus.Fields{
					"shape":      m.shape.String(),
					"captured":   DisplayRune(m.delim),
					"first_line": DisplayRune(firstLineBest),
				}).Debug("Rejected quoted span disagreeing with first line")
				continue
			}
		}

		result.accepted++
		quotes.add(m.quote)
		if m.delim == 0 {
			continue
		}
		delims.add(m.delim)
		if m.space {
			spaces[m.delim]++
		}
	}

	if quote, n := quotes.winner(); n > 0 {
		result.dialect.QuoteChar = quote
	}
	if delim, n := delims.winner(); n > 0 && delim != '\n' {
		result.dialect.Delimiter = delim
		result.dialect.SkipInitialSpace = spaces[delim] == n
	}

	s.logger.WithFields(logrus.Fields{
		"shape":     result.shape.String(),
		"matches":   len(matches),
		"accepted":  result.accepted,
		"quote":     DisplayRune(result.dialect.QuoteChar),
		"delimiter": DisplayRune(result.dialect.Delimiter),
	}).Debug("Quote pattern pass finished")

	return result
}

// needsHeaderCheck selects matches that carry no left delimiter to vouch for them:
// bare lines, and leading spans opening the very first line of the sample.
func needsHeaderCheck(m spanMatch) bool {
	switch m.shape {
	case shapeBare:
		return true
	case shapeLeading:
		return m.quoteAt == 0
	default:
		return false
	}
}

// bestSplitter returns the allowed delimiter splitting line into the most
// pieces, zero when none splits it. Ties keep preference order.
func (s *Sniffer) bestSplitter(line string) rune {
	var best rune
	bestPieces := 1
	for _, d := range s.delimiters.ordered {
		pieces := strings.Count(line, string(d)) + 1
		if pieces > bestPieces {
			best, bestPieces = d, pieces
		}
	}
	return best
}

func firstLine(text []rune) string {
	for i, r := range text {
		if r == '\n' {
			return strings.TrimSuffix(string(text[:i]), "\r")
		}
	}
	return string(text)
}
