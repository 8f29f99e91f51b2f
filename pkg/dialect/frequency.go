/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: frequency.go
Description: Frequency-based delimiter detector. Builds per-character frequency-of-
frequency tables over chunks of lines, derives a consistency-adjusted mode for each
character, and picks the delimiter whose per-line count holds across the most lines.
*/

package dialect

import (
	"math"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	chunkLines = 10  // Lines folded into the statistics per pass
	asciiLimit = 128 // Characters at or above this are ignored

	consistencyStart = 1.0  // First consistency threshold tried
	consistencyStep  = 0.01 // Relaxation per retry
	consistencyFloor = 0.9  // Lowest threshold tried (inclusive)
)

// hundredths converts a threshold constant to integer hundredths so the
// relaxation loop never accumulates float error.
func hundredths(f float64) int {
	return int(math.Round(f * 100))
}

// charMode is the consistency-adjusted mode of one character
type charMode struct {
	char     rune
	freq     int // Most common per-line count
	adjusted int // Lines at freq minus lines at any other count
}

// frequencyTable holds, per character, how many lines had it exactly k times
type frequencyTable struct {
	perChar [asciiLimit]map[int]int
	lines   int
}

func newFrequencyTable() *frequencyTable {
	t := &frequencyTable{}
	for c := range t.perChar {
		t.perChar[c] = make(map[int]int)
	}
	return t
}

// addLine folds one line into the table
func (t *frequencyTable) addLine(line string) {
	var counts [asciiLimit]int
	for _, r := range line {
		if r >= 0 && r < asciiLimit {
			counts[r]++
		}
	}
	for c, n := range counts {
		t.perChar[c][n]++
	}
	t.lines++
}

// modes computes the adjusted mode of every character seen at least once
func (t *frequencyTable) modes() []charMode {
	var out []charMode
	for c, meta := range t.perChar {
		if len(meta) == 0 {
			continue
		}
		if _, onlyZero := meta[0]; onlyZero && len(meta) == 1 {
			continue
		}
		mode := charMode{char: rune(c), freq: -1}
		best, total := 0, 0
		for freq, lines := range meta {
			total += lines
			if lines > best || (lines == best && freq < mode.freq) {
				best, mode.freq = lines, freq
			}
		}
		mode.adjusted = best - (total - best)
		out = append(out, mode)
	}
	return out
}

// frequencyDetection is the outcome of the frequency pass
type frequencyDetection struct {
	delimiter   rune
	skipSpace   bool
	chunks      int
	consistency float64
}

// detectByFrequency infers the delimiter from per-line character statistics
func (s *Sniffer) detectByFrequency(sample string) frequencyDetection {
	lines := nonBlankLines(sample)
	result := frequencyDetection{}
	if len(lines) == 0 {
		s.logger.Debug("Frequency pass found no non-blank lines")
		return result
	}

	table := newFrequencyTable()
	var candidates []charMode
	for start := 0; start < len(lines); start += chunkLines {
		end := min(start+chunkLines, len(lines))
		for _, line := range lines[start:end] {
			table.addLine(line)
		}
		result.chunks++

		var pct int
		candidates, pct = s.selectCandidates(table.modes(), table.lines)
		if len(candidates) > 0 {
			result.consistency = float64(pct) / 100
			break
		}
	}

	if len(candidates) == 0 {
		s.logger.WithField("chunks", result.chunks).Debug("Frequency pass found no consistent delimiter")
		return result
	}

	result.delimiter = resolveCandidates(candidates)
	result.skipSpace = skipsInitialSpace(lines[0], result.delimiter)

	s.logger.WithFields(logrus.Fields{
		"delimiter":   DisplayRune(result.delimiter),
		"candidates":  len(candidates),
		"chunks":      result.chunks,
		"consistency": result.consistency,
	}).Debug("Frequency pass resolved delimiter")

	return result
}

// selectCandidates applies the consistency threshold, relaxing it step by step
// down to the floor. It returns the candidates and the threshold (in hundredths)
// that admitted them.
func (s *Sniffer) selectCandidates(modes []charMode, total int) ([]charMode, int) {
	if total == 0 {
		return nil, 0
	}
	for pct := hundredths(consistencyStart); pct >= hundredths(consistencyFloor); pct -= hundredths(consistencyStep) {
		var candidates []charMode
		for _, m := range modes {
			if m.freq <= 0 || m.adjusted <= 0 || !s.delimiters.accepts(m.char) {
				continue
			}
			if m.adjusted*100 >= pct*total {
				candidates = append(candidates, m)
			}
		}
		if len(candidates) > 0 {
			return candidates, pct
		}
	}
	return nil, 0
}

// resolveCandidates picks one delimiter: preference order first, then the
// highest adjusted count with ties to the lower character code.
func resolveCandidates(candidates []charMode) rune {
	if len(candidates) == 1 {
		return candidates[0].char
	}
	for _, p := range preferredOrder {
		for _, c := range candidates {
			if c.char == p {
				return p
			}
		}
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.adjusted > best.adjusted || (c.adjusted == best.adjusted && c.char < best.char) {
			best = c
		}
	}
	return best.char
}

// skipsInitialSpace reports whether every delimiter on line is followed by a space
func skipsInitialSpace(line string, delim rune) bool {
	n := strings.Count(line, string(delim))
	return n > 0 && n == strings.Count(line, string(delim)+" ")
}

// nonBlankLines splits on \n, drops a trailing \r and skips whitespace-only lines
func nonBlankLines(sample string) []string {
	var lines []string
	for _, line := range strings.Split(sample, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
