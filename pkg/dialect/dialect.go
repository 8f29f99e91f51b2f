/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dialect.go
Description: Dialect model for delimited text. Holds the inferred delimiter, quote
character and quoting flags, plus the fixed delimiter tables shared by every detector.
*/

package dialect

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"unicode"
)

var (
	// ErrDelimiterUndetermined is returned when neither detector finds a delimiter.
	ErrDelimiterUndetermined = errors.New("could not determine delimiter")
	// ErrInvalidDelimiter is returned by New for delimiters that can never match.
	ErrInvalidDelimiter = errors.New("invalid delimiter")
)

// Dialect describes the structural convention of a delimited-text sample.
// A zero Delimiter never leaves Sniff successfully.
type Dialect struct {
	Delimiter        rune // Field separator
	QuoteChar        rune // Zero when no quoting was detected
	QuotingRequired  bool // Values must be quoted to round-trip
	SkipInitialSpace bool // A single space follows every delimiter
}

// dialectView is the serialized form of a Dialect
type dialectView struct {
	Delimiter        string `json:"delimiter" yaml:"delimiter"`
	QuoteChar        string `json:"quote_char,omitempty" yaml:"quote_char,omitempty"`
	QuotingRequired  bool   `json:"quoting_required" yaml:"quoting_required"`
	SkipInitialSpace bool   `json:"skip_initial_space" yaml:"skip_initial_space"`
}

func (d Dialect) view() dialectView {
	return dialectView{
		Delimiter:        runeString(d.Delimiter),
		QuoteChar:        runeString(d.QuoteChar),
		QuotingRequired:  d.QuotingRequired,
		SkipInitialSpace: d.SkipInitialSpace,
	}
}

// MarshalJSON renders runes as one-character strings
func (d Dialect) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.view())
}

// MarshalYAML renders runes as one-character strings
func (d Dialect) MarshalYAML() (interface{}, error) {
	return d.view(), nil
}

// String returns a compact human-readable form, e.g. delimiter=',' quote='"'
func (d Dialect) String() string {
	quote := "none"
	if d.QuoteChar != 0 {
		quote = strconv.QuoteRune(d.QuoteChar)
	}
	return fmt.Sprintf("delimiter=%s quote=%s quoting_required=%t skip_initial_space=%t",
		DisplayRune(d.Delimiter), quote, d.QuotingRequired, d.SkipInitialSpace)
}

// DisplayRune quotes a rune for terminal output. Zero renders as "none".
func DisplayRune(r rune) string {
	if r == 0 {
		return "none"
	}
	return strconv.QuoteRune(r)
}

func runeString(r rune) string {
	if r == 0 {
		return ""
	}
	return string(r)
}

// Fixed tables. Never mutated; accessors hand out copies.
var (
	defaultDelimiters = []rune{',', '\t', ';', '|'}
	preferredOrder    = []rune{',', '\t', ';', ' ', ':'}
	quoteChars        = []rune{'"', '\''}
)

// DefaultDelimiters returns the delimiter set searched when no option overrides it
func DefaultDelimiters() []rune {
	out := make([]rune, len(defaultDelimiters))
	copy(out, defaultDelimiters)
	return out
}

// PreferredOrder returns the tie-break order used when several delimiters qualify
func PreferredOrder() []rune {
	out := make([]rune, len(preferredOrder))
	copy(out, preferredOrder)
	return out
}

func isQuote(r rune) bool {
	for _, q := range quoteChars {
		if r == q {
			return true
		}
	}
	return false
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// validDelimiter reports whether r can ever be captured as a delimiter
func validDelimiter(r rune) bool {
	return r != 0 && r != '\n' && r != '\r' && !isQuote(r) && !isWord(r)
}

// preferenceRank orders delimiters by preferredOrder, unlisted ones last
func preferenceRank(r rune) int {
	for i, p := range preferredOrder {
		if p == r {
			return i
		}
	}
	return len(preferredOrder)
}

// delimiterSet is the allowed delimiter list in preference order, with the
// pattern library compiled for it
type delimiterSet struct {
	ordered  []rune
	members  map[rune]struct{}
	patterns patternLibrary
}

func newDelimiterSet(runes []rune) (delimiterSet, error) {
	if len(runes) == 0 {
		runes = defaultDelimiters
	}
	set := delimiterSet{members: make(map[rune]struct{}, len(runes))}
	for _, r := range runes {
		if !validDelimiter(r) {
			return delimiterSet{}, fmt.Errorf("%w: %s", ErrInvalidDelimiter, strconv.QuoteRune(r))
		}
		if _, dup := set.members[r]; dup {
			continue
		}
		set.members[r] = struct{}{}
		set.ordered = append(set.ordered, r)
	}
	// stable: unlisted runes keep the caller's order
	slices.SortStableFunc(set.ordered, func(a, b rune) int {
		return cmp.Compare(preferenceRank(a), preferenceRank(b))
	})

	patterns, err := compilePatterns(set.ordered)
	if err != nil {
		return delimiterSet{}, err
	}
	set.patterns = patterns
	return set, nil
}

func (s delimiterSet) accepts(r rune) bool {
	_, ok := s.members[r]
	return ok
}
