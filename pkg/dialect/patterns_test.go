/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: patterns_test.go
Description: Tests for the pattern library and the quote-and-delimiter detector.
*/

package dialect

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultSet(t *testing.T) delimiterSet {
	t.Helper()
	set, err := newDelimiterSet(nil)
	require.NoError(t, err)
	return set
}

func TestSpanShapesFindAll(t *testing.T) {
	tests := []struct {
		name   string
		shape  spanShape
		input  string
		quotes []rune
		delims []rune
		spaces []bool
	}{
		{
			name:   "enclosedSingleQuotes",
			shape:  shapeEnclosed,
			input:  "a,'x,y',c\n1,'2,3',4",
			quotes: []rune{'\'', '\''},
			delims: []rune{',', ','},
			spaces: []bool{false, false},
		},
		{
			name:   "enclosedWithSpace",
			shape:  shapeEnclosed,
			input:  "a, \"b\", c",
			quotes: []rune{'"'},
			delims: []rune{','},
			spaces: []bool{true},
		},
		{
			name:   "leadingAtEachLine",
			shape:  shapeLeading,
			input:  "\"x\",1\n\"y\",2",
			quotes: []rune{'"', '"'},
			delims: []rune{',', ','},
			spaces: []bool{false, false},
		},
		{
			name:   "trailingAtLineEnd",
			shape:  shapeTrailing,
			input:  "a,\"x\"\nb,\"y\"",
			quotes: []rune{'"', '"'},
			delims: []rune{',', ','},
			spaces: []bool{false, false},
		},
		{
			name:   "trailingBeforeCRLF",
			shape:  shapeTrailing,
			input:  "a;'x'\r\nb;'y'\r\n",
			quotes: []rune{'\'', '\''},
			delims: []rune{';', ';'},
			spaces: []bool{false, false},
		},
		{
			name:   "bareLines",
			shape:  shapeBare,
			input:  "\"alpha\"\n\"beta\"",
			quotes: []rune{'"', '"'},
			delims: []rune{0, 0},
			spaces: []bool{false, false},
		},
		{
			name:  "enclosedNeedsAllowedDelimiter",
			shape: shapeEnclosed,
			input: "a:'x':b",
		},
	}

	set := defaultSet(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := tt.shape.findAll([]rune(tt.input), set)
			require.Len(t, matches, len(tt.quotes))
			for i, m := range matches {
				assert.Equal(t, tt.shape, m.shape)
				assert.Equal(t, tt.quotes[i], m.quote, "quote of match %d", i)
				assert.Equal(t, tt.delims[i], m.delim, "delimiter of match %d", i)
				assert.Equal(t, tt.spaces[i], m.space, "space of match %d", i)
			}
		})
	}
}

func TestSpanMatchesDoNotOverlap(t *testing.T) {
	// the closing comma of the first span is consumed, so 'b' has no left delimiter
	matches := shapeEnclosed.findAll([]rune(",'a','b',"), defaultSet(t))
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].start)
	assert.Equal(t, 5, matches[0].end)
}

func TestQuotedTextSpansNewlines(t *testing.T) {
	matches := shapeEnclosed.findAll([]rune("a,\"x\ny\",c"), defaultSet(t))
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].quoteAt)
	assert.Equal(t, 8, matches[0].end)
}

func TestFindAllSkipsUnterminatedOpenings(t *testing.T) {
	text := []rune("a" + strings.Repeat(",\"x", 50000))
	set := defaultSet(t)

	start := time.Now()
	for _, shape := range shapeOrder {
		assert.Empty(t, shape.findAll(text, set), shape.String())
	}
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClosingIndex(t *testing.T) {
	text := []rune("'a',\"b\"\n'c';d")
	idx := newClosingIndex(text, defaultSet(t))

	assert.True(t, idx.closes(shapeEnclosed, 0, '\'', ','))
	assert.False(t, idx.closes(shapeEnclosed, 0, '\'', '|'))
	assert.True(t, idx.closes(shapeLeading, 9, '\'', 0))
	assert.False(t, idx.closes(shapeLeading, 11, '\'', 0))
	assert.True(t, idx.closes(shapeTrailing, 4, '"', ','))
	assert.False(t, idx.closes(shapeBare, 6, '"', 0))
}

func TestCompilePatternsEscapesDelimiters(t *testing.T) {
	set, err := newDelimiterSet([]rune{']', '^', '-', '\\'})
	require.NoError(t, err)

	matches := shapeEnclosed.findAll([]rune("a^'x'^b\\'y'\\c"), set)
	require.Len(t, matches, 2)
	assert.Equal(t, '^', matches[0].delim)
	assert.Equal(t, '\\', matches[1].delim)
}

func TestTallyWinnerKeepsFirstSeenOnTie(t *testing.T) {
	tl := newTally()
	tl.add('\'')
	tl.add('"')
	tl.add('"')
	tl.add('\'')

	r, n := tl.winner()
	assert.Equal(t, '\'', r)
	assert.Equal(t, 2, n)

	empty := newTally()
	_, n = empty.winner()
	assert.Zero(t, n)
}

func TestQuoteDetectorFirstShapeWins(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	qd := s.detectQuoteAndDelimiter(Dialect{}, []rune("\"h1\",\"h2\"\n1,\"x\""))
	require.True(t, qd.matched)
	assert.Equal(t, shapeLeading, qd.shape)
	assert.Equal(t, 1, qd.accepted)
	assert.Equal(t, ',', qd.dialect.Delimiter)
	assert.Equal(t, '"', qd.dialect.QuoteChar)
}

func TestQuoteDetectorNoQuotes(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	qd := s.detectQuoteAndDelimiter(Dialect{}, []rune("a,b,c\n1,2,3"))
	assert.False(t, qd.matched)
	assert.Zero(t, qd.dialect.QuoteChar)
	assert.Zero(t, qd.dialect.Delimiter)
}

func TestHeaderFilterRejectsDisagreeingLeadingSpan(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	// first line splits best on ';', the span claims ','
	qd := s.detectQuoteAndDelimiter(Dialect{}, []rune("\"a;b\",c;d;e"))
	require.True(t, qd.matched)
	assert.Equal(t, shapeLeading, qd.shape)
	assert.Zero(t, qd.accepted)
	assert.Zero(t, qd.dialect.Delimiter)
	assert.Zero(t, qd.dialect.QuoteChar)
}

func TestHeaderFilterOnBareLines(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	single := s.detectQuoteAndDelimiter(Dialect{}, []rune("\"x\"\n\"y\""))
	assert.Equal(t, shapeBare, single.shape)
	assert.Equal(t, 2, single.accepted)
	assert.Equal(t, '"', single.dialect.QuoteChar)
	assert.Zero(t, single.dialect.Delimiter)

	delimited := s.detectQuoteAndDelimiter(Dialect{}, []rune("a,b\n\"x\""))
	assert.Equal(t, shapeBare, delimited.shape)
	assert.Zero(t, delimited.accepted)
	assert.Zero(t, delimited.dialect.QuoteChar)
}

func TestQuoteDetectorSkipInitialSpace(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	qd := s.detectQuoteAndDelimiter(Dialect{}, []rune("a, \"b\", c\nd, \"e\", f"))
	assert.Equal(t, ',', qd.dialect.Delimiter)
	assert.True(t, qd.dialect.SkipInitialSpace)
}

func TestBestSplitter(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	assert.Equal(t, ';', s.bestSplitter("a;b;c,d"))
	assert.Equal(t, ',', s.bestSplitter("a,b;c"), "ties follow preference order")
	assert.Zero(t, s.bestSplitter("plain"))
}
