/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: quoting_test.go
Description: Tests for quoted span extraction and the ordered quoting checks.
*/

package dialect

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotedSpans(t *testing.T) {
	spans := quotedSpans([]rune("a,'x,y',c\n1, '2' ,4"), ',', '\'')
	require.Len(t, spans, 2)
	assert.Equal(t, "x,y", string(spans[0].content))
	assert.False(t, spans[0].padded)
	assert.Equal(t, "2", string(spans[1].content))
	assert.True(t, spans[1].padded)
}

func TestQuotedSpansDoubledQuoteDoesNotClose(t *testing.T) {
	spans := quotedSpans([]rune("'He said ''hi''',b\n1,2"), ',', '\'')
	require.Len(t, spans, 1)
	assert.Equal(t, "He said ''hi''", string(spans[0].content))
}

func TestQuotedSpansEmptyAndUnterminated(t *testing.T) {
	spans := quotedSpans([]rune("a,'',b\n'open,c"), ',', '\'')
	require.Len(t, spans, 1)
	assert.Empty(t, spans[0].content)
}

func TestQuotedSpansDoubledQuoteSwallowsCloser(t *testing.T) {
	text := []rune("'a'',b")
	walk := closingWalk(text, ',', '\'')
	assert.Equal(t, -1, walk[1])
	assert.Equal(t, 3, walk[3])
	assert.Equal(t, -1, walk[len(text)])

	assert.Empty(t, quotedSpans(text, ',', '\''))
}

func TestQuotedSpansLongUnterminatedLine(t *testing.T) {
	text := []rune("a,'b',c\n" + strings.Repeat(",'x", 100000))

	start := time.Now()
	spans := quotedSpans(text, ',', '\'')
	assert.Less(t, time.Since(start), 2*time.Second)
	require.Len(t, spans, 1)
	assert.Equal(t, "b", string(spans[0].content))
}

func TestFieldPatternIsCached(t *testing.T) {
	assert.Same(t, fieldPattern(';', '"'), fieldPattern(';', '"'))
	assert.NotSame(t, fieldPattern(';', '"'), fieldPattern(';', '\''))
}

func TestCheckQuoting(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		dialect  Dialect
		required bool
		check    string
	}{
		{
			name:     "doubledQuote",
			input:    "'He said ''hi''',b\n1,2",
			dialect:  Dialect{Delimiter: ',', QuoteChar: '\''},
			required: true,
			check:    "doubled-quote",
		},
		{
			name:     "quotedDelimiter",
			input:    "a,'x,y',c\n1,'2,3',4",
			dialect:  Dialect{Delimiter: ',', QuoteChar: '\''},
			required: true,
			check:    "quoted-delimiter",
		},
		{
			name:     "quotedNewline",
			input:    "a,\"x\ny\",c\n1,2,3",
			dialect:  Dialect{Delimiter: ',', QuoteChar: '"'},
			required: true,
			check:    "quoted-newline",
		},
		{
			name:     "fullyQuotedValue",
			input:    "\"a\",\"b\"\n\"c\",\"d\"",
			dialect:  Dialect{Delimiter: ',', QuoteChar: '"'},
			required: true,
			check:    "fully-quoted-value",
		},
		{
			name:    "paddedQuotesAreInformational",
			input:   "a, \"b\", c\nd, \"e\", f",
			dialect: Dialect{Delimiter: ',', QuoteChar: '"'},
		},
		{
			name:    "noQuoteCharSkipsChecks",
			input:   "a,'x,y',c",
			dialect: Dialect{Delimiter: ','},
		},
		{
			name:    "noDelimiterSkipsChecks",
			input:   "'x,y'",
			dialect: Dialect{QuoteChar: '\''},
		},
	}

	s, err := New()
	require.NoError(t, err)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, check := s.checkQuoting(tt.dialect, []rune(tt.input))
			assert.Equal(t, tt.required, d.QuotingRequired)
			assert.Equal(t, tt.check, check)
			assert.Equal(t, tt.dialect.Delimiter, d.Delimiter)
			assert.Equal(t, tt.dialect.QuoteChar, d.QuoteChar)
		})
	}
}
