/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sniffer.go
Description: Sniffer entry point and dialect assembler. Chains the quote detector, the
frequency fallback and the quoting checker, and turns the merged result into a Dialect
or ErrDelimiterUndetermined.
*/

package dialect

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Detector names reported in Analysis.DecidedBy
const (
	DecidedByQuotePattern = "quote-pattern"
	DecidedByFrequency    = "frequency"
)

// Analysis is a sniffed dialect together with how it was reached
type Analysis struct {
	Dialect      Dialect `json:"dialect" yaml:"dialect"`
	DecidedBy    string  `json:"decided_by" yaml:"decided_by"`                           // Detector that produced the delimiter
	Shape        string  `json:"shape,omitempty" yaml:"shape,omitempty"`                 // Winning pattern shape, if any
	QuotingCheck string  `json:"quoting_check,omitempty" yaml:"quoting_check,omitempty"` // Check that required quoting
	Chunks       int     `json:"chunks,omitempty" yaml:"chunks,omitempty"`               // Frequency chunks scanned
	Consistency  float64 `json:"consistency,omitempty" yaml:"consistency,omitempty"`     // Threshold that admitted the delimiter
}

// Sniffer infers dialects. It holds only immutable settings and is safe for
// concurrent use.
type Sniffer struct {
	delimiters delimiterSet
	logger     logrus.FieldLogger
}

// Option configures a Sniffer
type Option func(*Sniffer) error

// WithDelimiters restricts the delimiters searched by both detectors.
// An empty list keeps the default set.
func WithDelimiters(delims ...rune) Option {
	return func(s *Sniffer) error {
		set, err := newDelimiterSet(delims)
		if err != nil {
			return err
		}
		s.delimiters = set
		return nil
	}
}

// WithLogger traces detector decisions at debug level
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Sniffer) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// New creates a Sniffer with the default delimiter set and a silent logger
func New(opts ...Option) (*Sniffer, error) {
	set, err := newDelimiterSet(nil)
	if err != nil {
		return nil, err
	}
	s := &Sniffer{
		delimiters: set,
		logger:     discardLogger(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Delimiters returns the allowed delimiters in preference order
func (s *Sniffer) Delimiters() []rune {
	out := make([]rune, len(s.delimiters.ordered))
	copy(out, s.delimiters.ordered)
	return out
}

// Sniff infers the dialect of a fully materialised sample
func (s *Sniffer) Sniff(sample string) (Dialect, error) {
	a, err := s.Analyze(sample)
	if err != nil {
		return Dialect{}, err
	}
	return a.Dialect, nil
}

// Analyze infers the dialect and records which detector and check decided it
func (s *Sniffer) Analyze(sample string) (Analysis, error) {
	text := []rune(sample)
	var a Analysis

	qd := s.detectQuoteAndDelimiter(Dialect{}, text)
	d := qd.dialect
	if qd.matched {
		a.Shape = qd.shape.String()
	}
	if d.Delimiter != 0 {
		a.DecidedBy = DecidedByQuotePattern
	} else {
		fd := s.detectByFrequency(sample)
		d.Delimiter = fd.delimiter
		d.SkipInitialSpace = fd.skipSpace
		a.Chunks = fd.chunks
		if fd.delimiter != 0 {
			a.DecidedBy = DecidedByFrequency
			a.Consistency = fd.consistency
		}
	}

	d, a.QuotingCheck = s.checkQuoting(d, text)

	assembled, err := assemble(d)
	if err != nil {
		s.logger.WithField("sample_runes", len(text)).Debug("Delimiter undetermined")
		return Analysis{}, err
	}
	a.Dialect = assembled
	return a, nil
}

// assemble is the final gate: no delimiter, no dialect
func assemble(d Dialect) (Dialect, error) {
	if d.Delimiter == 0 {
		return Dialect{}, ErrDelimiterUndetermined
	}
	if d.QuoteChar == 0 {
		d.QuotingRequired = false
	}
	return d, nil
}

var defaultSniffer, _ = New()

// Sniff infers the dialect of sample with the default delimiter set
func Sniff(sample string) (Dialect, error) {
	return defaultSniffer.Sniff(sample)
}

// HasHeader is a placeholder for header detection and always reports false
func HasHeader(sample string) bool {
	return false
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
