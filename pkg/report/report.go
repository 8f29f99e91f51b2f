/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Per-source sniff reports. A Report carries the run id, the inferred
dialect with its provenance, sample statistics and any failure, and can be rendered
as an aligned text table, JSON or YAML.
*/

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/dialect-sniffer/pkg/dialect"
	"github.com/kleascm/dialect-sniffer/pkg/sample"
	"gopkg.in/yaml.v3"
)

// Format selects how reports are rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists every supported output format
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML}
}

// ParseFormat validates a user-supplied format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		names := make([]string, 0, len(Formats()))
		for _, f := range Formats() {
			names = append(names, string(f))
		}
		return "", fmt.Errorf("unknown output format %q (want one of %s)", s, strings.Join(names, ", "))
	}
}

// Report describes the outcome of sniffing one source
type Report struct {
	RunID        string           `json:"run_id" yaml:"run_id"`
	Source       string           `json:"source" yaml:"source"`
	Dialect      *dialect.Dialect `json:"dialect,omitempty" yaml:"dialect,omitempty"`
	DecidedBy    string           `json:"decided_by,omitempty" yaml:"decided_by,omitempty"`
	Shape        string           `json:"shape,omitempty" yaml:"shape,omitempty"`
	QuotingCheck string           `json:"quoting_check,omitempty" yaml:"quoting_check,omitempty"`
	Chunks       int              `json:"chunks,omitempty" yaml:"chunks,omitempty"`
	Consistency  float64          `json:"consistency,omitempty" yaml:"consistency,omitempty"`
	SampleKind   sample.Kind      `json:"sample_kind,omitempty" yaml:"sample_kind,omitempty"`
	SampleBytes  int              `json:"sample_bytes" yaml:"sample_bytes"`
	SampleLines  int              `json:"sample_lines" yaml:"sample_lines"`
	Truncated    bool             `json:"truncated" yaml:"truncated"`
	Duration     string           `json:"duration" yaml:"duration"`
	Error        string           `json:"error,omitempty" yaml:"error,omitempty"`
	Timestamp    time.Time        `json:"timestamp" yaml:"timestamp"`
}

// NewRunID returns a fresh identifier shared by every report of one invocation
func NewRunID() string {
	return uuid.NewString()
}

// New builds a report. s may be nil when loading failed; a is ignored when err is set.
func New(runID, source string, s *sample.Sample, a dialect.Analysis, err error, elapsed time.Duration) Report {
	r := Report{
		RunID:     runID,
		Source:    source,
		Duration:  elapsed.Round(time.Microsecond).String(),
		Timestamp: time.Now(),
	}
	if s != nil {
		r.SampleKind = s.Kind
		r.SampleBytes = s.Bytes
		r.SampleLines = s.Lines
		r.Truncated = s.Truncated
	}
	if err != nil {
		r.Error = err.Error()
		return r
	}

	d := a.Dialect
	r.Dialect = &d
	r.DecidedBy = a.DecidedBy
	r.Shape = a.Shape
	r.QuotingCheck = a.QuotingCheck
	r.Chunks = a.Chunks
	r.Consistency = a.Consistency
	return r
}

// Failed reports whether the source could not be sniffed
func (r Report) Failed() bool {
	return r.Error != ""
}

// Render writes reports in the requested format
func Render(w io.Writer, format Format, reports []Report) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	case FormatText:
		return renderText(w, reports)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderText(w io.Writer, reports []Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tDELIMITER\tQUOTE\tQUOTING\tSKIP-SPACE\tDECIDED-BY\tLINES\tERROR")
	for _, r := range reports {
		if r.Dialect == nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t%d\t%s\n", r.Source, r.SampleLines, r.Error)
			continue
		}
		decided := r.DecidedBy
		if r.Shape != "" && r.DecidedBy == dialect.DecidedByQuotePattern {
			decided += "/" + r.Shape
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\t%s\t%d\t\n",
			r.Source,
			dialect.DisplayRune(r.Dialect.Delimiter),
			dialect.DisplayRune(r.Dialect.QuoteChar),
			r.Dialect.QuotingRequired,
			r.Dialect.SkipInitialSpace,
			decided,
			r.SampleLines,
		)
	}
	return tw.Flush()
}

// Summary counts successes and failures across reports
type Summary struct {
	Total       int          `json:"total" yaml:"total"`
	Failed      int          `json:"failed" yaml:"failed"`
	ByDelimiter map[rune]int `json:"-" yaml:"-"`
}

// Summarize tallies a batch of reports
func Summarize(reports []Report) Summary {
	s := Summary{Total: len(reports), ByDelimiter: make(map[rune]int)}
	for _, r := range reports {
		if r.Failed() {
			s.Failed++
			continue
		}
		s.ByDelimiter[r.Dialect.Delimiter]++
	}
	return s
}
