/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sniff.go
Description: The sniff command. Loads each named source, infers its dialect, renders
one report per source and optionally persists reports and Prometheus metrics. Any
failed source makes the command return an aggregated error.
*/

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kleascm/dialect-sniffer/pkg/dialect"
	"github.com/kleascm/dialect-sniffer/pkg/logging"
	"github.com/kleascm/dialect-sniffer/pkg/metrics"
	"github.com/kleascm/dialect-sniffer/pkg/report"
	"github.com/kleascm/dialect-sniffer/pkg/sample"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// session holds everything one invocation needs to sniff sources
type session struct {
	runID       string
	format      report.Format
	reportDir   string
	metricsFile string
	errOut      io.Writer

	logger   *logging.Logger
	sniffer  *dialect.Sniffer
	loader   *sample.Loader
	recorder *metrics.Recorder
}

// newSession loads configuration and builds the shared components
func newSession(cmd *cobra.Command) (*session, error) {
	if err := LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	format, err := report.ParseFormat(viper.GetString("output"))
	if err != nil {
		return nil, err
	}

	logger, err := SetupLogging(cmd)
	if err != nil {
		return nil, err
	}

	sniffer, err := buildSniffer(logger)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("invalid delimiters: %w", err)
	}

	return &session{
		runID:       report.NewRunID(),
		format:      format,
		reportDir:   viper.GetString("report_dir"),
		metricsFile: viper.GetString("metrics_file"),
		errOut:      cmd.ErrOrStderr(),
		logger:      logger,
		sniffer:     sniffer,
		loader:      buildLoader(cmd),
		recorder:    metrics.NewRecorder(),
	}, nil
}

// sniffSource loads and sniffs one source, recording logs, metrics and the report file
func (s *session) sniffSource(ctx context.Context, source string) (report.Report, error) {
	start := time.Now()

	var analysis dialect.Analysis
	smp, err := s.loader.Load(ctx, source)
	if err == nil {
		s.logger.Debug("Sample loaded", map[string]interface{}{
			"source":    source,
			"lines":     smp.Lines,
			"bytes":     smp.Bytes,
			"truncated": smp.Truncated,
			"kind":      smp.Kind,
		})
		analysis, err = s.sniffer.Analyze(smp.Text)
	}
	elapsed := time.Since(start)

	rep := report.New(s.runID, source, smp, analysis, err, elapsed)
	s.recorder.ObserveSniff(rep.DecidedBy, rep.Failed(), elapsed, rep.SampleBytes)

	if err != nil {
		s.logger.LogFailure(source, err, nil)
		err = fmt.Errorf("%s: %w", source, err)
	} else {
		s.logger.LogSniff(source, elapsed, map[string]interface{}{
			"delimiter":  dialect.DisplayRune(analysis.Dialect.Delimiter),
			"quote_char": dialect.DisplayRune(analysis.Dialect.QuoteChar),
			"decided_by": analysis.DecidedBy,
		})
	}

	if s.reportDir != "" {
		if path, werr := report.WriteResult(s.reportDir, rep); werr != nil {
			s.logger.Warning("Failed to persist report", map[string]interface{}{"source": source, "error": werr.Error()})
		} else {
			s.logger.Debug("Report written", map[string]interface{}{"path": path})
		}
	}

	return rep, err
}

// finish renders reports, exports metrics and turns failures into one error
func (s *session) finish(w io.Writer, reports []report.Report, failures []error) error {
	if err := report.Render(w, s.format, reports); err != nil {
		return fmt.Errorf("failed to render reports: %w", err)
	}

	if s.metricsFile != "" {
		if err := s.recorder.WriteTextfile(s.metricsFile); err != nil {
			return err
		}
	}

	summary := report.Summarize(reports)
	fields := map[string]interface{}{"run_id": s.runID}
	if stats, err := s.logger.LogStats(); err != nil {
		s.logger.Warning("Failed to read log directory", map[string]interface{}{"error": err.Error()})
	} else if stats != nil {
		fields["log_files"] = stats.TotalFiles
		fields["log_bytes"] = stats.TotalSize
	}
	s.logger.LogSummary(summary.Total, summary.Failed, fields)

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d sources could not be sniffed: %w", len(failures), len(reports), errors.Join(failures...))
	}
	return nil
}

func (s *session) close() {
	if err := s.logger.Close(); err != nil {
		fmt.Fprintln(s.errOut, "⚠️  Failed to close logger:", err)
	}
}

// RunSniff sniffs every source named on the command line, or stdin when none is given
func RunSniff(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{sample.StdinSource}
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := commandContext(cmd)
	reports := make([]report.Report, 0, len(args))
	var failures []error
	for _, source := range args {
		rep, err := s.sniffSource(ctx, source)
		reports = append(reports, rep)
		if err != nil {
			failures = append(failures, err)
		}
	}

	return s.finish(cmd.OutOrStdout(), reports, failures)
}
