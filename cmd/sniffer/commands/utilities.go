/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utilities.go
Description: Utility commands for the dialect sniffer. Provides list-delimiters and
the configuration self-check used before batch runs and in CI.
*/

package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/kleascm/dialect-sniffer/pkg/dialect"
	"github.com/kleascm/dialect-sniffer/pkg/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ListDelimiters prints the delimiters the sniffer will consider and the tie-break order
func ListDelimiters(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	sniffer, err := buildSniffer(nil)
	if err != nil {
		return fmt.Errorf("invalid delimiters: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔣 Dialect Sniffer - Delimiters")
	fmt.Fprintln(out, "===============================")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Allowed delimiters:")
	for i, r := range sniffer.Delimiters() {
		fmt.Fprintf(out, "%d. %-10s %s\n", i+1, DelimiterName(r), dialect.DisplayRune(r))
	}
	fmt.Fprintln(out)

	names := make([]string, 0, len(dialect.PreferredOrder()))
	for _, r := range dialect.PreferredOrder() {
		names = append(names, DelimiterName(r))
	}
	fmt.Fprintf(out, "Preference on ties: %s\n", strings.Join(names, " > "))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "✨ Use --delimiters to restrict the set, e.g. --delimiters 'tab,pipe' or --delimiters ',;'")
	return nil
}

// PerformSelfCheck validates configuration and runs the sniffer on known samples
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔍 Dialect Sniffer - Self-Check")
	fmt.Fprintln(out, "===============================")
	fmt.Fprintln(out)

	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	checks := []struct {
		name     string
		function func() error
	}{
		{"Delimiter Set", checkDelimiterSet},
		{"Output Format", checkOutputFormat},
		{"Sample Settings", checkSampleSettings},
		{"Report Directory", func() error { return checkWritableDir(viper.GetString("report_dir")) }},
		{"Log Directory", func() error { return checkWritableDir(viper.GetString("log_dir")) }},
		{"Sniffer Self-Test", checkSnifferSelfTest},
	}

	passed := 0
	total := len(checks)

	for _, check := range checks {
		fmt.Fprintf(out, "🔍 %s... ", check.name)
		if err := check.function(); err != nil {
			fmt.Fprintf(out, "❌ FAILED: %v\n", err)
		} else {
			fmt.Fprintln(out, "✅ PASSED")
			passed++
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "📊 Results: %d/%d checks passed\n", passed, total)

	if passed == total {
		fmt.Fprintln(out, "✨ All checks passed! Ready to sniff.")
		return nil
	}
	fmt.Fprintln(out, "⚠️  Some checks failed. Please address the issues before sniffing.")
	return fmt.Errorf("%d/%d checks failed", total-passed, total)
}

func checkDelimiterSet() error {
	_, err := buildSniffer(nil)
	return err
}

func checkOutputFormat() error {
	_, err := report.ParseFormat(viper.GetString("output"))
	return err
}

func checkSampleSettings() error {
	if n := viper.GetInt("sample_lines"); n < 0 {
		return fmt.Errorf("sample-lines must not be negative, got %d", n)
	}
	if n := viper.GetInt("sample_bytes"); n < 0 {
		return fmt.Errorf("sample-bytes must not be negative, got %d", n)
	}
	if d := viper.GetDuration("timeout"); d < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", d)
	}
	if viper.GetString("html_selector") == "" {
		return fmt.Errorf("html-selector must not be empty")
	}
	return nil
}

// checkWritableDir passes for an unset directory, otherwise creates it and writes a scratch file
func checkWritableDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	scratch, err := os.CreateTemp(dir, ".sniffer-check-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	scratch.Close()
	return os.Remove(scratch.Name())
}

// checkSnifferSelfTest sniffs fixed samples whose dialects are known
func checkSnifferSelfTest() error {
	cases := []struct {
		text string
		want dialect.Dialect
	}{
		{"a,b,c\n1,2,3\n4,5,6", dialect.Dialect{Delimiter: ','}},
		{"a,'x,y',c\n1,'2,3',4", dialect.Dialect{Delimiter: ',', QuoteChar: '\'', QuotingRequired: true}},
		{"name\tage\nbob\t3\nann\t41", dialect.Dialect{Delimiter: '\t'}},
	}
	for _, c := range cases {
		got, err := dialect.Sniff(c.text)
		if err != nil {
			return fmt.Errorf("sample %q: %w", c.text, err)
		}
		if got != c.want {
			return fmt.Errorf("sample %q: got %s, want %s", c.text, got, c.want)
		}
	}
	return nil
}
