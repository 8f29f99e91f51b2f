/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for the dialect sniffer. Wires the cobra command
tree, binds every flag to viper so values can also come from a config file or
SNIFFER_* environment variables, and dispatches to the commands package.
*/

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/kleascm/dialect-sniffer/cmd/sniffer/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dialect-sniffer",
		Short: "Dialect Sniffer - infer the delimiter and quoting of delimited text",
		Long: `Dialect Sniffer inspects a sample of delimited text (CSV, TSV and friends) and
infers its dialect: the field delimiter, the quote character, whether quoting is
required, and whether spaces after delimiters should be skipped.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()

	// Configuration and logging
	flags.String("config", "", "Configuration file path")
	flags.String("log-level", "info", "Logging level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json, custom)")
	flags.String("log-dir", "", "Log output directory (empty logs to stderr only)")
	flags.Int("log-max-files", 10, "Maximum number of log files to keep")
	flags.Bool("log-compress", false, "Compress older log files")

	// Sniffing
	flags.StringP("output", "o", "text", "Output format (text, json, yaml)")
	flags.String("delimiters", "", "Allowed delimiters, as characters (',;\\t') or names (tab,pipe)")
	flags.Int("sample-lines", 1024, "Lines read from each source (0 = whole input)")
	flags.Int("sample-bytes", 1<<20, "Bytes read from each source (0 = no cap)")
	flags.String("html-selector", "pre", "CSS selector for text blocks in HTML sources")
	flags.Duration("timeout", 10*time.Second, "Timeout for fetching URL sources (0 disables)")
	flags.String("report-dir", "", "Directory for per-source JSON reports")
	flags.String("metrics-file", "", "Write Prometheus metrics to this textfile")

	bindings := map[string]string{
		"config":        "config",
		"log_level":     "log-level",
		"log_format":    "log-format",
		"log_dir":       "log-dir",
		"log_max_files": "log-max-files",
		"log_compress":  "log-compress",
		"output":        "output",
		"delimiters":    "delimiters",
		"sample_lines":  "sample-lines",
		"sample_bytes":  "sample-bytes",
		"html_selector": "html-selector",
		"timeout":       "timeout",
		"report_dir":    "report-dir",
		"metrics_file":  "metrics-file",
	}
	for key, flag := range bindings {
		viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "sniff [FILE|URL|-]...",
		Short: "Infer the dialect of one or more sources",
		Long: `Sniff each source and print one report per source. Sources may be local
files, http(s) URLs or "-" for stdin; with no arguments stdin is read. HTML
documents are reduced to the text of the blocks matched by --html-selector.`,
		RunE: commands.RunSniff,
	})

	corpusCmd := &cobra.Command{
		Use:   "corpus",
		Short: "Sniff every file in a directory",
		Long: `Sniff all regular files in --corpus-dir in parallel and print the reports
followed by a per-delimiter summary.`,
		RunE: commands.RunCorpus,
	}
	corpusCmd.Flags().String("corpus-dir", "./corpus", "Directory of sample files")
	corpusCmd.Flags().Int("workers", 0, "Number of parallel workers (0 = auto-detect)")
	viper.BindPFlag("corpus_dir", corpusCmd.Flags().Lookup("corpus-dir"))
	viper.BindPFlag("workers", corpusCmd.Flags().Lookup("workers"))
	rootCmd.AddCommand(corpusCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list-delimiters",
		Short: "List the allowed delimiters and their tie-break order",
		RunE:  commands.ListDelimiters,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate configuration and run a sniffer self-test",
		Long: `Check that the delimiter set parses, the output format is known, report and
log directories are writable, and the sniffer gives the expected answers on
known samples. Useful in CI before batch runs.`,
		RunE: commands.PerformSelfCheck,
	})

	return rootCmd
}
