/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: corpus.go
Description: The corpus command. Sniffs every regular file in a directory with a
bounded pool of workers and prints the reports in directory order followed by a
per-delimiter summary.
*/

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/kleascm/dialect-sniffer/pkg/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunCorpus sniffs all files in --corpus-dir
func RunCorpus(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	corpusDir := viper.GetString("corpus_dir")
	if corpusDir == "" {
		corpusDir = "./corpus"
	}

	files, err := corpusFiles(corpusDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found in corpus directory %s", corpusDir)
	}

	workers := viper.GetInt("workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	out := cmd.OutOrStdout()
	if s.format == report.FormatText {
		fmt.Fprintf(out, "📁 Sniffing corpus in: %s (%d files, %d workers)\n\n", corpusDir, len(files), workers)
	}

	reports := make([]report.Report, len(files))
	errs := make([]error, len(files))
	jobs := make(chan int)

	ctx := commandContext(cmd)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				reports[i], errs[i] = s.sniffSource(ctx, files[i])
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var failures []error
	for _, err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}

	err = s.finish(out, reports, failures)
	if s.format == report.FormatText {
		printCorpusSummary(cmd, report.Summarize(reports))
	}
	return err
}

// corpusFiles lists regular files directly under dir in name order
func corpusFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func printCorpusSummary(cmd *cobra.Command, summary report.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "📊 Results: %d/%d sources sniffed\n", summary.Total-summary.Failed, summary.Total)

	delims := make([]rune, 0, len(summary.ByDelimiter))
	for r := range summary.ByDelimiter {
		delims = append(delims, r)
	}
	sort.Slice(delims, func(i, j int) bool { return delims[i] < delims[j] })
	for _, r := range delims {
		fmt.Fprintf(out, "   %-10s %d\n", DelimiterName(r), summary.ByDelimiter[r])
	}
}
