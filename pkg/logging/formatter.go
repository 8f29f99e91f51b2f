/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Custom log formatters for the dialect sniffer. Produces a compact,
optionally colored line per entry with sorted fields, and tags sniff events with a
short prefix so batches are easy to scan.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// CustomFormatter renders one readable line per entry
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format formats a log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.render(entry, ""), nil
}

func (f *CustomFormatter) render(entry *logrus.Entry, prefix string) []byte {
	var output strings.Builder

	if f.Timestamp {
		f.paint(&output, 36, entry.Time.Format("2006-01-02 15:04:05.000"))
		output.WriteString(" ")
	}

	f.paint(&output, f.getLevelColor(entry.Level), strings.ToUpper(entry.Level.String()))
	output.WriteString(" ")

	if prefix != "" {
		f.paint(&output, 35, "["+prefix+"]")
		output.WriteString(" ")
	}

	if f.Caller && entry.HasCaller() {
		f.paint(&output, 33, fmt.Sprintf("[%s:%d]", entry.Caller.File, entry.Caller.Line))
		output.WriteString(" ")
	}

	output.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		output.WriteString(" ")
		output.WriteString(f.formatFields(entry.Data))
	}

	output.WriteString("\n")
	return []byte(output.String())
}

func (f *CustomFormatter) paint(b *strings.Builder, color int, s string) {
	if f.Colors {
		fmt.Fprintf(b, "\033[%dm%s\033[0m", color, s)
		return
	}
	b.WriteString(s)
}

// getLevelColor returns the ANSI color code for a log level
func (f *CustomFormatter) getLevelColor(level logrus.Level) int {
	switch level {
	case logrus.InfoLevel:
		return 32 // Green
	case logrus.WarnLevel:
		return 33 // Yellow
	case logrus.ErrorLevel:
		return 31 // Red
	case logrus.FatalLevel, logrus.PanicLevel:
		return 35 // Magenta
	default:
		return 37 // White
	}
}

// formatFields renders fields in key order so output is stable
func (f *CustomFormatter) formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := f.formatValue(fields[key])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", key, value))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", key, value))
		}
	}
	return strings.Join(parts, " ")
}

// formatValue formats a field value appropriately
func (f *CustomFormatter) formatValue(value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case rune:
		// delimiters are logged as runes; show them the way users type them
		return fmt.Sprintf("%q", v)
	case string:
		if utf8.RuneCountInString(v) > 80 {
			return string([]rune(v)[:80]) + "..."
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// SnifferFormatter adds an event prefix to sniff-specific entries
type SnifferFormatter struct {
	CustomFormatter
}

// Format formats sniff log entries
func (f *SnifferFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.render(entry, f.getSnifferPrefix(entry.Message)), nil
}

// getSnifferPrefix returns the event prefix for a message
func (f *SnifferFormatter) getSnifferPrefix(message string) string {
	switch {
	case strings.Contains(message, "Dialect sniffed"):
		return "SNIFF"
	case strings.Contains(message, "Sniff failed"):
		return "FAIL"
	case strings.Contains(message, "Sniff summary"):
		return "SUMMARY"
	case strings.Contains(message, "Sample loaded"):
		return "SAMPLE"
	default:
		return ""
	}
}
