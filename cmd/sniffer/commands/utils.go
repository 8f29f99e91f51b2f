/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the dialect sniffer commands. Provides configuration
loading, logging setup, delimiter flag parsing and construction of the sniffer, sample
loader and metrics recorder used by every command.
*/

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/kleascm/dialect-sniffer/pkg/dialect"
	"github.com/kleascm/dialect-sniffer/pkg/logging"
	"github.com/kleascm/dialect-sniffer/pkg/sample"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// delimiterNames maps the spelled-out names accepted by --delimiters
var delimiterNames = map[string]rune{
	"comma":     ',',
	"tab":       '\t',
	"semicolon": ';',
	"pipe":      '|',
	"space":     ' ',
	"colon":     ':',
}

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("SNIFFER")
	viper.AutomaticEnv()

	return nil
}

// SetupLogging builds the logger from the log_* settings
func SetupLogging(cmd *cobra.Command) (*logging.Logger, error) {
	config := &logging.LoggerConfig{
		Level:     logging.LogLevel(strings.ToLower(viper.GetString("log_level"))),
		Format:    logging.LogFormat(strings.ToLower(viper.GetString("log_format"))),
		OutputDir: viper.GetString("log_dir"),
		MaxFiles:  viper.GetInt("log_max_files"),
		Compress:  viper.GetBool("log_compress"),
		Timestamp: true,
		Console:   cmd.ErrOrStderr(),
	}
	if config.Level == "warning" {
		config.Level = logging.LogLevelWarning
	}

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// ParseDelimiters reads the --delimiters value. It accepts either a list of
// names ("tab,semicolon") or the characters themselves (",;\t"). An empty
// value selects the default set.
func ParseDelimiters(value string) ([]rune, error) {
	if value == "" {
		return nil, nil
	}

	if names := strings.Split(value, ","); len(names) > 0 {
		out := make([]rune, 0, len(names))
		for _, name := range names {
			r, ok := delimiterNames[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				out = nil
				break
			}
			out = append(out, r)
		}
		if out != nil {
			return out, nil
		}
	}

	var out []rune
	chars := []rune(value)
	for i := 0; i < len(chars); i++ {
		if chars[i] != '\\' {
			out = append(out, chars[i])
			continue
		}
		if i+1 == len(chars) {
			return nil, fmt.Errorf("dangling escape in delimiters %q", value)
		}
		i++
		switch chars[i] {
		case 't':
			out = append(out, '\t')
		case 's':
			out = append(out, ' ')
		case '\\':
			out = append(out, '\\')
		default:
			return nil, fmt.Errorf("unknown escape \\%c in delimiters %q", chars[i], value)
		}
	}
	return out, nil
}

// DelimiterName returns the spelled-out name of a delimiter, or its quoted form
func DelimiterName(r rune) string {
	for name, candidate := range delimiterNames {
		if candidate == r {
			return name
		}
	}
	return dialect.DisplayRune(r)
}

// buildSniffer creates a sniffer honoring --delimiters
func buildSniffer(logger *logging.Logger) (*dialect.Sniffer, error) {
	delims, err := ParseDelimiters(viper.GetString("delimiters"))
	if err != nil {
		return nil, err
	}

	opts := []dialect.Option{dialect.WithDelimiters(delims...)}
	if logger != nil {
		opts = append(opts, dialect.WithLogger(logger.GetLogger()))
	}
	return dialect.New(opts...)
}

// buildLoader creates a sample loader honoring the sampling flags
func buildLoader(cmd *cobra.Command) *sample.Loader {
	return sample.NewLoader(
		sample.WithMaxLines(viper.GetInt("sample_lines")),
		sample.WithMaxBytes(viper.GetInt("sample_bytes")),
		sample.WithSelector(viper.GetString("html_selector")),
		sample.WithTimeout(viper.GetDuration("timeout")),
		sample.WithStdin(cmd.InOrStdin()),
	)
}

// commandContext returns the command's context, falling back to Background
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
