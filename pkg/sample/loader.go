/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: loader.go
Description: Sample loading for the dialect sniffer. Reads a bounded number of lines
and bytes from a local file, stdin or an HTTP(S) URL. HTML documents are reduced to the text of
the blocks matched by a CSS selector (pre by default) before truncation.
*/

package sample

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrNoSelection is returned when an HTML source has no block matching the selector.
	ErrNoSelection = errors.New("html selector matched nothing")
	// ErrUnsupportedSource is returned for URL schemes other than http and https.
	ErrUnsupportedSource = errors.New("unsupported source")
)

const (
	// DefaultMaxLines bounds how much of a source is read.
	DefaultMaxLines = 1024
	// DefaultMaxBytes bounds the sample size independently of line count.
	DefaultMaxBytes = 1 << 20
	// DefaultSelector picks preformatted blocks out of HTML pages.
	DefaultSelector = "pre"
	// DefaultTimeout bounds a single HTTP fetch.
	DefaultTimeout = 10 * time.Second

	// StdinSource names standard input on the command line.
	StdinSource = "-"

	sniffLen = 512
)

// Kind tells how the sample text was obtained
type Kind string

const (
	KindText Kind = "text"
	KindHTML Kind = "html"
)

// Sample is the text handed to the sniffer together with where it came from
type Sample struct {
	Source    string `json:"source"`
	Text      string `json:"-"`
	Bytes     int    `json:"bytes"`
	Lines     int    `json:"lines"`
	Truncated bool   `json:"truncated"`
	Kind      Kind   `json:"kind"`
}

// Loader reads samples. The zero value is not usable; call NewLoader.
type Loader struct {
	maxLines int
	maxBytes int
	selector string
	timeout  time.Duration
	stdin    io.Reader
	client   *http.Client
}

// Option configures a Loader
type Option func(*Loader)

// WithMaxLines caps the number of lines kept; zero keeps the whole input.
func WithMaxLines(n int) Option {
	return func(l *Loader) {
		if n >= 0 {
			l.maxLines = n
		}
	}
}

// WithMaxBytes caps the sample size in bytes; zero removes the cap.
func WithMaxBytes(n int) Option {
	return func(l *Loader) {
		if n >= 0 {
			l.maxBytes = n
		}
	}
}

// WithSelector sets the CSS selector used for HTML sources.
func WithSelector(selector string) Option {
	return func(l *Loader) {
		if selector != "" {
			l.selector = selector
		}
	}
}

// WithTimeout bounds each HTTP fetch; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithStdin replaces os.Stdin as the reader behind "-".
func WithStdin(r io.Reader) Option {
	return func(l *Loader) {
		l.stdin = r
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// NewLoader creates a loader with defaults overridden by opts
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		maxLines: DefaultMaxLines,
		maxBytes: DefaultMaxBytes,
		selector: DefaultSelector,
		timeout:  DefaultTimeout,
		stdin:    os.Stdin,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the sample named by source: "-" for stdin, an http(s) URL, or a path.
func (l *Loader) Load(ctx context.Context, source string) (*Sample, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	body, contentType, err := l.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	br := bufio.NewReader(body)
	head, _ := br.Peek(sniffLen)

	s := &Sample{Source: source, Kind: KindText}
	r := br
	if isHTML(source, contentType, head) {
		text, err := l.extractBlocks(br)
		if err != nil {
			return nil, fmt.Errorf("failed to extract %q from %s: %w", l.selector, source, err)
		}
		s.Kind = KindHTML
		r = bufio.NewReader(strings.NewReader(text))
	}

	if l.maxBytes > 0 {
		// one byte past the cap shows whether input remained
		r = bufio.NewReader(io.LimitReader(r, int64(l.maxBytes)+1))
	}
	s.Text, s.Lines, s.Truncated, err = readLines(r, l.maxLines, l.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	s.Bytes = len(s.Text)
	return s, nil
}

// open returns the raw body and, for HTTP sources, the declared content type
func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, string, error) {
	switch {
	case source == StdinSource:
		return io.NopCloser(l.stdin), "", nil

	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, "", fmt.Errorf("failed to build request for %s: %w", source, err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch %s: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, "", fmt.Errorf("%s returned status %d", source, resp.StatusCode)
		}
		return resp.Body, resp.Header.Get("Content-Type"), nil

	case strings.Contains(source, "://"):
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedSource, source)

	default:
		file, err := os.Open(source)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", source, err)
		}
		return file, "", nil
	}
}

// extractBlocks returns the text of every selected element, one block per line group
func (l *Loader) extractBlocks(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	selection := doc.Find(l.selector)
	if selection.Length() == 0 {
		return "", ErrNoSelection
	}

	blocks := selection.Map(func(_ int, s *goquery.Selection) string {
		return strings.TrimSuffix(s.Text(), "\n")
	})
	return strings.Join(blocks, "\n"), nil
}

func isHTML(source, contentType string, head []byte) bool {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".html", ".htm":
		return true
	}
	if strings.HasPrefix(strings.ToLower(contentType), "text/html") {
		return true
	}
	return strings.HasPrefix(http.DetectContentType(head), "text/html")
}

// readLines keeps at most limit lines and maxBytes bytes (no bound when zero)
// and reports whether input remained. A line crossing the byte cap is dropped,
// unless it is the first, which is cut on a rune boundary.
func readLines(r *bufio.Reader, limit, maxBytes int) (string, int, bool, error) {
	var b strings.Builder
	lines := 0
	for {
		if limit > 0 && lines == limit {
			_, err := r.Peek(1)
			return b.String(), lines, err == nil, nil
		}

		line, err := r.ReadString('\n')
		if maxBytes > 0 && b.Len()+len(line) > maxBytes {
			if lines == 0 {
				b.WriteString(cutRunes(line, maxBytes))
				lines++
			}
			return b.String(), lines, true, nil
		}
		if line != "" {
			b.WriteString(line)
			lines++
		}
		if err == io.EOF {
			return b.String(), lines, false, nil
		}
		if err != nil {
			return "", 0, false, err
		}
	}
}

// cutRunes shortens s to at most n bytes without splitting a rune
func cutRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
