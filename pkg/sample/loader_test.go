/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: loader_test.go
Description: Tests for sample loading from files, stdin and HTTP, line truncation,
and HTML block extraction.
*/

package sample

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><body>
<p>Some prose, with commas; and semicolons.</p>
<pre>
id;name
1;Ann
</pre>
<pre>
2;Bob
</pre>
<div class="data">a|b</div>
</body></html>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\n1,2\n3,4\n")

	s, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Source)
	assert.Equal(t, "a,b\n1,2\n3,4\n", s.Text)
	assert.Equal(t, 3, s.Lines)
	assert.Equal(t, 12, s.Bytes)
	assert.False(t, s.Truncated)
	assert.Equal(t, KindText, s.Kind)
}

func TestLoadTruncatesLines(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\n1,2\n3,4\n5,6")

	s, err := NewLoader(WithMaxLines(2)).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", s.Text)
	assert.Equal(t, 2, s.Lines)
	assert.True(t, s.Truncated)

	exact, err := NewLoader(WithMaxLines(4)).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, exact.Lines)
	assert.False(t, exact.Truncated)

	whole, err := NewLoader(WithMaxLines(0)).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, whole.Lines)
	assert.False(t, whole.Truncated)
}

func TestLoadTruncatesBytes(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\nc,d\ne,f\n")

	s, err := NewLoader(WithMaxBytes(9)).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\nc,d\n", s.Text)
	assert.Equal(t, 2, s.Lines)
	assert.True(t, s.Truncated)

	exact, err := NewLoader(WithMaxBytes(12)).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, exact.Lines)
	assert.False(t, exact.Truncated)
}

func TestLoadCutsLongFirstLineOnRuneBoundary(t *testing.T) {
	l := NewLoader(WithMaxBytes(5), WithStdin(strings.NewReader(strings.Repeat("é", 1000))))
	s, err := l.Load(context.Background(), StdinSource)
	require.NoError(t, err)
	assert.Equal(t, "éé", s.Text)
	assert.Equal(t, 4, s.Bytes)
	assert.Equal(t, 1, s.Lines)
	assert.True(t, s.Truncated)
}

func TestLoadStdin(t *testing.T) {
	l := NewLoader(WithStdin(strings.NewReader("x;y\n1;2")))
	s, err := l.Load(context.Background(), StdinSource)
	require.NoError(t, err)
	assert.Equal(t, "x;y\n1;2", s.Text)
	assert.Equal(t, 2, s.Lines)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadUnsupportedScheme(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), "ftp://example.com/data.csv")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestLoadHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data.tsv":
			w.Header().Set("Content-Type", "text/tab-separated-values")
			_, _ = w.Write([]byte("a\tb\n1\t2\n"))
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(page))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	l := NewLoader(WithHTTPClient(server.Client()))

	s, err := l.Load(context.Background(), server.URL+"/data.tsv")
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n1\t2\n", s.Text)
	assert.Equal(t, KindText, s.Kind)

	html, err := l.Load(context.Background(), server.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, KindHTML, html.Kind)
	assert.Equal(t, "id;name\n1;Ann\n2;Bob", html.Text)
	assert.Equal(t, 3, html.Lines)

	_, err = l.Load(context.Background(), server.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLoadHTTPTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	l := NewLoader(WithHTTPClient(server.Client()), WithTimeout(50*time.Millisecond))
	_, err := l.Load(context.Background(), server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoadHTMLFileWithSelector(t *testing.T) {
	path := writeFile(t, "page.html", page)

	s, err := NewLoader(WithSelector("div.data")).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "a|b", s.Text)

	_, err = NewLoader(WithSelector("table")).Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestIsHTML(t *testing.T) {
	assert.True(t, isHTML("x.HTM", "", nil))
	assert.True(t, isHTML("x", "text/html", nil))
	assert.True(t, isHTML("x", "", []byte("<!DOCTYPE html><html>")))
	assert.False(t, isHTML("x.csv", "text/csv", []byte("a,b\n1,2")))
}
