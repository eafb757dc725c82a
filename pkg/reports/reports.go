// Package reports persists research artifacts as write-once Markdown audit
// files and renders them to HTML.
package reports

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const timestampLayout = "20060102_150405"

// maxSuffix bounds the search for a free file name within one second.
const maxSuffix = 100

const maxSlugLen = 48

// Writer writes artifacts to report_<topic-slug>_<YYYYMMDD_HHMMSS>.md files
// in a directory.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter creates a writer for dir. The directory is created on first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// Document is the file content of an artifact: a title line and the body.
func Document(topic, body string) string {
	return fmt.Sprintf("# Detailed Report on %s\n\n%s", topic, body)
}

// Write stores the artifact and returns the file path. Existing files are
// never overwritten: a second report in the same second gets a numeric
// suffix.
func (w *Writer) Write(topic, body string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}

	base := "report_" + Slug(topic) + "_" + w.now().Format(timestampLayout)
	data := []byte(Document(topic, body))
	for i := 1; i <= maxSuffix; i++ {
		name := base + ".md"
		if i > 1 {
			name = fmt.Sprintf("%s_%d.md", base, i)
		}
		path := filepath.Join(w.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating report file: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("writing report file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("writing report file: %w", err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free report file name for %s", base)
}

// Slug turns a topic into a file name fragment: lower-case ASCII letters
// and digits joined by single dashes, at most 48 bytes. A topic with none
// of those becomes "topic".
func Slug(topic string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(topic) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		return "topic"
	}
	return slug
}

// md renders GitHub-flavored Markdown (tables, links, strikethrough). Raw
// HTML in model output is omitted.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts an artifact to an HTML fragment.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}
