package markdown

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Frontmatter is the YAML header written ahead of an exported note body.
type Frontmatter struct {
	ID       string    `yaml:"id"`
	Title    string    `yaml:"title"`
	Tags     []string  `yaml:"tags,omitempty"`
	Notebook string    `yaml:"notebook,omitempty"`
	Folder   string    `yaml:"folder,omitempty"`
	Starred  bool      `yaml:"starred,omitempty"`
	Archived bool      `yaml:"archived,omitempty"`
	Created  time.Time `yaml:"created"`
	Updated  time.Time `yaml:"updated"`
	Version  int       `yaml:"version"`
}

// WithFrontmatter renders "---\n<yaml>---\n\n<body>".
func WithFrontmatter(fm Frontmatter, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(fm); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}

	buf.WriteString("---\n\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// LooksLikeHTML reports whether body is editor HTML rather than markdown.
func LooksLikeHTML(body string) bool {
	trimmed := strings.TrimSpace(body)
	return strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, ">")
}

// RenderHTML returns a standalone HTML document. Markdown bodies are
// converted; HTML bodies are embedded as they are.
func RenderHTML(title, body string) ([]byte, error) {
	var content bytes.Buffer
	if LooksLikeHTML(body) {
		content.WriteString(body)
	} else if err := mdRenderer.Convert([]byte(body), &content); err != nil {
		return nil, err
	}

	var doc bytes.Buffer
	doc.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	doc.WriteString(html.EscapeString(title))
	doc.WriteString("</title>\n</head>\n<body>\n<h1>")
	doc.WriteString(html.EscapeString(title))
	doc.WriteString("</h1>\n")
	doc.Write(content.Bytes())
	doc.WriteString("\n</body>\n</html>\n")
	return doc.Bytes(), nil
}
