package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// Document is a Markdown file with an optional YAML header.
type Document struct {
	Meta map[string]any
	Body string
}

// Parse splits a leading YAML block from the body. Input without a header
// yields empty Meta and the whole input as Body.
func Parse(content string) (Document, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, fence+"\n") {
		return Document{Meta: map[string]any{}, Body: content}, nil
	}
	rest := content[len(fence)+1:]
	end := strings.Index(rest, "\n"+fence+"\n")
	if end < 0 {
		return Document{}, fmt.Errorf("front matter is not terminated")
	}
	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return Document{}, fmt.Errorf("decode front matter: %w", err)
	}
	return Document{Meta: meta, Body: rest[end+len(fence)+2:]}, nil
}

// Render writes the header followed by a blank line and the body.
func (d Document) Render() (string, error) {
	var buf bytes.Buffer
	if len(d.Meta) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		buf.WriteString(fence + "\n")
		if err := enc.Encode(d.Meta); err != nil {
			return "", fmt.Errorf("encode front matter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("encode front matter: %w", err)
		}
		buf.WriteString(fence + "\n\n")
	}
	buf.WriteString(strings.TrimLeft(d.Body, "\n"))
	return buf.String(), nil
}

// Merge copies meta over d.Meta, keeping keys meta does not set.
func (d Document) Merge(meta map[string]any) Document {
	out := make(map[string]any, len(d.Meta)+len(meta))
	for k, v := range d.Meta {
		out[k] = v
	}
	for k, v := range meta {
		out[k] = v
	}
	return Document{Meta: out, Body: d.Body}
}
