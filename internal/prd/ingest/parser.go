// Package ingest implements the PRD ingestion pipeline: front-matter
// parsing, metadata schema validation, content-quality checks and title
// resolution. Everything here is a pure transformation; persistence is
// the service layer's job.
package ingest

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tencoder/tencoder-api/internal/apperr"
)

const frontMatterDelimiter = "---"

// Parsed is the result of splitting a markdown document into YAML
// front-matter and body content.
type Parsed struct {
	// Content is the trimmed markdown body.
	Content string
	// Metadata is the decoded front-matter, empty map when absent.
	Metadata map[string]any
	// RawYAML is the original front-matter block text, "" when absent.
	RawYAML string
}

// Parse splits raw markdown into front-matter and body. A document
// without a leading delimiter, or without a closing one, is all body.
// Malformed YAML fails with a validation error that carries the
// underlying parser message so the author can fix the document.
func Parse(raw string) (Parsed, error) {
	text := strings.ReplaceAll(raw, "\r\n", "\n")

	block, body, ok := splitFrontMatter(text)
	if !ok {
		return Parsed{Content: strings.TrimSpace(text), Metadata: map[string]any{}}, nil
	}

	meta := map[string]any{}
	if strings.TrimSpace(block) != "" {
		if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
			return Parsed{}, apperr.Validation("invalid YAML front-matter: "+err.Error(), nil)
		}
		if meta == nil {
			meta = map[string]any{}
		}
	}

	return Parsed{
		Content:  strings.TrimSpace(body),
		Metadata: meta,
		RawYAML:  block,
	}, nil
}

func splitFrontMatter(text string) (block, body string, ok bool) {
	if !strings.HasPrefix(text, frontMatterDelimiter+"\n") && text != frontMatterDelimiter {
		return "", "", false
	}

	rest := strings.TrimPrefix(text, frontMatterDelimiter+"\n")

	// Empty front-matter block.
	if rest == frontMatterDelimiter {
		return "", "", true
	}
	if strings.HasPrefix(rest, frontMatterDelimiter+"\n") {
		return "", rest[len(frontMatterDelimiter)+1:], true
	}

	if i := strings.Index(rest, "\n"+frontMatterDelimiter+"\n"); i >= 0 {
		return rest[:i], rest[i+len(frontMatterDelimiter)+2:], true
	}
	if strings.HasSuffix(rest, "\n"+frontMatterDelimiter) {
		return strings.TrimSuffix(rest, "\n"+frontMatterDelimiter), "", true
	}
	// Opening delimiter without a closing one: treat as plain content.
	return "", "", false
}
