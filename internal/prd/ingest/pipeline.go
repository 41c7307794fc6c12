package ingest

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tencoder/tencoder-api/internal/apperr"
	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

const (
	defaultTitle   = "Untitled PRD"
	defaultVersion = "1.0.0"
)

// Result is what the pipeline hands to the service layer, plus the
// advisory validation outcome surfaced to the client.
type Result struct {
	Title          string
	Content        string
	Metadata       domain.PRDMetadata
	Version        string
	Warnings       []string
	HasFrontMatter bool
}

// Ingest runs the full upload pipeline over a file: extension gate,
// UTF-8 decode, front-matter parse, metadata validation, content
// checks and title resolution. The transport boundary owns the file
// size limit; this stays a pure function of the bytes.
func Ingest(filename string, data []byte) (*Result, error) {
	if !markdownExt.MatchString(filename) {
		return nil, apperr.Validation("File must be a markdown file (.md or .markdown)", nil)
	}

	if !utf8.Valid(data) {
		return nil, apperr.Validation("File content is not valid UTF-8", nil)
	}

	parsed, err := Parse(string(data))
	if err != nil {
		if e := apperr.As(err); e != nil {
			return nil, apperr.Validation("Failed to parse PRD: "+e.Message, nil)
		}
		return nil, err
	}

	metadata, issues := ValidateMetadata(parsed.Metadata)
	if len(issues) > 0 {
		return nil, apperr.Validation("Invalid PRD metadata", issues)
	}

	report := ValidateContent(parsed.Content)

	title := ExtractTitle(parsed.Content)
	if title == "" {
		title = markdownExt.ReplaceAllString(filepath.Base(filename), "")
		if strings.TrimSpace(title) == "" {
			title = defaultTitle
		}
	}

	return &Result{
		Title:          title,
		Content:        parsed.Content,
		Metadata:       metadata,
		Version:        defaultVersion,
		Warnings:       report.Warnings,
		HasFrontMatter: parsed.RawYAML != "",
	}, nil
}
