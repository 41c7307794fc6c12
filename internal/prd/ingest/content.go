package ingest

import (
	"strings"
	"unicode/utf8"
)

const minContentLength = 100

// Recommended section headers. Their absence is advisory, never fatal.
var commonSections = []string{
	"## Problem",
	"## Solution",
	"## Requirements",
	"## Success Criteria",
	"## Timeline",
}

// ContentReport is the advisory quality report for a PRD body.
// Warnings never block persistence.
type ContentReport struct {
	IsValid  bool     `json:"isValid"`
	Warnings []string `json:"warnings"`
}

// ValidateContent applies the content-quality heuristics: a minimum
// length and a case-insensitive scan for the recommended sections. More
// than three missing sections collapse into one aggregate warning.
func ValidateContent(content string) ContentReport {
	var warnings []string

	if utf8.RuneCountInString(strings.TrimSpace(content)) < minContentLength {
		warnings = append(warnings, "PRD content must be at least 100 characters long")
	}

	lower := strings.ToLower(content)
	var missing []string
	for _, section := range commonSections {
		if !strings.Contains(lower, strings.ToLower(section)) {
			missing = append(missing, section)
		}
	}
	if len(missing) > 3 {
		warnings = append(warnings, "Consider adding common PRD sections: "+strings.Join(missing, ", "))
	}

	return ContentReport{IsValid: len(warnings) == 0, Warnings: warnings}
}
