package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tencoder/tencoder-api/internal/apperr"
)

const uploadFixture = `---
objectives:
  - Ship the planning MVP
milestones:
  - name: MVP
    description: First usable release
constraints:
  - Single Postgres instance
definitionOfDone:
  - All endpoints covered by tests
---
# My Spec

## Problem
Teams lose track of what the PRD actually promised.

## Solution
Keep the PRD structured and queryable next to the work items.
`

func TestIngest(t *testing.T) {
	t.Run("full document round trip", func(t *testing.T) {
		res, err := Ingest("spec.md", []byte(uploadFixture))
		require.NoError(t, err)

		assert.Equal(t, "My Spec", res.Title)
		assert.Equal(t, "1.0.0", res.Version)
		assert.True(t, res.HasFrontMatter)
		assert.Equal(t, []string{"Ship the planning MVP"}, res.Metadata.Objectives)
		assert.True(t, strings.HasPrefix(res.Content, "# My Spec"))
		// Problem and Solution are present, three sections missing: no
		// aggregate warning, content long enough.
		assert.Empty(t, res.Warnings)
	})

	t.Run("rejects non-markdown filenames", func(t *testing.T) {
		_, err := Ingest("spec.txt", []byte(uploadFixture))

		e := apperr.As(err)
		require.NotNil(t, e)
		assert.Equal(t, "File must be a markdown file (.md or .markdown)", e.Message)
	})

	t.Run("accepts .markdown case-insensitively", func(t *testing.T) {
		_, err := Ingest("SPEC.MARKDOWN", []byte(uploadFixture))
		require.NoError(t, err)
	})

	t.Run("rejects invalid UTF-8", func(t *testing.T) {
		_, err := Ingest("spec.md", []byte{0xff, 0xfe, 0xfd})

		e := apperr.As(err)
		require.NotNil(t, e)
		assert.Equal(t, "File content is not valid UTF-8", e.Message)
	})

	t.Run("wraps parse failures", func(t *testing.T) {
		_, err := Ingest("spec.md", []byte("---\nbad: [yaml\n---\nbody"))

		e := apperr.As(err)
		require.NotNil(t, e)
		assert.Contains(t, e.Message, "Failed to parse PRD:")
	})

	t.Run("missing metadata fields carry issue details", func(t *testing.T) {
		_, err := Ingest("spec.md", []byte("---\nobjectives:\n  - Ship it\n---\n# Title\nbody"))

		e := apperr.As(err)
		require.NotNil(t, e)
		assert.Equal(t, "Invalid PRD metadata", e.Message)

		issues, ok := e.Details.([]Issue)
		require.True(t, ok)
		assert.Len(t, issues, 3)
	})

	t.Run("falls back to the filename for the title", func(t *testing.T) {
		doc := `---
objectives:
  - Ship it
milestones: []
constraints: []
definitionOfDone: []
---
No headings anywhere in this body, so the filename has to carry the
title. The prose rambles on long enough to dodge the length warning,
which keeps this case focused on title resolution alone.
`
		res, err := Ingest("release-plan.md", []byte(doc))
		require.NoError(t, err)
		assert.Equal(t, "release-plan", res.Title)
	})

	t.Run("short body without sections collects warnings", func(t *testing.T) {
		doc := `---
objectives:
  - Ship it
milestones: []
constraints: []
definitionOfDone: []
---
# Short
tiny body
`
		res, err := Ingest("short.md", []byte(doc))
		require.NoError(t, err)

		require.Len(t, res.Warnings, 2)
		assert.Contains(t, res.Warnings[0], "at least 100 characters")
		assert.Contains(t, res.Warnings[1], "Consider adding common PRD sections")
	})
}
