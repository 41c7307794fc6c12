package ingest

import (
	"fmt"

	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

// Issue is a single metadata validation failure, addressed by field
// path so a document author can locate it.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func issuef(field, format string, args ...any) Issue {
	return Issue{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateMetadata checks the parsed front-matter against the PRD
// metadata shape. It collects every failure instead of stopping at the
// first one; on success it returns the coerced, typed metadata.
func ValidateMetadata(raw map[string]any) (domain.PRDMetadata, []Issue) {
	var md domain.PRDMetadata
	var issues []Issue

	md.Objectives, issues = stringList(raw, "objectives", true, issues)
	md.Milestones, issues = milestoneList(raw, issues)
	md.Constraints, issues = plainStringList(raw, "constraints", issues)
	md.DefinitionOfDone, issues = plainStringList(raw, "definitionOfDone", issues)

	if v, ok := raw["targetAudience"]; ok {
		if s, ok := v.(string); ok {
			md.TargetAudience = s
		} else {
			issues = append(issues, issuef("targetAudience", "must be a string"))
		}
	}

	md.SuccessMetrics, issues = metricList(raw, issues)

	return md, issues
}

// stringList validates a required list of strings. When nonEmpty is
// set, each element must be non-blank.
func stringList(raw map[string]any, field string, nonEmpty bool, issues []Issue) ([]string, []Issue) {
	v, ok := raw[field]
	if !ok {
		return nil, append(issues, issuef(field, "required field is missing"))
	}

	items, ok := v.([]any)
	if !ok {
		return nil, append(issues, issuef(field, "must be a list of strings"))
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			issues = append(issues, issuef(fmt.Sprintf("%s[%d]", field, i), "must be a string"))
			continue
		}
		if nonEmpty && s == "" {
			issues = append(issues, issuef(fmt.Sprintf("%s[%d]", field, i), "must not be empty"))
			continue
		}
		out = append(out, s)
	}
	return out, issues
}

func plainStringList(raw map[string]any, field string, issues []Issue) ([]string, []Issue) {
	return stringList(raw, field, false, issues)
}

// requiredString fetches a key that must be present as a non-empty
// string, telling the author whether it is absent or just the wrong
// shape.
func requiredString(m map[string]any, path, key string) (string, *Issue) {
	v, ok := m[key]
	if !ok {
		i := issuef(path+"."+key, "required field is missing")
		return "", &i
	}
	s, ok := v.(string)
	if !ok || s == "" {
		i := issuef(path+"."+key, "must be a non-empty string")
		return "", &i
	}
	return s, nil
}

func milestoneList(raw map[string]any, issues []Issue) ([]domain.Milestone, []Issue) {
	v, ok := raw["milestones"]
	if !ok {
		return nil, append(issues, issuef("milestones", "required field is missing"))
	}

	items, ok := v.([]any)
	if !ok {
		return nil, append(issues, issuef("milestones", "must be a list"))
	}

	out := make([]domain.Milestone, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("milestones[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			issues = append(issues, issuef(path, "must be an object"))
			continue
		}

		var ms domain.Milestone
		var bad bool
		if s, issue := requiredString(m, path, "name"); issue != nil {
			issues = append(issues, *issue)
			bad = true
		} else {
			ms.Name = s
		}
		if s, issue := requiredString(m, path, "description"); issue != nil {
			issues = append(issues, *issue)
			bad = true
		} else {
			ms.Description = s
		}
		if v, ok := m["dueDate"]; ok {
			if ms.DueDate, ok = v.(string); !ok {
				issues = append(issues, issuef(path+".dueDate", "must be a string"))
				bad = true
			}
		}
		if v, ok := m["dependencies"]; ok {
			deps, ok := v.([]any)
			if !ok {
				issues = append(issues, issuef(path+".dependencies", "must be a list of strings"))
				bad = true
			} else {
				for j, d := range deps {
					s, ok := d.(string)
					if !ok {
						issues = append(issues, issuef(fmt.Sprintf("%s.dependencies[%d]", path, j), "must be a string"))
						bad = true
						continue
					}
					ms.Dependencies = append(ms.Dependencies, s)
				}
			}
		}
		if !bad {
			out = append(out, ms)
		}
	}
	return out, issues
}

func metricList(raw map[string]any, issues []Issue) ([]domain.SuccessMetric, []Issue) {
	v, ok := raw["successMetrics"]
	if !ok {
		return nil, issues
	}

	items, ok := v.([]any)
	if !ok {
		return nil, append(issues, issuef("successMetrics", "must be a list"))
	}

	out := make([]domain.SuccessMetric, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("successMetrics[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			issues = append(issues, issuef(path, "must be an object"))
			continue
		}

		var sm domain.SuccessMetric
		var bad bool
		for _, f := range []struct {
			key string
			dst *string
		}{
			{"name", &sm.Name},
			{"target", &sm.Target},
			{"measurement", &sm.Measurement},
		} {
			s, issue := requiredString(m, path, f.key)
			if issue != nil {
				issues = append(issues, *issue)
				bad = true
				continue
			}
			*f.dst = s
		}
		if !bad {
			out = append(out, sm)
		}
	}
	return out, issues
}
