package domain

// NewProject is the input to project creation. RepoOwner/RepoName are
// derived from RepoURL by the service, best-effort.
type NewProject struct {
	Name        string
	Description string
	RepoURL     string
	RepoOwner   string
	RepoName    string
}

// ProjectUpdate applies only its non-nil fields.
type ProjectUpdate struct {
	Name        *string
	Description *string
	RepoURL     *string
	RepoOwner   *string
	RepoName    *string
	IsActive    *bool
}

type NewPRD struct {
	Title    string
	Content  string
	Metadata PRDMetadata
	Version  string
	IsActive bool
}

// PRDUpdate applies only its non-nil fields. Setting IsActive to true
// triggers the active-PRD transition for the parent project.
type PRDUpdate struct {
	Title    *string
	Content  *string
	Metadata *PRDMetadata
	Version  *string
	IsActive *bool
}

type NewSignal struct {
	Type     string
	Value    any
	Metadata map[string]any
}
