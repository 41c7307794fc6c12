// Package domain holds the storage-agnostic planning entities shared by
// the repository, service and HTTP layers.
package domain

import "time"

// Status values shared by epics and tasks.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusOutOfDate  = "out_of_date"
)

// Digest types.
const (
	DigestDaily  = "daily"
	DigestWeekly = "weekly"
	DigestManual = "manual"
)

// Project is owned by exactly one user. Ownership scopes every query
// that touches it or its children.
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	RepoURL     string    `json:"repoUrl,omitempty"`
	RepoOwner   string    `json:"repoOwner,omitempty"`
	RepoName    string    `json:"repoName,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectDetail is a project with its nested records, as returned by
// GET /projects/:id.
type ProjectDetail struct {
	Project
	PRDs    []PRD    `json:"prds"`
	Epics   []Epic   `json:"epics"`
	Signals []Signal `json:"signals"`
	Digests []Digest `json:"runDigests"`
}

// PRD is a markdown document plus structured metadata. At most one PRD
// per project is active at any time.
type PRD struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"projectId"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Metadata  PRDMetadata `json:"metadata"`
	Version   string      `json:"version"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// PRDMetadata is the structured front-matter of a PRD.
type PRDMetadata struct {
	Objectives       []string        `json:"objectives" yaml:"objectives"`
	Milestones       []Milestone     `json:"milestones" yaml:"milestones"`
	Constraints      []string        `json:"constraints" yaml:"constraints"`
	DefinitionOfDone []string        `json:"definitionOfDone" yaml:"definitionOfDone"`
	TargetAudience   string          `json:"targetAudience,omitempty" yaml:"targetAudience,omitempty"`
	SuccessMetrics   []SuccessMetric `json:"successMetrics,omitempty" yaml:"successMetrics,omitempty"`
}

type Milestone struct {
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	DueDate      string   `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

type SuccessMetric struct {
	Name        string `json:"name" yaml:"name"`
	Target      string `json:"target" yaml:"target"`
	Measurement string `json:"measurement" yaml:"measurement"`
}

// Epic groups tasks under a project.
type Epic struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    int       `json:"priority"`
	Tasks       []Task    `json:"tasks,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Task carries acceptance criteria, completion checkers and trace links
// back into the PRD and repository signals.
type Task struct {
	ID         string    `json:"id"`
	EpicID     string    `json:"epicId"`
	Title      string    `json:"title"`
	Acceptance []string  `json:"acceptance"`
	Checkers   []Checker `json:"checkers"`
	Trace      TaskTrace `json:"trace"`
	Status     string    `json:"status"`
	Priority   int       `json:"priority"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Checker is a typed completion rule, e.g. fileExists or ciGreen.
type Checker struct {
	Type   string         `json:"type"`
	Config map[string]any `json:"config"`
}

type TaskTrace struct {
	PRDRefs     []string `json:"prdRefs"`
	RepoSignals []string `json:"repoSignals"`
}

// Signal is an observed fact about a project's repository or CI state.
type Signal struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"projectId"`
	Type      string         `json:"type"`
	Value     any            `json:"value"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Digest summarizes a run of the completion checkers.
type Digest struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	DigestType     string    `json:"digestType"`
	CompletedTasks []string  `json:"completedTasks"`
	NewTasks       []string  `json:"newTasks"`
	Blockers       []string  `json:"blockers"`
	Insights       []string  `json:"insights"`
	CreatedAt      time.Time `json:"createdAt"`
}
