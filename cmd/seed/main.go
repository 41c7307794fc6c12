// Command seed loads demo data: one user with a todo-app project, an
// active PRD, epics with tasks, a few signals and a run digest. It is
// idempotent; rerunning it leaves existing rows alone.
package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tencoder/tencoder-api/config"
	"github.com/tencoder/tencoder-api/internal/bootstrap"
	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

// Fixed ids keep the seed idempotent.
const (
	projectID      = "5e71d0a4-9f0e-4a63-a5c6-3f47a1b2c8d1"
	prdID          = "8c2f6b7e-1d4a-4e92-b3c5-6a7d8e9f0a1b"
	backendEpicID  = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
	frontendEpicID = "b2c3d4e5-f6a7-4b8c-9d0e-1f2a3b4c5d6e"
	deployEpicID   = "c3d4e5f6-a7b8-4c9d-0e1f-2a3b4c5d6e7f"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	log.Println("seeding database...")

	userID := seedUser(ctx, pool)
	seedProject(ctx, pool, userID)
	seedPRD(ctx, pool)
	seedEpicsAndTasks(ctx, pool)
	seedSignals(ctx, pool)
	seedDigest(ctx, pool)

	log.Println("seed completed")
}

func seedUser(ctx context.Context, pool *pgxpool.Pool) string {
	var id string
	err := pool.QueryRow(ctx, `
INSERT INTO users (external_uid, email, display_name)
VALUES ('demo-user', 'demo@tencoder.com', 'Demo User')
ON CONFLICT (external_uid) DO UPDATE SET updated_at = now()
RETURNING id::text;`).Scan(&id)
	if err != nil {
		log.Fatalf("seed user: %v", err)
	}
	log.Println("user demo@tencoder.com ready")
	return id
}

func seedProject(ctx context.Context, pool *pgxpool.Pool, userID string) {
	_, err := pool.Exec(ctx, `
INSERT INTO projects (id, user_id, name, description, repo_url, repo_owner, repo_name)
VALUES ($1, $2, 'Sample Todo App',
        'A full-stack todo application with React frontend and Node.js backend',
        'https://github.com/demo/todo-app', 'demo', 'todo-app')
ON CONFLICT (id) DO NOTHING;`, projectID, userID)
	if err != nil {
		log.Fatalf("seed project: %v", err)
	}
	log.Println("project Sample Todo App ready")
}

func seedPRD(ctx context.Context, pool *pgxpool.Pool) {
	meta := domain.PRDMetadata{
		Objectives: []string{
			"Build a modern, responsive todo application",
			"Implement user authentication and authorization",
			"Provide real-time updates and synchronization",
			"Ensure 95%+ test coverage",
			"Deploy with CI/CD pipeline",
		},
		Milestones: []domain.Milestone{
			{Name: "MVP Backend", Description: "Basic CRUD API with authentication", DueDate: "2025-09-15"},
			{Name: "Frontend MVP", Description: "React app with basic todo functionality", DueDate: "2025-09-30", Dependencies: []string{"MVP Backend"}},
			{Name: "Production Ready", Description: "Testing, CI/CD, monitoring, and deployment", DueDate: "2025-10-15", Dependencies: []string{"Frontend MVP"}},
		},
		Constraints: []string{
			"Must support mobile devices",
			"Must be accessible (WCAG AA)",
			"API response time < 200ms",
			"Support for 1000+ concurrent users",
		},
		DefinitionOfDone: []string{
			"All acceptance criteria met",
			"Unit tests written and passing",
			"Integration tests passing",
			"Code reviewed and approved",
			"Documentation updated",
			"Deployed to staging environment",
		},
		TargetAudience: "Productivity-focused individuals and teams",
		SuccessMetrics: []domain.SuccessMetric{
			{Name: "User Engagement", Target: "80% daily active users", Measurement: "Analytics dashboard"},
			{Name: "Performance", Target: "Page load time < 2s", Measurement: "Lighthouse CI"},
			{Name: "Reliability", Target: "99.9% uptime", Measurement: "Monitoring alerts"},
		},
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		log.Fatalf("seed prd metadata: %v", err)
	}

	const content = `# Todo Application PRD

## Overview
A modern, full-stack todo application designed for productivity-focused users.

## Features
- User authentication and registration
- Create, read, update, delete todos
- Real-time synchronization across devices
- Mobile-responsive design

## Technical Requirements
- React frontend with TypeScript
- Node.js backend
- PostgreSQL database
- CI/CD pipeline with GitHub Actions

## Success Criteria
- 95%+ test coverage
- Sub-200ms API response times
- WCAG AA accessibility compliance
`

	_, err = pool.Exec(ctx, `
INSERT INTO prds (id, project_id, title, content, metadata, version, is_active)
VALUES ($1, $2, 'Todo App PRD v1.0', $3, $4, '1.0.0', true)
ON CONFLICT (id) DO NOTHING;`, prdID, projectID, content, metaJSON)
	if err != nil {
		log.Fatalf("seed prd: %v", err)
	}
	log.Println("PRD Todo App PRD v1.0 ready")
}

func seedEpicsAndTasks(ctx context.Context, pool *pgxpool.Pool) {
	epics := []struct {
		id, title, description, status string
		priority                       int
	}{
		{backendEpicID, "Backend API Development",
			"Develop the core backend API with authentication, CRUD operations, and real-time features",
			domain.StatusInProgress, 1},
		{frontendEpicID, "Frontend Application",
			"Build the React frontend with modern UI/UX and responsive design",
			domain.StatusTodo, 2},
		{deployEpicID, "Deployment & DevOps",
			"Set up CI/CD pipeline, monitoring, and production deployment",
			domain.StatusTodo, 3},
	}
	for _, e := range epics {
		_, err := pool.Exec(ctx, `
INSERT INTO epics (id, project_id, title, description, status, priority)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING;`, e.id, projectID, e.title, e.description, e.status, e.priority)
		if err != nil {
			log.Fatalf("seed epic %s: %v", e.title, err)
		}
	}

	tasks := []struct {
		id, epicID, title, status string
		priority                  int
		acceptance                []string
		checkers                  []domain.Checker
		trace                     domain.TaskTrace
	}{
		{
			id: "d4e5f6a7-b8c9-4d0e-1f2a-3b4c5d6e7f80", epicID: backendEpicID,
			title: "Set up authentication system", status: domain.StatusDone, priority: 1,
			acceptance: []string{
				"JWT-based authentication implemented",
				"User registration endpoint created",
				"Login endpoint with validation",
			},
			checkers: []domain.Checker{
				{Type: "routeExists", Config: map[string]any{"path": "/api/auth/register", "method": "POST"}},
				{Type: "testExists", Config: map[string]any{"pattern": "**/auth.test.ts"}},
			},
			trace: domain.TaskTrace{
				PRDRefs:     []string{"user-authentication", "jwt-auth"},
				RepoSignals: []string{"auth_routes_found", "jwt_middleware_detected"},
			},
		},
		{
			id: "e5f6a7b8-c9d0-4e1f-2a3b-4c5d6e7f8091", epicID: backendEpicID,
			title: "Implement todo CRUD operations", status: domain.StatusInProgress, priority: 2,
			acceptance: []string{
				"Create todo endpoint",
				"Get todos endpoint with pagination",
				"Update and delete todo endpoints",
			},
			checkers: []domain.Checker{
				{Type: "routeExists", Config: map[string]any{"path": "/api/todos", "method": "GET"}},
				{Type: "testExists", Config: map[string]any{"pattern": "**/todos.test.ts"}},
			},
			trace: domain.TaskTrace{
				PRDRefs:     []string{"crud-operations", "todo-management"},
				RepoSignals: []string{"todo_routes_partial", "tests_incomplete"},
			},
		},
		{
			id: "f6a7b8c9-d0e1-4f2a-3b4c-5d6e7f8091a2", epicID: frontendEpicID,
			title: "Set up React application with TypeScript", status: domain.StatusTodo, priority: 1,
			acceptance: []string{
				"React app created with TypeScript",
				"Basic routing with React Router",
			},
			checkers: []domain.Checker{
				{Type: "fileExists", Config: map[string]any{"path": "tsconfig.json"}},
			},
			trace: domain.TaskTrace{
				PRDRefs:     []string{"react-frontend", "typescript-setup"},
				RepoSignals: []string{},
			},
		},
		{
			id: "a7b8c9d0-e1f2-4a3b-4c5d-6e7f8091a2b3", epicID: deployEpicID,
			title: "Set up CI/CD pipeline", status: domain.StatusTodo, priority: 2,
			acceptance: []string{
				"GitHub Actions workflow created",
				"Automated testing on pull requests",
				"Code coverage reporting",
			},
			checkers: []domain.Checker{
				{Type: "fileExists", Config: map[string]any{"path": ".github/workflows/ci.yml"}},
				{Type: "ciGreen", Config: map[string]any{}},
				{Type: "coverageAbove", Config: map[string]any{"threshold": 80}},
			},
			trace: domain.TaskTrace{
				PRDRefs:     []string{"ci-cd-pipeline", "automated-testing"},
				RepoSignals: []string{},
			},
		},
	}
	for _, t := range tasks {
		acceptance, _ := json.Marshal(t.acceptance)
		checkers, _ := json.Marshal(t.checkers)
		trace, _ := json.Marshal(t.trace)
		_, err := pool.Exec(ctx, `
INSERT INTO tasks (id, epic_id, title, acceptance, checkers, trace, status, priority)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING;`, t.id, t.epicID, t.title, acceptance, checkers, trace, t.status, t.priority)
		if err != nil {
			log.Fatalf("seed task %s: %v", t.title, err)
		}
	}
	log.Printf("%d epics, %d tasks ready", len(epics), len(tasks))
}

func seedSignals(ctx context.Context, pool *pgxpool.Pool) {
	signals := []struct {
		id    string
		typ   string
		value any
		meta  any
	}{
		{"b8c9d0e1-f2a3-4b4c-5d6e-7f8091a2b3c4",
			"ci_status",
			map[string]any{"status": "passing", "lastRun": "2025-08-27T10:30:00Z"},
			map[string]any{"workflow": "main.yml", "branch": "main"}},
		{"c9d0e1f2-a3b4-4c5d-6e7f-8091a2b3c4d5",
			"test_coverage",
			map[string]any{"percentage": 85, "lines": map[string]any{"covered": 340, "total": 400}},
			map[string]any{"tool": "jest", "reportPath": "coverage/lcov.info"}},
		{"d0e1f2a3-b4c5-4d6e-7f80-91a2b3c4d5e6",
			"route_detected",
			map[string]any{"path": "/api/auth/login", "method": "POST", "file": "src/routes/auth.ts"},
			map[string]any{"framework": "fastify"}},
	}
	for _, s := range signals {
		value, _ := json.Marshal(s.value)
		meta, _ := json.Marshal(s.meta)
		_, err := pool.Exec(ctx, `
INSERT INTO signals (id, project_id, type, value, metadata)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING;`, s.id, projectID, s.typ, value, meta)
		if err != nil {
			log.Fatalf("seed signal %s: %v", s.typ, err)
		}
	}
	log.Printf("%d signals ready", len(signals))
}

func seedDigest(ctx context.Context, pool *pgxpool.Pool) {
	encode := func(v []string) []byte {
		b, _ := json.Marshal(v)
		return b
	}
	_, err := pool.Exec(ctx, `
INSERT INTO run_digests (id, project_id, digest_type, completed_tasks, new_tasks, blockers, insights)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO NOTHING;`,
		"e1f2a3b4-c5d6-4e7f-8091-a2b3c4d5e6f7", projectID, domain.DigestDaily,
		encode([]string{"Set up authentication system"}),
		encode([]string{"Set up React application with TypeScript"}),
		encode([]string{"Waiting for API design review before completing todo endpoints"}),
		encode([]string{"Authentication implementation ahead of schedule"}),
	)
	if err != nil {
		log.Fatalf("seed digest: %v", err)
	}
	log.Println("run digest ready")
}
